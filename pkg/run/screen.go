/*
   MGTDrive - SAM Coupé / +D disk image tool and floppy emulator
   Copyright (c) 2022, The MGTDrive Authors

   This file is part of MGTDrive.

   MGTDrive is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   MGTDrive is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with MGTDrive. If not, see <http://www.gnu.org/licenses/>.
*/

package run

import (
	"bufio"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgtdrive/mgtdrive/pkg/mgt/screen"
)

//
func NewScreen() *Screen {

	s := &Screen{}
	s.Runner = *NewRunner(
		"screen -i|--input {file} [-o|--output {file}] [-r|--reverse]",
		"convert picture to SCREEN$ dump and back",
		`
Use the screen command to convert a PNG or JPEG picture into a MODE 4 SCREEN$
display dump, ready for adding to a disk image. With --reverse, a SCREEN$
dump is exported as PNG instead.`,
		"", runnerHelpEpilogue, s.Run)

	s.AddBaseSettings()
	s.AddSetting(&s.File, "input", "i", "", nil, "input file", true)
	s.AddSetting(&s.Output, "output", "o", "", nil,
		"output file; derived from input file when omitted", false)
	s.AddSetting(&s.Reverse, "reverse", "r", "", false,
		"export SCREEN$ dump as PNG", false)

	return s
}

//
type Screen struct {
	//
	Runner
	//
	File    string
	Output  string
	Reverse bool
}

//
func (s *Screen) Run() error {

	s.ParseSettings()

	in, err := ioutil.ReadFile(s.File)
	if err != nil {
		return err
	}

	out := s.Output
	base := strings.TrimSuffix(s.File, filepath.Ext(s.File))

	if s.Reverse {
		if out == "" {
			out = base + ".png"
		}

		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()

		w := bufio.NewWriter(f)
		if err := screen.Export(in, w); err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return err
		}

	} else {
		if out == "" {
			out = base + ".screen"
		}

		dump, err := screen.Convert(in)
		if err != nil {
			return err
		}
		if err := ioutil.WriteFile(out, dump, 0644); err != nil {
			return err
		}
	}

	fmt.Printf("written to %s\n", out)
	return nil
}
