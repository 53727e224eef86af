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
	"io"
	"net/url"
	"os"
	"strconv"
)

//
func NewExtract() *Extract {

	e := &Extract{}
	e.Runner = *NewRunner(
		`extract [-d|--drive {drive}] -n|--name {file} [-o|--output {file}]
      [-r|--raw] [-a|--address {address}]`,
		"extract file from image in daemon",
		`
Use the extract command to copy a file out of the disk image mounted in a
drive of the daemon. By default the bare file content is extracted; with
--raw, the exported form of raw directory entry plus on-disk data, which
the add and shell commands can re-import.`,
		"", runnerHelpEpilogue, e.Run)

	e.AddBaseSettings()
	e.AddSetting(&e.Name, "name", "n", "", nil, "name of file on disk", true)
	e.AddSetting(&e.File, "output", "o", "", nil,
		"output file; file name on disk when omitted", false)
	e.AddSetting(&e.Drive, "drive", "d", "", 1, "drive number (1-2)", false)
	e.AddSetting(&e.Raw, "raw", "r", "", false,
		"extract as re-importable entry and data pair", false)

	return e
}

//
type Extract struct {
	//
	Runner
	//
	Drive int
	Name  string
	File  string
	Raw   bool
}

//
func (e *Extract) Run() error {

	e.ParseSettings()

	if err := validateDrive(e.Drive); err != nil {
		return err
	}

	resp, err := e.apiCall("GET", fmt.Sprintf("/drive/%d/file/%s?raw=%s",
		e.Drive, url.PathEscape(e.Name), strconv.FormatBool(e.Raw)),
		false, nil)
	if err != nil {
		return err
	}
	defer resp.Close()

	out := e.File
	if out == "" {
		out = e.Name
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	if _, err := io.Copy(w, resp); err != nil {
		return err
	}

	fmt.Printf("extracted %s\n", e.Name)
	return nil
}
