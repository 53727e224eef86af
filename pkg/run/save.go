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
	"os"
	"strings"
)

//
func NewSave() *Save {

	s := &Save{}
	s.Runner = *NewRunner(
		"save [-d|--drive {drive}] -o|--output {file} [-f|--force] [-a|--address {address}]",
		"get disk image from daemon and save",
		"\nUse the save command to get a disk image from the daemon and save it to a file.",
		"", `- The format for saving the file is determined by the file extension of the
  given file name. Currently supported formats are .mgt, .img, .sad, and .dsk,
  each optionally with an additional .gz extension for compression.

`+runnerHelpEpilogue, s.Run)

	s.AddBaseSettings()
	s.AddSetting(&s.File, "output", "o", "", nil, "image output file", true)
	s.AddSetting(&s.Drive, "drive", "d", "", 1, "drive number (1-2)", false)
	s.AddSetting(&s.Force, "force", "f", "", false,
		"force overwriting output file", false)

	return s
}

//
type Save struct {
	//
	Runner
	//
	File  string
	Drive int
	Force bool
}

//
func (s *Save) Run() error {

	s.ParseSettings()

	if err := validateDrive(s.Drive); err != nil {
		return err
	}

	if !s.Force {
		if _, err := os.Stat(s.File); err == nil &&
			!GetUserConfirmation("File exists, overwrite?") {
			return nil
		}
	}

	file := s.File
	compress := false
	if strings.ToLower(getExtension(file)) == "gz" {
		compress = true
		file = strings.TrimSuffix(file, "."+getExtension(file))
	}

	resp, err := s.apiCall("GET",
		fmt.Sprintf("/drive/%d?format=%s&compress=%t",
			s.Drive, strings.ToLower(getExtension(file)), compress), false, nil)
	if err != nil {
		return err
	}

	defer resp.Close()

	f, err := os.Create(s.File)
	if err != nil {
		return err
	}
	defer f.Close()

	out := bufio.NewWriter(f)
	defer out.Flush()

	if _, err := io.Copy(out, resp); err != nil {
		return err
	}

	fmt.Println("image saved")
	return nil
}
