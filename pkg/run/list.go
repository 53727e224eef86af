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
	"fmt"
	"io/ioutil"
)

//
func NewList() *List {

	l := &List{}
	l.Runner = *NewRunner(
		"ls [-d|--drive {drive}] [-r|--repo] [-a|--address {address}]",
		"list drives, drive directory, or repo",
		`
Use the ls command to get the drive overview from the daemon. With a drive
number, the directory of the image in that drive is listed instead; with
--repo, the images in the daemon's repo folder.`,
		"", runnerHelpEpilogue, l.Run)

	l.AddBaseSettings()
	l.AddSetting(&l.Drive, "drive", "d", "", 0, "drive number (1-2)", false)
	l.AddSetting(&l.Repo, "repo", "r", "", false,
		"list the daemon's image repo", false)

	return l
}

//
type List struct {
	//
	Runner
	//
	Drive int
	Repo  bool
}

//
func (l *List) Run() error {

	l.ParseSettings()

	path := "/status"

	if l.Repo {
		path = "/list"

	} else if l.Drive != 0 {
		if err := validateDrive(l.Drive); err != nil {
			return err
		}
		path = fmt.Sprintf("/drive/%d/ls", l.Drive)
	}

	resp, err := l.apiCall("GET", path, false, nil)
	if err != nil {
		return err
	}
	defer resp.Close()

	list, err := ioutil.ReadAll(resp)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", list)
	return nil
}
