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
	"net/url"
)

//
func NewRemove() *Remove {

	r := &Remove{}
	r.Runner = *NewRunner(
		"rm [-d|--drive {drive}] -n|--name {pattern} [-a|--address {address}]",
		"remove files from image in daemon",
		`
Use the rm command to delete all files matching a name pattern from the disk
image mounted in a drive of the daemon. The pattern may use the usual shell
wildcards ('*', '?').`,
		"", runnerHelpEpilogue, r.Run)

	r.AddBaseSettings()
	r.AddSetting(&r.Name, "name", "n", "", nil, "file name pattern", true)
	r.AddSetting(&r.Drive, "drive", "d", "", 1, "drive number (1-2)", false)

	return r
}

//
type Remove struct {
	//
	Runner
	//
	Drive int
	Name  string
}

//
func (r *Remove) Run() error {

	r.ParseSettings()

	if err := validateDrive(r.Drive); err != nil {
		return err
	}

	resp, err := r.apiCall("DELETE", fmt.Sprintf("/drive/%d/file/%s",
		r.Drive, url.PathEscape(r.Name)), false, nil)
	if err != nil {
		return err
	}
	defer resp.Close()

	msg, err := ioutil.ReadAll(resp)
	if err != nil {
		return err
	}

	fmt.Printf("%s", msg)
	return nil
}
