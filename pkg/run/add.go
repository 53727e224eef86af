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
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

//
func NewAdd() *Add {

	a := &Add{}
	a.Runner = *NewRunner(
		`add [-d|--drive {drive}] -i|--input {file} [-n|--name {name}]
      [-s|--start {addr}] [-x|--execute {addr}] [-a|--address {address}]`,
		"add file to image in daemon",
		`
Use the add command to write a local file as a CODE file onto the disk image
mounted in a drive of the daemon.`,
		"", runnerHelpEpilogue, a.Run)

	a.AddBaseSettings()
	a.AddSetting(&a.File, "input", "i", "", nil, "input file", true)
	a.AddSetting(&a.Name, "name", "n", "", nil,
		"name on disk; input file base name when omitted", false)
	a.AddSetting(&a.Drive, "drive", "d", "", 1, "drive number (1-2)", false)
	a.AddSetting(&a.Start, "start", "s", "", 0x8000, "load address", false)
	a.AddSetting(&a.Exec, "execute", "x", "", -1,
		"auto-execute address", false)

	return a
}

//
type Add struct {
	//
	Runner
	//
	Drive   int
	File    string
	Name    string
	Start   int
	Exec    int
}

//
func (a *Add) Run() error {

	a.ParseSettings()

	if err := validateDrive(a.Drive); err != nil {
		return err
	}

	name := a.Name
	if name == "" {
		base := filepath.Base(a.File)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	f, err := os.Open(a.File)
	if err != nil {
		return err
	}
	defer f.Close()

	path := fmt.Sprintf("/drive/%d/file/%s?start=%d",
		a.Drive, url.PathEscape(name), a.Start)
	if a.Exec >= 0 {
		path = fmt.Sprintf("%s&execute=%d", path, a.Exec)
	}

	resp, err := a.apiCall("PUT", path, false, bufio.NewReader(f))
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
