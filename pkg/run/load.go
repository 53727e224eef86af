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
	"io/ioutil"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mgtdrive/mgtdrive/pkg/repo"
)

//
func NewLoad() *Load {

	l := &Load{}
	l.Runner = *NewRunner(
		`load [-d|--drive {drive}] -i|--input {file|repo ref} [-f|--force]
      [-w|--write-protect] [-a|--address {address}]`,
		"load disk image into daemon",
		`
Use the load command to load a disk image into a drive of the daemon. The
input is either a local image file, which gets uploaded, or a repo://
reference, which the daemon resolves against its repo folder.`,
		"", runnerHelpEpilogue, l.Run)

	l.AddBaseSettings()
	l.AddSetting(&l.File, "input", "i", "", nil,
		"disk image file or repo reference", true)
	l.AddSetting(&l.Drive, "drive", "d", "", 1, "drive number (1-2)", false)
	l.AddSetting(&l.Force, "force", "f", "", false,
		"force replacing modified image in daemon", false)
	l.AddSetting(&l.WriteProtect, "write-protect", "w", "", false,
		"mount the image write protected", false)

	return l
}

//
type Load struct {
	//
	Runner
	//
	Drive        int
	File         string
	Force        bool
	WriteProtect bool
}

//
func (l *Load) Run() error {

	l.ParseSettings()

	if err := validateDrive(l.Drive); err != nil {
		return err
	}

	var body io.Reader
	name := ""

	if repo.IsReference(l.File) {
		body = strings.NewReader(l.File)

	} else {
		f, err := os.Open(l.File)
		if err != nil {
			return err
		}
		defer f.Close()
		body = bufio.NewReader(f)
		name = filepath.Base(l.File)
	}

	resp, err := l.apiCall("PUT", fmt.Sprintf(
		"/drive/%d?force=%s&wprot=%s&name=%s", l.Drive,
		strconv.FormatBool(l.Force), strconv.FormatBool(l.WriteProtect),
		url.QueryEscape(name)), false, body)
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
