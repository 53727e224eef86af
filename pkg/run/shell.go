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
	"github.com/mgtdrive/mgtdrive/pkg/shell"
)

//
func NewShell() *Shell {

	s := &Shell{}
	s.Runner = *NewRunner(
		"shell [-i|--input {file}]",
		"interactive shell for local disk images",
		`
Use the shell command to work on local disk image files interactively,
without a running daemon. Type 'help' in the shell for the available
commands.`,
		"", runnerHelpEpilogue, s.Run)

	s.AddSetting(&s.File, "input", "i", "", nil,
		"disk image file to mount at start", false)

	return s
}

//
type Shell struct {
	//
	Runner
	//
	File string
}

//
func (s *Shell) Run() error {

	s.ParseSettings()

	sh, err := shell.New(s.File)
	if err != nil {
		return err
	}

	return sh.Run()
}
