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

package main

import (
	"fmt"
	"os"

	"github.com/mgtdrive/mgtdrive/pkg/control"
	"github.com/mgtdrive/mgtdrive/pkg/run"
)

//
var MGTDriveVersion string

//
func synopsis() {
	fmt.Print(`
synopsis: mgtctl {serve|ls|load|unload|save|dump|extract|add|rm|screen|shell|version} ...

run 'mgtctl {action} -h|--help' to see detailed info

`)
}

//
func version() {
	fmt.Printf("\nMGTDrive %s\n\n", MGTDriveVersion)
}

//
func main() {

	control.Version = MGTDriveVersion

	var action string
	var args []string

	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	if len(os.Args) > 2 {
		args = os.Args[2:]
	}

	switch action {

	case "serve":
		version()
		run.DieOnError(run.NewServe().Execute(args))

	case "ls":
		run.DieOnError(run.NewList().Execute(args))

	case "load":
		run.DieOnError(run.NewLoad().Execute(args))

	case "unload":
		run.DieOnError(run.NewUnload().Execute(args))

	case "save":
		run.DieOnError(run.NewSave().Execute(args))

	case "dump":
		run.DieOnError(run.NewDump().Execute(args))

	case "extract":
		run.DieOnError(run.NewExtract().Execute(args))

	case "add":
		run.DieOnError(run.NewAdd().Execute(args))

	case "rm":
		run.DieOnError(run.NewRemove().Execute(args))

	case "screen":
		run.DieOnError(run.NewScreen().Execute(args))

	case "shell":
		run.DieOnError(run.NewShell().Execute(args))

	case "version":
		version()

	case "":
		fallthrough
	case "-h":
		fallthrough
	case "--help":
		synopsis()

	default:
		run.Die("unknown action: %s\n", action)
	}
}
