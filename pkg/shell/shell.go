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

// Package shell is the interactive console for working on local disk
// image files, without a running daemon.
package shell

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/mgtdrive/mgtdrive/pkg/mgt/dos"
)

//
type command struct {
	name        string
	synopsis    string
	description string
	minArgs     int
	maxArgs     int
	needsMount  bool
	code        func(sh *Shell, args []string) error
}

//
type Shell struct {
	//
	disk *dos.Disk
	name string
	//
	commands map[string]*command
	quit     bool
}

// New creates a shell, with the image at path mounted when path is not
// empty.
func New(path string) (*Shell, error) {

	sh := &Shell{}
	sh.commands = commandTable()

	if path != "" {
		if err := sh.mount(path); err != nil {
			return nil, err
		}
	}

	return sh, nil
}

//
func (sh *Shell) Run() error {

	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 sh.prompt(),
		HistoryFile:            historyFile(),
		DisableAutoSaveHistory: false,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for !sh.quit {

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			return err
		}

		if err := sh.process(line); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}

		rl.SetPrompt(sh.prompt())
	}

	return nil
}

//
func (sh *Shell) prompt() string {
	if sh.disk == nil {
		return "mgt:<no mount>> "
	}
	mod := ""
	if sh.disk.Path() == "" {
		mod = "*"
	}
	return fmt.Sprintf("mgt:%s%s> ", sh.name, mod)
}

//
func (sh *Shell) process(line string) error {

	verb, args := splitLine(line)
	if verb == "" {
		return nil
	}

	cmd, ok := sh.commands[strings.ToLower(verb)]
	if !ok {
		return fmt.Errorf("unrecognized command: %s", verb)
	}

	if len(args) < cmd.minArgs {
		return fmt.Errorf("%s expects at least %d argument(s)",
			cmd.name, cmd.minArgs)
	}
	if cmd.maxArgs >= 0 && len(args) > cmd.maxArgs {
		return fmt.Errorf("%s expects at most %d argument(s)",
			cmd.name, cmd.maxArgs)
	}
	if cmd.needsMount && sh.disk == nil {
		return fmt.Errorf("%s only works on a mounted image", cmd.name)
	}

	return cmd.code(sh, args)
}

//
func (sh *Shell) mount(path string) error {

	d, err := dos.Open(path)
	if err != nil {
		return err
	}

	sh.disk = d
	sh.name = filepath.Base(path)
	return nil
}

// splitLine separates the command verb from its arguments, honoring
// double quotes around arguments with spaces.
func splitLine(line string) (string, []string) {

	var out []string
	var chunk strings.Builder
	inQuote := false

	add := func() {
		if chunk.Len() > 0 {
			out = append(out, chunk.String())
			chunk.Reset()
		}
	}

	for _, ch := range strings.TrimSpace(line) {
		switch {
		case ch == '"':
			inQuote = !inQuote
			add()
		case ch == ' ' && !inQuote:
			add()
		default:
			chunk.WriteRune(ch)
		}
	}
	add()

	if len(out) == 0 {
		return "", nil
	}
	if len(out) == 1 {
		return out[0], nil
	}
	return out[0], out[1:]
}

//
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mgtdrive_history")
}

//
func commandTable() map[string]*command {

	list := []*command{
		{
			name:        "mount",
			synopsis:    "mount {image file}",
			description: "mount a disk image file",
			minArgs:     1,
			maxArgs:     1,
			code:        cmdMount,
		},
		{
			name:        "unmount",
			synopsis:    "unmount",
			description: "unmount the current disk image",
			needsMount:  true,
			code:        cmdUnmount,
		},
		{
			name:        "dir",
			synopsis:    "dir",
			description: "list the directory of the mounted image",
			needsMount:  true,
			code:        cmdDir,
		},
		{
			name:        "type",
			synopsis:    "type {file}",
			description: "print the content of a file on the mounted image",
			minArgs:     1,
			maxArgs:     1,
			needsMount:  true,
			code:        cmdType,
		},
		{
			name:        "extract",
			synopsis:    "extract {file} [{output file}]",
			description: "copy a file out of the mounted image",
			minArgs:     1,
			maxArgs:     2,
			needsMount:  true,
			code:        cmdExtract,
		},
		{
			name:        "add",
			synopsis:    "add {local file} [{name}]",
			description: "add a local file to the mounted image as CODE",
			minArgs:     1,
			maxArgs:     2,
			needsMount:  true,
			code:        cmdAdd,
		},
		{
			name:        "rm",
			synopsis:    "rm {pattern}",
			description: "delete files matching pattern from the mounted image",
			minArgs:     1,
			maxArgs:     1,
			needsMount:  true,
			code:        cmdRemove,
		},
		{
			name:        "bam",
			synopsis:    "bam",
			description: "show the sector allocation of the mounted image",
			needsMount:  true,
			code:        cmdBAM,
		},
		{
			name:        "save",
			synopsis:    "save [{file}]",
			description: "save the mounted image, to a new file when given",
			maxArgs:     1,
			needsMount:  true,
			code:        cmdSave,
		},
		{
			name:        "help",
			synopsis:    "help",
			description: "show this overview",
			code:        cmdHelp,
		},
		{
			name:        "quit",
			synopsis:    "quit",
			description: "leave the shell",
			code:        cmdQuit,
		},
	}

	ret := make(map[string]*command)
	for _, c := range list {
		ret[c.name] = c
	}
	return ret
}

//
func cmdMount(sh *Shell, args []string) error {
	if err := sh.mount(args[0]); err != nil {
		return err
	}
	fmt.Printf("mounted %s (%s, %d files)\n",
		sh.name, sh.disk.Variant, sh.disk.FileCount())
	return nil
}

//
func cmdUnmount(sh *Shell, args []string) error {
	sh.disk = nil
	sh.name = ""
	return nil
}

//
func cmdDir(sh *Shell, args []string) error {
	fmt.Println(sh.disk.Dir())
	return nil
}

//
func cmdType(sh *Shell, args []string) error {

	f := sh.disk.Find(args[0])
	if f == nil {
		return fmt.Errorf("no such file: %s", args[0])
	}

	os.Stdout.Write(f.Payload())
	fmt.Println()
	return nil
}

//
func cmdExtract(sh *Shell, args []string) error {

	f := sh.disk.Find(args[0])
	if f == nil {
		return fmt.Errorf("no such file: %s", args[0])
	}

	out := f.Name
	if len(args) > 1 {
		out = args[1]
	}

	if err := f.Save(out); err != nil {
		return err
	}

	fmt.Printf("extracted %s to %s\n", f.Name, out)
	return nil
}

//
func cmdAdd(sh *Shell, args []string) error {

	name := ""
	if len(args) > 1 {
		name = args[1]
	}

	f, err := dos.FromCodePath(args[0], name)
	if err != nil {
		return err
	}

	if err := sh.disk.Add(f, -1); err != nil {
		return err
	}

	fmt.Printf("added %s (%d sectors)\n", f.Name, f.Sectors)
	return nil
}

//
func cmdRemove(sh *Shell, args []string) error {

	count := sh.disk.Delete(args[0])
	if count == 0 {
		return fmt.Errorf("no file matches %s", args[0])
	}

	fmt.Printf("deleted %d file(s)\n", count)
	return nil
}

// cmdBAM prints the allocation state of the data area, one line per
// cylinder, '#' for allocated sectors.
func cmdBAM(sh *Shell, args []string) error {

	spt := sh.disk.SectorsPerTrack()
	bam := sh.disk.BAM()

	marked := make(map[dos.Address]bool)
	for _, a := range bam.Addresses(spt) {
		marked[a] = true
	}

	for _, side := range []int{0, 0x80} {
		fmt.Printf("side %d:\n", side>>7)
		for track := 0; track < 80; track++ {
			if side == 0 && track < sh.disk.DirTracks {
				continue
			}
			fmt.Printf("  track %3d  ", side+track)
			for sector := 1; sector <= spt; sector++ {
				if marked[dos.Address{Track: side + track, Sector: sector}] {
					fmt.Print("#")
				} else {
					fmt.Print(".")
				}
			}
			fmt.Println()
		}
	}

	fmt.Printf("%d sectors allocated\n", bam.Count())
	return nil
}

//
func cmdSave(sh *Shell, args []string) error {

	path := sh.disk.Path()
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("image has no file, give one to save to")
	}

	if err := sh.disk.Save(
		path, sh.disk.Compressed(), sh.disk.SectorsPerTrack()); err != nil {
		return err
	}

	sh.name = filepath.Base(path)
	fmt.Printf("saved to %s\n", path)
	return nil
}

//
func cmdHelp(sh *Shell, args []string) error {

	var names []string
	for n := range sh.commands {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		c := sh.commands[n]
		fmt.Printf("%-32s %s\n", c.synopsis, c.description)
	}
	return nil
}

//
func cmdQuit(sh *Shell, args []string) error {
	sh.quit = true
	return nil
}
