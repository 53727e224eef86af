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

package shell

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mgtdrive/mgtdrive/pkg/mgt/dos"
)

func TestSplitLine(t *testing.T) {

	cases := []struct {
		line string
		verb string
		args []string
	}{
		{"", "", nil},
		{"dir", "dir", nil},
		{"  mount  foo.mgt ", "mount", []string{"foo.mgt"}},
		{`extract "my file" out.bin`, "extract",
			[]string{"my file", "out.bin"}},
		{`add "a b c"`, "add", []string{"a b c"}},
	}

	for _, c := range cases {
		verb, args := splitLine(c.line)
		if verb != c.verb || !reflect.DeepEqual(args, c.args) {
			t.Errorf("splitLine(%q) = %q %v, want %q %v",
				c.line, verb, args, c.verb, c.args)
		}
	}
}

func TestProcessValidation(t *testing.T) {

	sh, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := sh.process("bogus"); err == nil {
		t.Errorf("unknown command accepted")
	}
	if err := sh.process("dir"); err == nil {
		t.Errorf("dir accepted without a mounted image")
	}
	if err := sh.process("mount"); err == nil {
		t.Errorf("mount accepted without argument")
	}
	if err := sh.process("type a b"); err == nil {
		t.Errorf("type accepted with too many arguments")
	}
	if err := sh.process(""); err != nil {
		t.Errorf("empty line rejected: %v", err)
	}
}

func TestMountedWorkflow(t *testing.T) {

	path := filepath.Join(t.TempDir(), "work.mgt")

	d := dos.NewDisk()
	if _, err := d.AddCodeFile([]byte("hello shell"), "greet", -1); err != nil {
		t.Fatalf("AddCodeFile failed: %v", err)
	}
	if err := d.Save(path, false, 10); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	sh, err := New(path)
	if err != nil {
		t.Fatalf("New with mount failed: %v", err)
	}

	if sh.disk == nil || sh.disk.FileCount() != 1 {
		t.Fatalf("image not mounted")
	}

	if err := sh.process("dir"); err != nil {
		t.Errorf("dir failed: %v", err)
	}
	if err := sh.process("bam"); err != nil {
		t.Errorf("bam failed: %v", err)
	}
	if err := sh.process("rm greet"); err != nil {
		t.Errorf("rm failed: %v", err)
	}
	if sh.disk.FileCount() != 0 {
		t.Errorf("file not deleted")
	}
	if err := sh.process("save"); err != nil {
		t.Errorf("save failed: %v", err)
	}

	reloaded, err := dos.Open(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.FileCount() != 0 {
		t.Errorf("delete not persisted")
	}

	if err := sh.process("quit"); err != nil {
		t.Errorf("quit failed: %v", err)
	}
	if !sh.quit {
		t.Errorf("quit flag not set")
	}
}
