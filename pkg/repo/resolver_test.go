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

package repo

import (
	"io/ioutil"
	"path/filepath"
	"testing"
)

//
func TestResolve(t *testing.T) {

	dir := t.TempDir()
	want := []byte("image bytes")
	if err := ioutil.WriteFile(
		filepath.Join(dir, "demo.mgt"), want, 0644); err != nil {
		t.Fatal(err)
	}

	src, err := Resolve("repo://demo.mgt", dir)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	defer src.Close()

	got, err := ioutil.ReadAll(src)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("read %q, want %q", got, want)
	}
}

//
func TestResolveRejects(t *testing.T) {

	var tests = []struct {
		name string
		ref  string
		repo string
	}{
		{"no-repo", "repo://demo.mgt", ""},
		{"not-a-ref", "demo.mgt", "/tmp"},
		{"escape", "repo://../../etc/passwd", "/tmp/repo"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Resolve(test.ref, test.repo); err == nil {
				t.Error("reference accepted")
			}
		})
	}
}
