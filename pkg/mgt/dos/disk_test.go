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

package dos

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
)

//
func testPayload(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i * 7)
	}
	return data
}

//
func TestRoundTrip(t *testing.T) {

	var tests = []struct {
		spt        int
		compressed bool
	}{
		{10, false},
		{10, true},
		{9, false},
		{9, true},
	}

	for _, test := range tests {
		t.Run(fmt.Sprintf("spt%d-compressed%v", test.spt, test.compressed),
			func(t *testing.T) {

				d := NewDisk()
				if _, err := d.AddCodeFile(
					testPayload(2000), "first", -1); err != nil {
					t.Fatalf("add failed: %v", err)
				}
				if _, err := d.AddCodeFile(
					testPayload(5000), "second", -1); err != nil {
					t.Fatalf("add failed: %v", err)
				}

				path := filepath.Join(t.TempDir(), "roundtrip.mgt")
				if err := d.Save(path, test.compressed, test.spt); err != nil {
					t.Fatalf("save failed: %v", err)
				}

				got, err := Open(path)
				if err != nil {
					t.Fatalf("open failed: %v", err)
				}

				if got.Compressed() != test.compressed {
					t.Errorf("compressed = %v, want %v",
						got.Compressed(), test.compressed)
				}
				if got.FileCount() != d.FileCount() {
					t.Fatalf("file count %d, want %d",
						got.FileCount(), d.FileCount())
				}

				for ix, want := range d.Files() {
					f := got.Files()[ix]
					if f.Type != want.Type || f.Name != want.Name {
						t.Errorf("file %d is %s %q, want %s %q",
							ix, f.Type, f.Name, want.Type, want.Name)
					}
					if f.Start != want.Start || f.Length != want.Length {
						t.Errorf("file %d start/length %d/%d, want %d/%d",
							ix, f.Start, f.Length, want.Start, want.Length)
					}
					if !bytes.Equal(f.Data, want.Data) {
						t.Errorf("file %d data differs", ix)
					}
				}

				if !got.BAM().Equal(d.BAM()) {
					t.Error("allocation maps differ after round trip")
				}
			})
	}
}

//
func TestAllocationCount(t *testing.T) {

	d := NewDisk()
	length := 2000
	f, err := d.AddCodeFile(testPayload(length), "sized", -1)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	want := (length + codeHeaderLen + 509) / 510
	if f.Sectors != want {
		t.Errorf("file occupies %d sectors, want %d", f.Sectors, want)
	}

	if _, err := d.ToImage(10); err != nil {
		t.Fatalf("layout failed: %v", err)
	}

	if got := d.BAM().Count(); got != want {
		t.Errorf("allocation map population %d, want %d", got, want)
	}
}

//
func TestAllocationDisjoint(t *testing.T) {

	d := NewDisk()
	for i := 0; i < 5; i++ {
		if _, err := d.AddCodeFile(
			testPayload(1000+i*700), fmt.Sprintf("file%d", i), -1); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}
	if _, err := d.ToImage(10); err != nil {
		t.Fatalf("layout failed: %v", err)
	}

	seen := map[Address]string{}
	total := 0
	for _, f := range d.Files() {
		for _, a := range f.SectorAddresses() {
			if owner, clash := seen[a]; clash {
				t.Fatalf("%s claimed by both %q and %q", a, owner, f.Name)
			}
			seen[a] = f.Name
			total++
		}
	}

	if got := d.BAM().Count(); got != total {
		t.Errorf("allocation map population %d, want %d", got, total)
	}
}

//
func TestDeleteIdempotent(t *testing.T) {

	d := NewDisk()
	if _, err := d.AddCodeFile(testPayload(100), "keeper", -1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := d.ToImage(10); err != nil {
		t.Fatalf("layout failed: %v", err)
	}
	before := d.BAM()

	if got := d.Delete("nomatch*"); got != 0 {
		t.Errorf("deleted %d files, want 0", got)
	}
	if d.FileCount() != 1 {
		t.Errorf("file count %d, want 1", d.FileCount())
	}
	if !d.BAM().Equal(before) {
		t.Error("allocation map changed by no-op delete")
	}
}

//
func TestDeletePattern(t *testing.T) {

	d := NewDisk()
	for _, name := range []string{"game1", "game2", "loader"} {
		if _, err := d.AddCodeFile(testPayload(100), name, -1); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	if got := d.Delete("GAME?"); got != 2 {
		t.Errorf("deleted %d files, want 2", got)
	}
	if d.FileCount() != 1 || d.Files()[0].Name != "loader" {
		t.Errorf("unexpected survivors: %v", d.Files())
	}

	// erased slots stay in place, the survivor keeps its position
	if d.Slots()[0] != nil || d.Slots()[1] != nil || d.Slots()[2] == nil {
		t.Error("erased slots did not keep their positions")
	}
}

// Deleting a file between two others must not cut the directory short
// on disk; both neighbours have to survive a save and reopen.
func TestDeleteSurvivesSave(t *testing.T) {

	d := NewDisk()
	for _, name := range []string{"first", "middle", "last"} {
		if _, err := d.AddCodeFile(testPayload(600), name, -1); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}
	if got := d.Delete("middle"); got != 1 {
		t.Fatalf("deleted %d files, want 1", got)
	}

	path := filepath.Join(t.TempDir(), "holes.mgt")
	if err := d.Save(path, false, 10); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if got.FileCount() != 2 {
		t.Fatalf("file count %d after reopen, want 2", got.FileCount())
	}
	for _, name := range []string{"first", "last"} {
		f := got.Find(name)
		if f == nil {
			t.Errorf("file %q lost across save", name)
			continue
		}
		if !bytes.Equal(f.Payload(), testPayload(600)) {
			t.Errorf("file %q content changed across save", name)
		}
	}
	if got.Find("middle") != nil {
		t.Error("deleted file came back")
	}
}

//
func TestDirectoryFull(t *testing.T) {

	d := NewDisk() // capacity 4 * 10 * 2 = 80 slots

	for i := 0; i < d.Capacity(); i++ {
		if _, err := d.AddCodeFile(
			testPayload(10), fmt.Sprintf("file%04d", i), -1); err != nil {
			t.Fatalf("add %d failed: %v", i, err)
		}
	}

	_, err := d.AddCodeFile(testPayload(10), "overflow", -1)
	var full *DirectoryFullError
	if !errors.As(err, &full) {
		t.Fatalf("got %v, want DirectoryFullError", err)
	}
	if d.FileCount() != d.Capacity() {
		t.Errorf("file count %d changed by failed add", d.FileCount())
	}
}

//
func TestOutOfSpace(t *testing.T) {

	d := NewDisk()
	// one sector more than the spt-10 data area holds
	size := (dataTracksSide+80)*10*510 - codeHeaderLen + 1
	if _, err := d.AddCodeFile(testPayload(size), "huge", -1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	_, err := d.ToImage(10)
	var oos *OutOfSpaceError
	if !errors.As(err, &oos) {
		t.Fatalf("got %v, want OutOfSpaceError", err)
	}
}

//
func TestBootable(t *testing.T) {

	payload := make([]byte, 0x200)
	copy(payload[0x100-codeHeaderLen:], "BOOT")

	boot := NewDisk()
	if _, err := boot.AddCodeFile(payload, "boot", 0); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if !boot.IsBootable() {
		t.Error("disk with boot file in slot 0 not reported bootable")
	}

	later := NewDisk()
	if _, err := later.AddCodeFile(payload, "boot", 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if later.IsBootable() {
		t.Error("disk with boot file in slot 1 reported bootable")
	}

	plain := NewDisk()
	if _, err := plain.AddCodeFile(testPayload(0x200), "app", 0); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if plain.IsBootable() {
		t.Error("disk without boot signature reported bootable")
	}
}

//
func TestVariantRoundTrip(t *testing.T) {

	var tests = []struct {
		variant Variant
		label   string
		serial  int
	}{
		{MasterDOS, "TESTDISK", 0x1234},
		{BDOS, "SIXTEENCHARLABEL", 0},
		{SAMDOS, "", 0},
	}

	for _, test := range tests {
		t.Run(test.variant.String(), func(t *testing.T) {

			d := NewDisk()
			d.Variant = test.variant
			d.Label = test.label
			d.Serial = test.serial
			if _, err := d.AddCodeFile(testPayload(100), "probe", -1); err != nil {
				t.Fatalf("add failed: %v", err)
			}

			path := filepath.Join(t.TempDir(), "variant.mgt")
			if err := d.Save(path, false, 10); err != nil {
				t.Fatalf("save failed: %v", err)
			}

			got, err := Open(path)
			if err != nil {
				t.Fatalf("open failed: %v", err)
			}

			if got.Variant != test.variant {
				t.Errorf("variant %s, want %s", got.Variant, test.variant)
			}
			if got.Label != test.label {
				t.Errorf("label %q, want %q", got.Label, test.label)
			}
			if test.variant == MasterDOS && got.Serial != test.serial {
				t.Errorf("serial %#x, want %#x", got.Serial, test.serial)
			}
		})
	}
}

//
func TestExportImport(t *testing.T) {

	d := NewDisk()
	f, err := d.AddCodeFile(testPayload(1234), "export", -1)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := d.ToImage(10); err != nil {
		t.Fatalf("layout failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "export.file")
	if err := f.Save(path); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if got.Type != f.Type || got.Name != f.Name ||
		got.Start != f.Start || got.Length != f.Length {
		t.Errorf("imported %s %q %d/%d, want %s %q %d/%d",
			got.Type, got.Name, got.Start, got.Length,
			f.Type, f.Name, f.Start, f.Length)
	}
	if !bytes.Equal(got.Data, f.Data) {
		t.Error("imported data differs")
	}
}

//
func TestDirListing(t *testing.T) {

	d := NewDisk()
	if _, err := d.AddCodeFile(testPayload(100), "hello", -1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	listing := d.Dir()
	for _, want := range []string{"* SAMDOS:", "hello", "1 files"} {
		if !contains(listing, want) {
			t.Errorf("listing misses %q:\n%s", want, listing)
		}
	}
}

//
func contains(s, sub string) bool {
	return bytes.Contains([]byte(s), []byte(sub))
}

//
func TestDirPosition(t *testing.T) {

	var tests = []struct {
		index, spt              int
		track, sector, offset int
	}{
		{0, 10, 0, 1, 0},
		{1, 10, 0, 1, 256},
		{2, 10, 0, 2, 0},
		{19, 10, 0, 10, 256},
		{20, 10, 1, 1, 0},
		{79, 10, 3, 10, 256},
		{0, 9, 0, 1, 0},
		{17, 9, 0, 9, 256},
		{18, 9, 1, 1, 0},
	}

	for _, test := range tests {
		track, sector, offset := dirPosition(test.index, test.spt)
		if track != test.track || sector != test.sector ||
			offset != test.offset {
			t.Errorf("slot %d at spt %d: got %d/%d/%d, want %d/%d/%d",
				test.index, test.spt, track, sector, offset,
				test.track, test.sector, test.offset)
		}
	}
}
