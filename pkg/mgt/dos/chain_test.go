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
	"errors"
	"testing"

	"github.com/mgtdrive/mgtdrive/pkg/mgt"
	"github.com/mgtdrive/mgtdrive/pkg/mgt/image"
)

// chainedImage lays out one multi-sector file and returns the image
// together with the file's chain.
func chainedImage(t *testing.T) (image.Image, []Address) {

	t.Helper()

	d := NewDisk()
	if _, err := d.AddCodeFile(testPayload(2000), "victim", -1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	img, err := d.ToImage(10)
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}

	return img, d.Files()[0].SectorAddresses()
}

// corruptPointer rewrites the next-pointer of the chain sector at ix.
func corruptPointer(t *testing.T, img image.Image, a Address, next Address) {

	t.Helper()

	sec, err := img.ReadSector(a.Track, a.Sector)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	sec[510] = byte(next.Track)
	sec[511] = byte(next.Sector)
	if err := img.WriteSector(a.Track, a.Sector, sec); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

//
func TestChainFaults(t *testing.T) {

	var tests = []struct {
		name  string
		next  func(addrs []Address) Address
		fault ChainFault
	}{
		{
			// last pointer led back to the first sector
			"cycle",
			func(addrs []Address) Address { return addrs[0] },
			Cycle,
		},
		{
			// last pointer led into the directory area
			"out-of-bounds",
			func(addrs []Address) Address { return Address{Track: 1, Sector: 1} },
			OutOfBounds,
		},
		{
			// last pointer led to a free sector, extending the walk
			// past the declared length
			"length-mismatch",
			func(addrs []Address) Address {
				last := addrs[len(addrs)-1]
				return Address{Track: last.Track, Sector: last.Sector + 1}
			},
			LengthMismatch,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {

			img, addrs := chainedImage(t)
			corruptPointer(t, img, addrs[len(addrs)-1], test.next(addrs))

			_, err := FromImage(img, true)
			var ce *ChainError
			if !errors.As(err, &ce) {
				t.Fatalf("got %v, want ChainError", err)
			}
			if ce.Fault != test.fault {
				t.Errorf("fault %s, want %s", ce.Fault, test.fault)
			}
		})
	}
}

//
func TestLenientLoadSkips(t *testing.T) {

	img, addrs := chainedImage(t)
	corruptPointer(t, img, addrs[len(addrs)-1], addrs[0])

	d, err := FromImage(img, false)
	if err != nil {
		t.Fatalf("lenient load failed: %v", err)
	}
	if d.FileCount() != 0 {
		t.Errorf("file count %d, want 0 after skipping corrupt file", d.FileCount())
	}
}

//
func TestAllocateFirstFit(t *testing.T) {

	bam := NewSectorMap()
	addrs, err := Allocate(bam, baseDirTracks, 10, 3, false)
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	want := []Address{
		{Track: 4, Sector: 1}, {Track: 4, Sector: 2}, {Track: 4, Sector: 3}}
	for i, a := range addrs {
		if a != want[i] {
			t.Errorf("sector %d at %s, want %s", i, a, want[i])
		}
	}

	// a freed hole is reused before fresh space
	bam.Clear(Address{Track: 4, Sector: 2}, 10)
	got, err := Allocate(bam, baseDirTracks, 10, 2, false)
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if got[0] != (Address{Track: 4, Sector: 2}) ||
		got[1] != (Address{Track: 4, Sector: 4}) {
		t.Errorf("first fit picked %v", got)
	}
}

//
func TestAllocateContiguous(t *testing.T) {

	bam := NewSectorMap()
	bam.Mark(Address{Track: 4, Sector: 2}, 10)

	addrs, err := Allocate(bam, baseDirTracks, 10, 3, true)
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	// the hole at 4/1 is too small for an unbroken run of 3
	if addrs[0] != (Address{Track: 4, Sector: 3}) {
		t.Errorf("contiguous run starts at %s", addrs[0])
	}
}

//
func TestNextAddressSideSwitch(t *testing.T) {

	var tests = []struct {
		track, sector, spt     int
		wantTrack, wantSector int
	}{
		{0, 1, 10, 0, 2},
		{0, 10, 10, 1, 1},
		{79, 10, 10, 128, 1},
		{79, 9, 9, 128, 1},
		{128, 10, 10, 129, 1},
	}

	for _, test := range tests {
		track, sector, err := mgt.NextAddress(test.track, test.sector, test.spt)
		if err != nil {
			t.Errorf("%d/%d: %v", test.track, test.sector, err)
			continue
		}
		if track != test.wantTrack || sector != test.wantSector {
			t.Errorf("after %d/%d: got %d/%d, want %d/%d", test.track,
				test.sector, track, sector, test.wantTrack, test.wantSector)
		}
	}

	// past the end of side 1 there is no next sector
	track, sector, err := mgt.NextAddress(207, 10, 10)
	if err == nil {
		_, _, err = mgt.NextAddress(track, sector, 10)
	}
	if err == nil {
		t.Error("no error walking past the end of the disk")
	}
}
