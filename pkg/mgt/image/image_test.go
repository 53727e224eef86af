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

package image

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

//
func newBlank(t *testing.T, f Format, spt int) Image {
	t.Helper()
	var img Image
	var err error
	switch f {
	case MGT:
		img, err = NewMGT(spt)
	case SAD:
		img, err = NewSAD(spt)
	case EDSK:
		img, err = NewEDSK(spt)
	}
	if err != nil {
		t.Fatalf("creating blank %s image: %v", f, err)
	}
	return img
}

//
func TestDetectFormat(t *testing.T) {

	var tests = []struct {
		format Format
		spt    int
		size   int
	}{
		{MGT, 10, 819200},
		{MGT, 9, 737280},
		{SAD, 10, 819222},
		{SAD, 9, 737302},
		{EDSK, 10, 860416},
		{EDSK, 9, 778496},
	}

	for _, test := range tests {
		t.Run(fmt.Sprintf("%s-%d", test.format, test.spt), func(t *testing.T) {
			img := newBlank(t, test.format, test.spt)
			if len(img.Data()) != test.size {
				t.Errorf("container size %d, want %d", len(img.Data()), test.size)
			}
			got, err := FromBytes(img.Data())
			if err != nil {
				t.Fatalf("detect failed: %v", err)
			}
			if got.Format() != test.format {
				t.Errorf("detected %s, want %s", got.Format(), test.format)
			}
			if got.SectorsPerTrack() != test.spt {
				t.Errorf("detected spt %d, want %d",
					got.SectorsPerTrack(), test.spt)
			}
		})
	}
}

//
func TestDetectUnsupported(t *testing.T) {
	for _, size := range []int{0, 12345, 819201, 860417} {
		_, err := FromBytes(make([]byte, size))
		var uf *UnsupportedFormatError
		if !errors.As(err, &uf) {
			t.Errorf("size %d: got %v, want UnsupportedFormatError", size, err)
		}
	}
}

//
func TestMGTSectorOffsets(t *testing.T) {

	var tests = []struct {
		spt, track, sector, want int
	}{
		{10, 0, 1, 0},
		{10, 0, 2, 512},
		{10, 1, 1, 1 * 2 * 10 * 512},
		{10, 4, 1, 4 * 2 * 10 * 512},
		{10, 79, 10, (79*2*10 + 9) * 512},
		{10, 128, 1, 10 * 512},
		{10, 207, 10, (80*2*10 - 1) * 512},
		{9, 0, 1, 0},
		{9, 1, 1, 2 * 9 * 512},
		{9, 79, 9, (79*2*9 + 8) * 512},
		{9, 128, 1, 9 * 512},
		{9, 207, 9, (80*2*9 - 1) * 512},
	}

	for _, test := range tests {
		img := newBlank(t, MGT, test.spt)
		got, err := img.SectorOffset(test.track, test.sector)
		if err != nil {
			t.Errorf("track %d sector %d: %v", test.track, test.sector, err)
			continue
		}
		if got != test.want {
			t.Errorf("track %d sector %d at spt %d: offset %d, want %d",
				test.track, test.sector, test.spt, got, test.want)
		}
	}
}

//
func TestSADSectorOffsets(t *testing.T) {

	var tests = []struct {
		track, sector, want int
	}{
		{0, 1, 22},
		{0, 2, 22 + 512},
		{1, 1, 22 + 10*512},
		{79, 10, 22 + (79*10+9)*512},
		{128, 1, 22 + 80*10*512},
		{207, 10, 22 + ((80+79)*10+9)*512},
	}

	img := newBlank(t, SAD, 10)
	for _, test := range tests {
		got, err := img.SectorOffset(test.track, test.sector)
		if err != nil {
			t.Errorf("track %d sector %d: %v", test.track, test.sector, err)
			continue
		}
		if got != test.want {
			t.Errorf("track %d sector %d: offset %d, want %d",
				test.track, test.sector, got, test.want)
		}
	}
}

//
func TestEDSKSectorOffsets(t *testing.T) {

	var tests = []struct {
		spt, track, sector, want int
	}{
		{10, 0, 1, 0x100 + 0x100},
		{10, 0, 2, 0x100 + 0x100 + 512},
		{10, 1, 1, 0x100 + 0x1500*2 + 0x100},
		{10, 79, 10, 0x100 + 0x1500*79*2 + 0x100 + 9*512},
		{10, 128, 1, 0x100 + 0x1500 + 0x100},
		{10, 207, 10, 0x100 + 0x1500*(79*2+1) + 0x100 + 9*512},
		{9, 0, 1, 0x100 + 0x100},
		{9, 1, 1, 0x100 + 0x1300*2 + 0x100},
		{9, 207, 9, 0x100 + 0x1300*(79*2+1) + 0x100 + 8*512},
	}

	for _, test := range tests {
		img := newBlank(t, EDSK, test.spt)
		got, err := img.SectorOffset(test.track, test.sector)
		if err != nil {
			t.Errorf("track %d sector %d: %v", test.track, test.sector, err)
			continue
		}
		if got != test.want {
			t.Errorf("track %d sector %d at spt %d: offset %d, want %d",
				test.track, test.sector, test.spt, got, test.want)
		}
	}
}

// EDSK tracks may store sectors in any physical order; the offset
// lookup has to follow the ID table, not assume ascending slots.
func TestEDSKInterleavedSectors(t *testing.T) {

	img := newBlank(t, EDSK, 10).(*edskImage)

	offset := img.trackOffset(0)
	ids := []byte{1, 6, 2, 7, 3, 8, 4, 9, 5, 10}
	for i, id := range ids {
		img.data[offset+edskSectorInfoStart+i*edskSectorInfoLen+2] = id
	}

	for i, id := range ids {
		want := offset + edskTrackHeaderLen + i*512
		got, err := img.SectorOffset(0, int(id))
		if err != nil {
			t.Fatalf("sector %d: %v", id, err)
		}
		if got != want {
			t.Errorf("sector %d: offset %d, want %d", id, got, want)
		}
	}
}

//
func TestEDSKRejectsNonUniform(t *testing.T) {

	img := newBlank(t, EDSK, 10).(*edskImage)
	data := append([]byte(nil), img.Data()...)

	// declare 256 byte sectors on one track
	data[img.trackOffset(40)+0x14] = 1

	_, err := FromBytes(data)
	var uf *UnsupportedFormatError
	if !errors.As(err, &uf) {
		t.Errorf("got %v, want UnsupportedFormatError", err)
	}
}

//
func TestInvalidAddresses(t *testing.T) {

	var tests = []struct {
		track, sector int
	}{
		{-1, 1},
		{0, 0},
		{0, 11},
		{80, 1},
		{127, 1},
		{208, 1},
	}

	for _, f := range []Format{MGT, SAD, EDSK} {
		img := newBlank(t, f, 10)
		for _, test := range tests {
			if _, err := img.SectorOffset(test.track, test.sector); err == nil {
				t.Errorf("%s: track %d sector %d: expected error",
					f, test.track, test.sector)
			}
		}
	}
}

//
func TestReadWriteSector(t *testing.T) {

	data := make([]byte, 512)
	for i := range data {
		data[i] = byte(i)
	}

	for _, f := range []Format{MGT, SAD, EDSK} {
		img := newBlank(t, f, 10)

		if err := img.WriteSector(10, 5, data); err != nil {
			t.Fatalf("%s: write: %v", f, err)
		}
		got, err := img.ReadSector(10, 5)
		if err != nil {
			t.Fatalf("%s: read: %v", f, err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("%s: sector data mismatch after write", f)
		}

		if err := img.WriteSector(0, 1, make([]byte, 511)); err == nil {
			t.Errorf("%s: expected error for short sector", f)
		}
		if err := img.WriteSector(0, 1, make([]byte, 513)); err == nil {
			t.Errorf("%s: expected error for long sector", f)
		}
	}
}

//
func TestSaveAndReopen(t *testing.T) {

	for _, compressed := range []bool{false, true} {
		name := "plain"
		if compressed {
			name = "gzip"
		}
		t.Run(name, func(t *testing.T) {

			img := newBlank(t, MGT, 10)
			if err := img.WriteSector(4, 1, bytes.Repeat([]byte{0xaa}, 512)); err != nil {
				t.Fatal(err)
			}

			path := filepath.Join(t.TempDir(), "out.mgt")
			if err := img.Save(path, compressed); err != nil {
				t.Fatalf("save: %v", err)
			}

			if compressed {
				info, err := os.Stat(path)
				if err != nil {
					t.Fatal(err)
				}
				if info.Size() >= 10000 {
					t.Errorf("compressed blank image is %d bytes", info.Size())
				}
			}

			got, err := Open(path)
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			if got.Compressed() != compressed {
				t.Errorf("compressed flag %v, want %v",
					got.Compressed(), compressed)
			}
			if got.Path() == "" {
				t.Error("opened image lost its backing path")
			}
			if !bytes.Equal(got.Data(), img.Data()) {
				t.Error("container data changed across save/open")
			}
		})
	}
}

//
func TestOpenTruncatedGzip(t *testing.T) {

	path := filepath.Join(t.TempDir(), "bad.mgt.gz")
	if err := os.WriteFile(path, []byte{0x1f, 0x8b, 0x01, 0x02}, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Open(path)
	var ci *CorruptImageError
	if !errors.As(err, &ci) {
		t.Errorf("got %v, want CorruptImageError", err)
	}
}

//
func TestConvert(t *testing.T) {

	src := newBlank(t, MGT, 10)
	sector := bytes.Repeat([]byte{0x42}, 512)
	if err := src.WriteSector(130, 7, sector); err != nil {
		t.Fatal(err)
	}

	for _, f := range []Format{SAD, EDSK} {
		out, err := Convert(src, f)
		if err != nil {
			t.Fatalf("convert to %s: %v", f, err)
		}
		if out.Format() != f {
			t.Errorf("converted format %s, want %s", out.Format(), f)
		}
		got, err := out.ReadSector(130, 7)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, sector) {
			t.Errorf("sector data lost converting to %s", f)
		}
	}
}
