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
	"fmt"

	"github.com/mgtdrive/mgtdrive/pkg/mgt"
	"github.com/mgtdrive/mgtdrive/pkg/mgt/raw"
)

//
const (
	edskDiskHeaderLen  = 0x100
	edskTrackHeaderLen = 0x100

	edskSectorInfoStart = 0x18
	edskSectorInfoLen   = 8

	// sector size code 2 = 512 bytes
	edskSizeCode = 2
)

//
var edskSignature = []byte("EXTENDED CPC DSK File\r\nDisk-Info\r\n")
var edskTrackSignature = []byte("Track-Info\r\n")
var edskCreator = []byte("MGTDrive")

// field index for one EDSK track header block
var edskTrackIndex = map[string][2]int{
	"signature": {0x00, 12},
	"track":     {0x10, 1},
	"side":      {0x11, 1},
	"sizecode":  {0x14, 1},
	"sectors":   {0x15, 1},
	"gap3":      {0x16, 1},
	"filler":    {0x17, 1},
}

// edskImage is the extended DSK container: a disk header, then one
// header plus sector data block per track, cylinder by cylinder with
// alternating sides. Only images where every track declares the uniform
// standard geometry are supported; anything else is rejected rather
// than approximated.
type edskImage struct {
	container
}

// NewEDSK creates a blank EDSK image at the standard geometry.
func NewEDSK(spt int) (Image, error) {

	if !mgt.ValidSectorsPerTrack(spt) {
		return nil, fmt.Errorf("invalid sectors per track: %d", spt)
	}

	data := make([]byte, edskSize(spt))
	copy(data, edskSignature)
	copy(data[0x22:0x30], edskCreator)
	data[0x30] = mgt.Tracks
	data[0x31] = mgt.Sides

	trackLen := edskTrackHeaderLen + spt*mgt.SectorSize
	for t := 0; t < mgt.Sides*mgt.Tracks; t++ {
		data[0x34+t] = byte(trackLen / 0x100)
	}

	img := &edskImage{container{spt: spt, data: data}}

	for side := 0; side < mgt.Sides; side++ {
		for cyl := 0; cyl < mgt.Tracks; cyl++ {
			img.formatTrack(side*mgt.SideFlag + cyl)
		}
	}

	return img, nil
}

// formatTrack fills in the header block of one track, with sector IDs
// laid out in ascending order.
func (e *edskImage) formatTrack(track int) {

	hd := raw.NewBlock(e.trackHeader(track))

	hd.SetSlice("signature", edskTrackSignature, false)
	hd.SetByte("track", byte(mgt.Cylinder(track)))
	hd.SetByte("side", byte(mgt.Side(track)))
	hd.SetByte("sizecode", edskSizeCode)
	hd.SetByte("sectors", byte(e.spt))
	hd.SetByte("gap3", 0x4e)
	hd.SetByte("filler", 0x00)

	for i := 0; i < e.spt; i++ {
		info := hd.Data[edskSectorInfoStart+i*edskSectorInfoLen:]
		info[0] = byte(mgt.Cylinder(track))
		info[1] = byte(mgt.Side(track))
		info[2] = byte(i + 1)
		info[3] = edskSizeCode
		info[6] = byte(mgt.SectorSize & 0xff)
		info[7] = byte(mgt.SectorSize >> 8)
	}
}

//
func (e *edskImage) Format() Format {
	return EDSK
}

//
func (e *edskImage) trackOffset(track int) int {
	return edskDiskHeaderLen +
		(mgt.Cylinder(track)*mgt.Sides+mgt.Side(track))*
			(edskTrackHeaderLen+e.spt*mgt.SectorSize)
}

//
func (e *edskImage) trackHeader(track int) (map[string][2]int, []byte) {
	offset := e.trackOffset(track)
	return edskTrackIndex, e.data[offset : offset+edskTrackHeaderLen]
}

// validate rejects containers whose track headers deviate from the
// uniform standard geometry.
func (e *edskImage) validate() error {

	if !bytes.HasPrefix(e.data, edskSignature[:8]) {
		return &UnsupportedFormatError{
			Size: len(e.data), Reason: "missing extended DSK signature"}
	}

	for side := 0; side < mgt.Sides; side++ {
		for cyl := 0; cyl < mgt.Tracks; cyl++ {

			track := side*mgt.SideFlag + cyl
			hd := raw.NewBlock(e.trackHeader(track))

			if !bytes.Equal(hd.GetSlice("signature"), edskTrackSignature) {
				return &UnsupportedFormatError{Size: len(e.data),
					Reason: fmt.Sprintf("bad track header at track %d", track)}
			}

			if hd.GetByte("sizecode") != edskSizeCode ||
				int(hd.GetByte("sectors")) != e.spt {
				return &UnsupportedFormatError{Size: len(e.data),
					Reason: fmt.Sprintf(
						"track %d is not uniform standard geometry", track)}
			}

			for i := 0; i < e.spt; i++ {
				info := hd.Data[edskSectorInfoStart+i*edskSectorInfoLen:]
				if info[3] != edskSizeCode {
					return &UnsupportedFormatError{Size: len(e.data),
						Reason: fmt.Sprintf(
							"track %d declares a non standard sector size",
							track)}
				}
			}
		}
	}

	return nil
}

// SectorOffset locates the sector by its ID in the track header's
// sector info table, since EDSK tracks may store sectors in any order.
func (e *edskImage) SectorOffset(track, sector int) (int, error) {

	if err := mgt.CheckAddress(track, sector, e.spt); err != nil {
		return 0, err
	}

	offset := e.trackOffset(track)

	for i := 0; i < e.spt; i++ {
		id := e.data[offset+edskSectorInfoStart+i*edskSectorInfoLen+2]
		if int(id) == sector {
			return offset + edskTrackHeaderLen + i*mgt.SectorSize, nil
		}
	}

	return 0, &CorruptImageError{Path: e.path, Reason: fmt.Sprintf(
		"sector %d missing from header of track %d", sector, track)}
}

//
func (e *edskImage) ReadSector(track, sector int) ([]byte, error) {
	offset, err := e.SectorOffset(track, sector)
	if err != nil {
		return nil, err
	}
	return e.readAt(offset), nil
}

//
func (e *edskImage) WriteSector(track, sector int, data []byte) error {
	offset, err := e.SectorOffset(track, sector)
	if err != nil {
		return err
	}
	return e.writeAt(offset, data)
}
