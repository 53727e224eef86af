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
	"fmt"

	"github.com/mgtdrive/mgtdrive/pkg/mgt"
)

//
const sadHeaderSize = 22

//
var sadSignature = []byte("Aley's disk backup")

// sadImage is the SAD container: a 22 byte header followed by the
// sector data, all of side 0 before all of side 1.
type sadImage struct {
	container
}

// NewSAD creates a blank SAD image at the standard geometry.
func NewSAD(spt int) (Image, error) {

	if !mgt.ValidSectorsPerTrack(spt) {
		return nil, fmt.Errorf("invalid sectors per track: %d", spt)
	}

	data := make([]byte, sadSize(spt))
	copy(data, sadSignature)
	data[18] = mgt.Sides
	data[19] = mgt.Tracks
	data[20] = byte(spt)
	data[21] = mgt.SectorSize / 64

	return &sadImage{container{spt: spt, data: data}}, nil
}

//
func (s *sadImage) Format() Format {
	return SAD
}

//
func (s *sadImage) SectorOffset(track, sector int) (int, error) {
	if err := mgt.CheckAddress(track, sector, s.spt); err != nil {
		return 0, err
	}
	return sadHeaderSize +
		((mgt.Side(track)*mgt.Tracks+mgt.Cylinder(track))*s.spt+
			sector-1)*mgt.SectorSize, nil
}

//
func (s *sadImage) ReadSector(track, sector int) ([]byte, error) {
	offset, err := s.SectorOffset(track, sector)
	if err != nil {
		return nil, err
	}
	return s.readAt(offset), nil
}

//
func (s *sadImage) WriteSector(track, sector int, data []byte) error {
	offset, err := s.SectorOffset(track, sector)
	if err != nil {
		return err
	}
	return s.writeAt(offset, data)
}
