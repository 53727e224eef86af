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

// mgtImage is the plain MGT dump: no header, sectors in cylinder order
// with side 0 before side 1 within each cylinder.
type mgtImage struct {
	container
}

// NewMGT creates a blank MGT image at the standard geometry.
func NewMGT(spt int) (Image, error) {
	if !mgt.ValidSectorsPerTrack(spt) {
		return nil, fmt.Errorf("invalid sectors per track: %d", spt)
	}
	return &mgtImage{container{spt: spt, data: make([]byte, mgtSize(spt))}}, nil
}

//
func (m *mgtImage) Format() Format {
	return MGT
}

//
func (m *mgtImage) SectorOffset(track, sector int) (int, error) {
	if err := mgt.CheckAddress(track, sector, m.spt); err != nil {
		return 0, err
	}
	return (mgt.Cylinder(track)*m.spt*mgt.Sides + mgt.Side(track)*m.spt +
		sector - 1) * mgt.SectorSize, nil
}

//
func (m *mgtImage) ReadSector(track, sector int) ([]byte, error) {
	offset, err := m.SectorOffset(track, sector)
	if err != nil {
		return nil, err
	}
	return m.readAt(offset), nil
}

//
func (m *mgtImage) WriteSector(track, sector int, data []byte) error {
	offset, err := m.SectorOffset(track, sector)
	if err != nil {
		return err
	}
	return m.writeAt(offset, data)
}
