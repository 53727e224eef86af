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

package mgt

import (
	"fmt"
)

// Standard MGT geometry, shared by all container formats. A track
// address carries the side in bit 7, so side 0 is tracks 0-79 and
// side 1 is tracks 128-207. Sectors are numbered from 1.
const (
	Sides      = 2
	Tracks     = 80
	SectorSize = 512

	SideFlag = 0x80
)

//
func ValidSectorsPerTrack(spt int) bool {
	return spt == 9 || spt == 10
}

// Side extracts the side from a track address.
func Side(track int) int {
	return track >> 7
}

// Cylinder extracts the physical track number from a track address.
func Cylinder(track int) int {
	return track & 0x7f
}

//
func CheckAddress(track, sector, spt int) error {
	if track < 0 || Cylinder(track) >= Tracks || sector < 1 || sector > spt {
		return fmt.Errorf(
			"invalid sector address: track %d, sector %d", track, sector)
	}
	return nil
}

// NextAddress yields the sector address following the given one, moving
// from the last sector of side 0 to the first track of side 1. The
// address after the last sector of side 1 is invalid, which the next
// call reports.
func NextAddress(track, sector, spt int) (int, int, error) {
	if err := CheckAddress(track, sector, spt); err != nil {
		return 0, 0, err
	}
	sector++
	if sector > spt {
		sector = 1
		track++
		if track == Tracks {
			track = SideFlag
		}
	}
	return track, sector, nil
}
