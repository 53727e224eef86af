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
	"fmt"
	"math/bits"

	"github.com/mgtdrive/mgtdrive/pkg/mgt"
)

// The sector map region of a directory entry covers the data area with
// one bit per sector: 156 data tracks (76 on side 0 after the four
// base directory tracks, 80 on side 1), up to 10 sectors each, least
// significant bit first.
const (
	sectorMapLen  = 195
	sectorMapBits = sectorMapLen * 8

	baseDirTracks  = 4
	dataTracksSide = mgt.Tracks - baseDirTracks
)

// Address is one sector location.
type Address struct {
	Track  int
	Sector int
}

//
func (a Address) String() string {
	return fmt.Sprintf("track %d, sector %d", a.Track, a.Sector)
}

// SectorMap is a bitmap over the data area, used both for the
// per-entry occupancy region and for the disk wide allocation map.
type SectorMap struct {
	bits [sectorMapLen]byte
}

// NewSectorMap returns an empty map.
func NewSectorMap() *SectorMap {
	return &SectorMap{}
}

// SectorMapFromBytes copies the 195-byte map region of a directory
// entry.
func SectorMapFromBytes(data []byte) *SectorMap {
	m := &SectorMap{}
	copy(m.bits[:], data)
	return m
}

// mapIndex turns a sector address into its bit position, or -1 for
// addresses outside the mapped data area.
func mapIndex(a Address, spt int) int {
	cyl := mgt.Cylinder(a.Track)
	if a.Sector < 1 || a.Sector > spt || cyl >= mgt.Tracks {
		return -1
	}
	var track int
	if mgt.Side(a.Track) == 0 {
		track = cyl - baseDirTracks
		if track < 0 {
			return -1
		}
	} else {
		track = dataTracksSide + cyl
	}
	return track*spt + a.Sector - 1
}

// mapAddress is the inverse of mapIndex.
func mapAddress(ix, spt int) Address {
	track := ix / spt
	sector := ix%spt + 1
	if track < dataTracksSide {
		return Address{Track: track + baseDirTracks, Sector: sector}
	}
	return Address{Track: mgt.SideFlag + track - dataTracksSide, Sector: sector}
}

//
func (m *SectorMap) Mark(a Address, spt int) {
	if ix := mapIndex(a, spt); ix >= 0 && ix < sectorMapBits {
		m.bits[ix/8] |= 1 << (ix % 8)
	}
}

//
func (m *SectorMap) Clear(a Address, spt int) {
	if ix := mapIndex(a, spt); ix >= 0 && ix < sectorMapBits {
		m.bits[ix/8] &^= 1 << (ix % 8)
	}
}

//
func (m *SectorMap) Marked(a Address, spt int) bool {
	ix := mapIndex(a, spt)
	return ix >= 0 && ix < sectorMapBits && m.bits[ix/8]&(1<<(ix%8)) != 0
}

// Count is the number of marked sectors.
func (m *SectorMap) Count() int {
	n := 0
	for _, b := range m.bits {
		n += bits.OnesCount8(b)
	}
	return n
}

// Or merges other into m.
func (m *SectorMap) Or(other *SectorMap) {
	if other == nil {
		return
	}
	for i := range m.bits {
		m.bits[i] |= other.bits[i]
	}
}

//
func (m *SectorMap) Equal(other *SectorMap) bool {
	if other == nil {
		return false
	}
	return m.bits == other.bits
}

// Bytes is the on-disk form of the map.
func (m *SectorMap) Bytes() []byte {
	out := make([]byte, sectorMapLen)
	copy(out, m.bits[:])
	return out
}

// Addresses lists the marked sectors in ascending data area order.
func (m *SectorMap) Addresses(spt int) []Address {
	var out []Address
	for ix := 0; ix < (dataTracksSide+mgt.Tracks)*spt; ix++ {
		if m.bits[ix/8]&(1<<(ix%8)) != 0 {
			out = append(out, mapAddress(ix, spt))
		}
	}
	return out
}

// mapFromAddresses builds the occupancy map of one file's sector list.
func mapFromAddresses(addrs []Address, spt int) *SectorMap {
	m := NewSectorMap()
	for _, a := range addrs {
		m.Mark(a, spt)
	}
	return m
}
