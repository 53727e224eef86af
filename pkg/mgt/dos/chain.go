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
	"github.com/mgtdrive/mgtdrive/pkg/mgt"
	"github.com/mgtdrive/mgtdrive/pkg/mgt/image"
)

// Chain walks and writes the sector chains of one image. Each data
// sector of a chained file holds 510 payload bytes and a 2-byte
// pointer to the next sector; a zero pointer ends the chain.
// Contiguous file types use the whole sector and follow the geometric
// successor instead.
type Chain struct {
	Img       image.Image
	DirTracks int
}

// InDataArea reports whether an address lies in the file data area,
// past the directory tracks.
func (c *Chain) InDataArea(a Address) bool {
	if mgt.CheckAddress(a.Track, a.Sector, c.Img.SectorsPerTrack()) != nil {
		return false
	}
	return mgt.Side(a.Track) == 1 || mgt.Cylinder(a.Track) >= c.DirTracks
}

// Resolve walks the chain of f from its directory-declared start,
// returning the payload and the sector list. The walk fails with a
// ChainError when a pointer leaves the data area, revisits a sector,
// or the walked length contradicts the directory; whatever was read up
// to that point is still returned, so a lenient caller can keep it.
func (c *Chain) Resolve(f *File) ([]byte, []Address, error) {

	if f.Sectors == 0 {
		return nil, nil, nil
	}

	if f.Type.IsContiguous() {
		return c.resolveContiguous(f)
	}

	payload := f.Type.PayloadBytes()
	addr := Address{Track: f.StartTrack, Sector: f.StartSector}
	seen := make(map[Address]bool)

	var data []byte
	var addrs []Address

	for {
		if !c.InDataArea(addr) {
			return data, addrs, &ChainError{Fault: OutOfBounds, File: f.Name,
				Track: addr.Track, Sector: addr.Sector}
		}
		if seen[addr] {
			return data, addrs, &ChainError{Fault: Cycle, File: f.Name,
				Track: addr.Track, Sector: addr.Sector}
		}
		seen[addr] = true

		sec, err := c.Img.ReadSector(addr.Track, addr.Sector)
		if err != nil {
			return data, addrs, err
		}

		data = append(data, sec[:payload]...)
		addrs = append(addrs, addr)

		next := Address{Track: int(sec[510]), Sector: int(sec[511])}
		if next == (Address{}) {
			break
		}
		addr = next
	}

	if len(addrs) != f.Sectors {
		return data, addrs, &ChainError{Fault: LengthMismatch, File: f.Name,
			Declared: f.Sectors, Walked: len(addrs)}
	}

	return data, addrs, nil
}

// resolveContiguous reads the declared number of consecutive sectors;
// there are no pointers to follow.
func (c *Chain) resolveContiguous(f *File) ([]byte, []Address, error) {

	spt := c.Img.SectorsPerTrack()
	addr := Address{Track: f.StartTrack, Sector: f.StartSector}

	var data []byte
	var addrs []Address

	for i := 0; i < f.Sectors; i++ {

		if !c.InDataArea(addr) {
			return data, addrs, &ChainError{Fault: OutOfBounds, File: f.Name,
				Track: addr.Track, Sector: addr.Sector}
		}

		sec, err := c.Img.ReadSector(addr.Track, addr.Sector)
		if err != nil {
			return data, addrs, err
		}

		data = append(data, sec...)
		addrs = append(addrs, addr)

		if i+1 < f.Sectors {
			track, sector, err := mgt.NextAddress(addr.Track, addr.Sector, spt)
			if err != nil {
				return data, addrs, &ChainError{Fault: OutOfBounds,
					File: f.Name, Track: addr.Track, Sector: addr.Sector}
			}
			addr = Address{Track: track, Sector: sector}
		}
	}

	return data, addrs, nil
}

// Write lays the payload out across the given sectors, linking the
// chain pointers for chained files and zero filling the final sector
// past the end of the payload.
func (c *Chain) Write(addrs []Address, data []byte, contig bool) error {

	payload := mgt.SectorSize
	if !contig {
		payload = mgt.SectorSize - 2
	}

	for i, addr := range addrs {

		buf := make([]byte, mgt.SectorSize)
		offset := i * payload
		if offset < len(data) {
			copy(buf[:payload], data[offset:])
		}

		if !contig && i+1 < len(addrs) {
			buf[510] = byte(addrs[i+1].Track)
			buf[511] = byte(addrs[i+1].Sector)
		}

		if err := c.Img.WriteSector(addr.Track, addr.Sector, buf); err != nil {
			return err
		}
	}

	return nil
}

// Allocate picks sectors for a new chain by a first-fit ascending scan
// of the free data area, which is how the stock DOS variants allocate.
// Contiguous files need an unbroken run. The chosen sectors are marked
// in bam.
func Allocate(
	bam *SectorMap, dirTracks, spt, sectors int, contig bool,
) ([]Address, error) {

	first := (dirTracks - baseDirTracks) * spt
	limit := (dataTracksSide + mgt.Tracks) * spt

	free := 0
	for ix := first; ix < limit; ix++ {
		if bam.bits[ix/8]&(1<<(ix%8)) == 0 {
			free++
		}
	}
	if free < sectors {
		return nil, &OutOfSpaceError{Needed: sectors, Free: free}
	}

	var picked []Address

	if contig {
		run := 0
		for ix := first; ix < limit; ix++ {
			if bam.bits[ix/8]&(1<<(ix%8)) != 0 {
				run = 0
				continue
			}
			run++
			if run == sectors {
				for i := ix - sectors + 1; i <= ix; i++ {
					picked = append(picked, mapAddress(i, spt))
				}
				break
			}
		}
		if len(picked) < sectors {
			return nil, &OutOfSpaceError{Needed: sectors, Free: free}
		}
	} else {
		for ix := first; ix < limit && len(picked) < sectors; ix++ {
			if bam.bits[ix/8]&(1<<(ix%8)) == 0 {
				picked = append(picked, mapAddress(ix, spt))
			}
		}
	}

	for _, a := range picked {
		bam.Mark(a, spt)
	}

	return picked, nil
}

// DeriveBAM recomputes the allocation map from the resolved sector
// lists of the given files. The copy embedded in each directory entry
// is only ever a hint; this derivation is the authority.
func DeriveBAM(files []*File, spt int) *SectorMap {
	bam := NewSectorMap()
	for _, f := range files {
		if f == nil || f.Type == TypeNone {
			continue
		}
		for _, a := range f.addrs {
			bam.Mark(a, spt)
		}
	}
	return bam
}
