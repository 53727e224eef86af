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
)

// SAM directory entries express addresses and lengths as 3-byte
// page/offset triples: a 5-bit 16K page number and a 15-bit offset,
// offset stored little endian with bit 15 masked off.

//
func unpackTriple(data []byte) (int, int) {
	return int(data[0] & 0x1f), int(data[2]&0x7f)*256 + int(data[1])
}

// tripleToAddr converts a start triple to a flat address. Pages are
// mapped into section C/D of the address space.
func tripleToAddr(data []byte) int {
	page, addr := unpackTriple(data)
	return page*16384 + addr + 0x4000
}

//
func tripleToLen(data []byte) int {
	pages, remain := unpackTriple(data)
	return pages*16384 + remain
}

// tripleToExec converts an execute triple; 0xff in the page byte means
// no execute address.
func tripleToExec(data []byte) *int {
	if data[0] == 0xff {
		return nil
	}
	page, offset := unpackTriple(data)
	val := page*16384 + offset
	return &val
}

// tripleToLine converts an auto-start line triple; 0xff in the first
// byte means no auto-start.
func tripleToLine(data []byte) *int {
	if data[0] == 0xff {
		return nil
	}
	val := int(data[2])*256 + int(data[1])
	return &val
}

//
func addrToTriple(addr int) []byte {
	if addr < 0 {
		return []byte{0, 0, 0}
	}
	page := ((addr >> 14) - 1) & 0x1f
	offset := (addr & 0x3fff) + 0x8000
	return []byte{byte(page), byte(offset), byte(offset >> 8)}
}

//
func lenToTriple(length int) []byte {
	if length < 0 {
		return []byte{0, 0, 0}
	}
	pages := (length >> 14) & 0x1f
	remain := length & 0x3fff
	return []byte{byte(pages), byte(remain), byte(remain >> 8)}
}

//
func execToTriple(exec *int) []byte {
	if exec == nil {
		return []byte{0xff, 0xff, 0xff}
	}
	page := (*exec >> 14) & 0x1f
	offset := (*exec & 0x3fff) + 0x8000
	return []byte{byte(page), byte(offset), byte(offset >> 8)}
}

//
func lineToTriple(line *int) ([]byte, error) {
	if line == nil {
		return []byte{0xff, 0xff, 0xff}, nil
	}
	if *line < 0 || *line >= 0xff00 {
		return nil, fmt.Errorf("auto-start line %d out of range", *line)
	}
	return []byte{0, byte(*line), byte(*line >> 8)}, nil
}
