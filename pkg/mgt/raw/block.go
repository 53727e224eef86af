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

package raw

//
func NewBlock(index map[string][2]int, data []byte) *Block {
	return &Block{index: index, Data: data}
}

// Block gives named access to the fields of a raw byte block, such as a
// directory entry or a command frame. The index maps field name to
// offset and length within the block.
type Block struct {
	index map[string][2]int
	Data  []byte
}

//
func (b *Block) GetByte(key string) byte {
	if ix, ok := b.index[key]; ok {
		if 0 <= ix[0] && ix[0] < len(b.Data) && ix[1] == 1 {
			return b.Data[ix[0]]
		}
	}
	return 0
}

//
func (b *Block) GetSlice(key string) []byte {
	if ix, ok := b.index[key]; ok {
		start := ix[0]
		end := start + ix[1]
		if 0 <= start && end <= len(b.Data) {
			return b.Data[start:end]
		}
	}
	return []byte{}
}

// GetInt reads a 2-byte field as a little endian word.
func (b *Block) GetInt(key string) int {
	bytes := b.GetSlice(key)
	if len(bytes) != 2 {
		return -1
	}
	return int(bytes[0]) | (int(bytes[1]) << 8)
}

// GetIntBE reads a 2-byte field as a big endian word.
func (b *Block) GetIntBE(key string) int {
	bytes := b.GetSlice(key)
	if len(bytes) != 2 {
		return -1
	}
	return (int(bytes[0]) << 8) | int(bytes[1])
}

//
func (b *Block) GetString(key string) string {
	return string(b.GetSlice(key))
}

//
func (b *Block) SetByte(key string, val byte) {
	if ix, ok := b.index[key]; ok {
		if 0 <= ix[0] && ix[0] < len(b.Data) && ix[1] == 1 {
			b.Data[ix[0]] = val
		}
	}
}

// SetSlice copies val into the named field, space padding or truncating
// to the field length when pad is true, and refusing a length mismatch
// otherwise.
func (b *Block) SetSlice(key string, val []byte, pad bool) {
	ix, ok := b.index[key]
	if !ok {
		return
	}
	start := ix[0]
	end := start + ix[1]
	if start < 0 || end > len(b.Data) {
		return
	}
	if len(val) != ix[1] {
		if !pad {
			return
		}
		padded := make([]byte, ix[1])
		for i := range padded {
			padded[i] = ' '
		}
		copy(padded, val)
		val = padded
	}
	copy(b.Data[start:end], val)
}

// SetInt writes a 2-byte field as a little endian word.
func (b *Block) SetInt(key string, val int) {
	if ix, ok := b.index[key]; ok && ix[1] == 2 {
		b.SetSlice(key, []byte{byte(val), byte(val >> 8)}, false)
	}
}

// SetIntBE writes a 2-byte field as a big endian word.
func (b *Block) SetIntBE(key string, val int) {
	if ix, ok := b.index[key]; ok && ix[1] == 2 {
		b.SetSlice(key, []byte{byte(val >> 8), byte(val)}, false)
	}
}

//
func (b *Block) Sum(key string) int {
	sum := 0
	for _, s := range b.GetSlice(key) {
		sum += int(s)
	}
	return sum
}
