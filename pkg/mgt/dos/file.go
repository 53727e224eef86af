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
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgtdrive/mgtdrive/pkg/mgt"
	"github.com/mgtdrive/mgtdrive/pkg/mgt/raw"
)

//
const EntrySize = 256

// length of the header that precedes the payload in a CODE file's data
const codeHeaderLen = 9

// field index for one 256-byte directory entry; the ZX fields are the
// DISCiPLE/+D era layout, the SAM fields the SAM Coupé layout, both
// share the head of the entry
var entryIndex = map[string][2]int{
	"type":      {0, 1},
	"name":      {1, 10},
	"sectors":   {11, 2},
	"track":     {13, 1},
	"sector":    {14, 1},
	"sectormap": {15, sectorMapLen},
	"lenpage":   {210, 1}, // OPENTYPE length bits 16+, also MasterDOS label start
	"zxlength":  {212, 2},
	"zxstart":   {214, 2},
	"zxvar":     {216, 1},
	"zxexecute": {218, 2},
	"samvar":    {221, 1}, // var name length, or SCREEN mode in bits 0-1
	"samstart":  {236, 3},
	"samlength": {239, 3},
	"samexec":   {242, 3},
	"time":      {245, 5},
	"subdir":    {250, 1},
	"serial":    {252, 2},
	"owndir":    {254, 1},
	"xtratrks":  {255, 1},
}

// File is one decoded directory entry together with its raw data. Data
// holds the complete sector payload, including any file header and the
// padding of the final sector. The raw entry is kept around so that
// vendor bytes the library does not model survive a re-save.
type File struct {
	Type      FileType
	Hidden    bool
	Protected bool

	// Name is the display name, trimmed and ASCII normalized; NameRaw
	// is the 10-byte field exactly as stored.
	Name    string
	NameRaw []byte

	Entry []byte
	Data  []byte

	StartTrack  int
	StartSector int
	Sectors     int

	Start      int
	Length     int
	Execute    *int
	DataVar    string
	ScreenMode int
	Dir        byte
	Time       *time.Time

	// resolved sector chain, in chain order; assigned on load and on
	// save, empty for files that were never placed on an image
	addrs []Address
}

// DecodeEntry decodes a 256-byte directory entry. An all-zero entry
// decodes to a File of TypeNone with an empty name, which is how a
// never-used slot looks; an erased slot has TypeNone but keeps its
// name.
func DecodeEntry(data []byte) (*File, error) {

	if len(data) != EntrySize {
		return nil, fmt.Errorf(
			"directory entry must be %d bytes, got %d", EntrySize, len(data))
	}

	e := raw.NewBlock(entryIndex, data)
	f := &File{}

	f.Entry = append([]byte{}, data...)
	f.Type = FileType(e.GetByte("type") & 0x1f)
	f.Hidden = e.GetByte("type")&0x80 != 0
	f.Protected = e.GetByte("type")&0x40 != 0
	f.NameRaw = append([]byte{}, e.GetSlice("name")...)
	f.Name = cleanName(f.NameRaw)
	f.StartTrack = int(e.GetByte("track"))
	f.StartSector = int(e.GetByte("sector"))

	// the stored sector count is for display only; the bitmap popcount
	// is what the DOS variants actually maintain
	f.Sectors = SectorMapFromBytes(e.GetSlice("sectormap")).Count()

	if f.Type.IsSAM() {
		f.Time = UnpackTime(e.GetSlice("time"))
	}

	zxVar := string(rune('a' + (e.GetByte("zxvar") & 0x3f) - 1))
	samVar := cleanName(
		data[222 : 222+int(e.GetByte("samvar")&0x0f)])

	switch f.Type {

	case TypeZXBasic:
		f.Start = e.GetInt("zxstart")
		f.Length = e.GetInt("zxlength")
		if data[219] != 0xff {
			exec := e.GetInt("zxexecute")
			f.Execute = &exec
		}

	case TypeZXData:
		f.Start = e.GetInt("zxstart")
		f.Length = e.GetInt("zxlength")
		f.DataVar = zxVar

	case TypeZXDataStr:
		f.Start = e.GetInt("zxstart")
		f.Length = e.GetInt("zxlength")
		f.DataVar = zxVar + "$"

	case TypeZXCode:
		f.Start = e.GetInt("zxstart")
		f.Length = e.GetInt("zxlength")
		if data[219] != 0x00 {
			exec := e.GetInt("zxexecute")
			f.Execute = &exec
		}

	case TypeZXSnap48K:
		f.Length = 0xc000

	case TypeZXScreen:
		f.Start = e.GetInt("zxstart")
		f.Length = e.GetInt("zxlength")

	case TypeSpecial:
		f.Length = f.Sectors * mgt.SectorSize

	case TypeZXSnap128K:
		f.Length = 0x20001

	case TypeOpentype:
		f.Length = int(e.GetByte("lenpage"))*0x10000 + e.GetInt("zxlength")

	case TypeZXExecute:
		f.Length = mgt.SectorSize - 2

	case TypeBasic:
		f.Start = tripleToAddr(e.GetSlice("samstart"))
		f.Length = tripleToLen(e.GetSlice("samlength"))
		f.Execute = tripleToLine(e.GetSlice("samexec"))

	case TypeData:
		f.Start = tripleToAddr(e.GetSlice("samstart"))
		f.Length = tripleToLen(e.GetSlice("samlength"))
		f.DataVar = samVar

	case TypeDataStr:
		f.Start = tripleToAddr(e.GetSlice("samstart"))
		f.Length = tripleToLen(e.GetSlice("samlength"))
		f.DataVar = samVar + "$"

	case TypeCode:
		f.Start = tripleToAddr(e.GetSlice("samstart"))
		f.Length = tripleToLen(e.GetSlice("samlength"))
		f.Execute = tripleToExec(e.GetSlice("samexec"))

	case TypeScreen:
		f.Start = tripleToAddr(e.GetSlice("samstart"))
		f.Length = tripleToLen(e.GetSlice("samlength"))
		f.ScreenMode = 1 + int(e.GetByte("samvar")&0x03)

	case TypeDriverApp, TypeDriverBoot:
		f.Start = tripleToAddr(e.GetSlice("samstart"))
		f.Length = tripleToLen(e.GetSlice("samlength"))
	}

	if f.Type == TypeDir {
		f.Dir = e.GetByte("subdir")
	} else if f.Type.IsSAM() {
		if tag := e.GetByte("owndir"); tag != 0x00 && tag != 0xff {
			f.Dir = tag
		}
	}

	return f, nil
}

// Encode produces the directory entry for this file, placed at the
// given sector chain. Fields the library does not model are carried
// over from the raw entry the file was decoded from. The timestamp
// format cannot be told from the file itself, so the caller selects it.
func (f *File) Encode(
	addrs []Address, spt int, timefmt TimeFormat) ([]byte, error) {

	data := make([]byte, EntrySize)
	if len(f.Entry) == EntrySize {
		copy(data, f.Entry)
	}

	if f.Type == TypeNone {
		return data, nil
	}

	if len(addrs) == 0 {
		return nil, fmt.Errorf("file %q has no sectors assigned", f.Name)
	}

	e := raw.NewBlock(entryIndex, data)

	flags := byte(f.Type)
	if f.Hidden {
		flags |= 0x80
	}
	if f.Protected {
		flags |= 0x40
	}
	e.SetByte("type", flags)
	e.SetSlice("name", []byte(f.Name), true)
	e.SetIntBE("sectors", len(addrs))
	e.SetByte("track", byte(addrs[0].Track))
	e.SetByte("sector", byte(addrs[0].Sector))
	e.SetSlice("sectormap", mapFromAddresses(addrs, spt).Bytes(), false)

	switch f.Type {

	case TypeZXBasic:
		if f.Execute == nil {
			e.SetSlice("zxexecute", []byte{0xff, 0xff}, false)
		} else {
			e.SetInt("zxexecute", *f.Execute)
		}

	case TypeZXCode:
		e.SetInt("zxlength", f.Length)
		e.SetInt("zxstart", f.Start)
		exec := 0
		if f.Execute != nil {
			exec = *f.Execute
		}
		e.SetInt("zxexecute", exec)

	case TypeOpentype:
		e.SetByte("lenpage", byte(f.Length>>16))
		e.SetInt("zxlength", f.Length)

	case TypeBasic:
		line, err := lineToTriple(f.Execute)
		if err != nil {
			return nil, err
		}
		e.SetSlice("samexec", line, false)

	case TypeCode:
		e.SetSlice("samstart", addrToTriple(f.Start), false)
		e.SetSlice("samlength", lenToTriple(f.Length), false)
		e.SetSlice("samexec", execToTriple(f.Execute), false)

	case TypeScreen:
		e.SetSlice("samstart", addrToTriple(f.Start), false)
		e.SetSlice("samlength", lenToTriple(f.Length), false)
		if f.ScreenMode > 0 {
			e.SetByte("samvar", byte(f.ScreenMode-1)&0x03)
		}
	}

	if f.Type.IsSAM() {
		e.SetSlice("time", PackTime(f.Time, timefmt), false)
	}

	return data, nil
}

// FromCodeBytes synthesizes a SAM CODE file from raw bytes. The data
// header and the padding of the final sector are added here, so Data
// is in its on-disk form.
func FromCodeBytes(data []byte, name string, start int, execute *int) *File {

	f := &File{
		Type:    TypeCode,
		Name:    trimName(name),
		Start:   start,
		Length:  len(data),
		Execute: execute,
	}
	f.NameRaw = []byte(fmt.Sprintf("%-10s", f.Name))

	payload := f.Type.PayloadBytes()
	f.Data = append(f.codeDataHeader(), data...)
	if pad := len(f.Data) % payload; pad > 0 {
		f.Data = append(f.Data, make([]byte, payload-pad)...)
	}
	f.Sectors = len(f.Data) / payload

	return f
}

// FromCodePath synthesizes a SAM CODE file from the content of a file,
// named after its base name unless a name is given.
func FromCodePath(path, name string) (*File, error) {

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return FromCodeBytes(data, name, 0x8000, nil), nil
}

// FromScreenBytes synthesizes a SAM SCREEN$ file from a raw display
// dump, such as produced by the screen converter.
func FromScreenBytes(data []byte, name string, mode int) *File {
	f := FromCodeBytes(data, name, 0x8000, nil)
	f.Type = TypeScreen
	f.ScreenMode = mode
	f.Data[0] = byte(TypeScreen)
	return f
}

// LoadFile imports a file pair previously exported with Save: the raw
// directory entry followed by the raw data.
func LoadFile(path string) (*File, error) {

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < EntrySize {
		return nil, fmt.Errorf("%s is not an exported file", path)
	}

	f, err := DecodeEntry(data[:EntrySize])
	if err != nil {
		return nil, err
	}

	if f.Type != TypeNone {
		f.Data = data[EntrySize:]
		f.Sectors = (len(f.Data) + f.Type.PayloadBytes() - 1) /
			f.Type.PayloadBytes()
	}

	return f, nil
}

// Save exports the file as its raw directory entry followed by the raw
// data, for later re-import with LoadFile. The entry is encoded
// against the file's current chain, or a nominal one when the file was
// never placed on an image.
func (f *File) Save(path string) error {

	addrs := f.addrs
	if len(addrs) == 0 && f.Type != TypeNone {
		track, sector := baseDirTracks, 1
		for i := 0; i < f.Sectors; i++ {
			addrs = append(addrs, Address{Track: track, Sector: sector})
			var err error
			if track, sector, err = mgt.NextAddress(track, sector, 10); err != nil {
				return err
			}
		}
	}

	entry, err := f.Encode(addrs, 10, TimeBDOS)
	if err != nil {
		return err
	}

	out := append(entry, f.Data...)
	return ioutil.WriteFile(path, out, os.FileMode(0644))
}

// HasBootSignature reports whether the file data carries the "BOOT"
// marker the SAM ROM checks in the boot sector. Whether the file
// actually boots also depends on its directory position, see
// Disk.IsBootable.
func (f *File) HasBootSignature() bool {

	if len(f.Data) < 0x104 {
		return false
	}
	for i, c := range []byte("BOOT") {
		if f.Data[0x100+i]&0x5f != c {
			return false
		}
	}
	return true
}

// codeDataHeader builds the 9-byte header preceding the payload of a
// CODE file.
func (f *File) codeDataHeader() []byte {

	length := lenToTriple(f.Length)
	start := addrToTriple(f.Start)

	header := make([]byte, codeHeaderLen)
	header[0] = byte(f.Type)
	header[1] = length[1]
	header[2] = length[2]
	header[3] = start[1]
	header[4] = start[2]
	header[5] = 0xff
	header[6] = 0xff
	header[7] = length[0]
	header[8] = start[0]
	return header
}

// String formats the file the way a directory listing line shows it.
func (f *File) String() string {

	line := fmt.Sprintf("%-10s %4d  %s", f.Name, f.Sectors, f.Type)

	switch f.Type {

	case TypeBasic, TypeZXBasic:
		if f.Execute != nil {
			line += fmt.Sprintf("%6d", *f.Execute)
		}

	case TypeCode, TypeZXCode:
		line += fmt.Sprintf(" %6d,%d", f.Start, f.Length)
		if f.Execute != nil {
			line += fmt.Sprintf(",%d", *f.Execute)
		}

	case TypeScreen:
		line += fmt.Sprintf(" [mode %d]", f.ScreenMode)

	case TypeData, TypeDataStr, TypeZXData, TypeZXDataStr:
		line += fmt.Sprintf(" [%s]", f.DataVar)
	}

	if f.Time != nil {
		line = fmt.Sprintf("%-43s%s", line, f.Time.Format("02/01/2006 15:04"))
	}

	return line
}

// Payload is the file content without the data header and the padding
// of the final sector, for types that carry a data header; for all
// other types it is Data unchanged.
func (f *File) Payload() []byte {
	switch f.Type {
	case TypeCode, TypeScreen:
		if len(f.Data) >= codeHeaderLen+f.Length {
			return f.Data[codeHeaderLen : codeHeaderLen+f.Length]
		}
	}
	return f.Data
}

// SectorAddresses is the resolved chain of the file, in chain order.
func (f *File) SectorAddresses() []Address {
	return append([]Address{}, f.addrs...)
}

// cleanName trims trailing padding and maps non-ASCII bytes, keeping
// hidden/protected state out of the printable name.
func cleanName(data []byte) string {
	end := len(data)
	for end > 0 && (data[end-1] == ' ' || data[end-1] == 0) {
		end--
	}
	out := make([]byte, end)
	for i := 0; i < end; i++ {
		if c := data[i]; c < 0x20 || c > 0x7e {
			out[i] = '?'
		} else {
			out[i] = c
		}
	}
	return string(out)
}

//
func trimName(name string) string {
	if len(name) > 10 {
		return name[:10]
	}
	return name
}
