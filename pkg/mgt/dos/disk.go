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
	"bytes"
	"fmt"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/mgtdrive/mgtdrive/pkg/mgt"
	"github.com/mgtdrive/mgtdrive/pkg/mgt/image"
)

// Variant is the DOS dialect that formatted a disk, told apart by the
// markers it leaves in the first directory entry.
type Variant int

//
const (
	SAMDOS Variant = iota
	MasterDOS
	BDOS
)

//
func (v Variant) String() string {
	switch v {
	case MasterDOS:
		return "MASTERDOS"
	case BDOS:
		return "BDOS"
	}
	return "SAMDOS"
}

// Disk is the decoded view of one MGT format disk: the directory as an
// ordered arena of file slots, plus the disk level metadata. Slot
// positions are significant and survive deletes, matching how the DOS
// variants leave erased entries in place.
type Disk struct {
	Variant   Variant
	DirTracks int
	Label     string
	// Serial is the MasterDOS disk serial; only meaningful on
	// MasterDOS disks.
	Serial int

	// files is the slot arena; nil marks an unused slot
	files []*File

	spt        int
	compressed bool
	path       string
}

// NewDisk creates an empty standard disk: SAMDOS, 4 directory tracks,
// 10 sectors per track.
func NewDisk() *Disk {
	return &Disk{DirTracks: baseDirTracks, spt: 10}
}

// Open loads a disk from an image file, strictly: any corrupt sector
// chain aborts the load.
func Open(path string) (*Disk, error) {

	img, err := image.Open(path)
	if err != nil {
		return nil, err
	}

	return FromImage(img, true)
}

// FromImage decodes the directory and the file data of img. When
// strict is set, a corrupt sector chain fails the whole load;
// otherwise the offending file is dropped with a warning. Data is
// never silently fabricated either way.
func FromImage(img image.Image, strict bool) (*Disk, error) {

	d := NewDisk()
	d.spt = img.SectorsPerTrack()
	d.compressed = img.Compressed()
	d.path = img.Path()

	entry0, err := img.ReadSector(0, 1)
	if err != nil {
		return nil, err
	}
	d.detectVariant(entry0)

	chain := &Chain{Img: img, DirTracks: d.DirTracks}

	for ix := 0; ix < d.Capacity(); ix++ {

		entry, err := readDirEntry(img, ix)
		if err != nil {
			return nil, err
		}

		f, err := DecodeEntry(entry)
		if err != nil {
			return nil, err
		}

		if f.Type == TypeNone {
			if f.Name == "" {
				break // never used, directory ends here
			}
			d.files = append(d.files, nil) // erased slot
			continue
		}

		data, addrs, err := chain.Resolve(f)
		if err != nil {
			if strict {
				return nil, err
			}
			log.Warnf("skipping file in slot %d: %v", ix, err)
			d.files = append(d.files, nil)
			continue
		}

		f.Data = data
		f.addrs = addrs
		d.verifyEmbeddedMap(f)
		d.files = append(d.files, f)
	}

	return d, nil
}

// detectVariant sniffs the DOS dialect from the first directory entry
// and decodes label, serial and directory size where present.
func (d *Disk) detectVariant(entry0 []byte) {

	d.Variant = SAMDOS
	d.DirTracks = baseDirTracks

	var labelRaw []byte

	if bytes.Equal(entry0[232:236], []byte("BDOS")) {
		d.Variant = BDOS
		if entry0[210] != 0 {
			labelRaw = append(entry0[210:220:220], entry0[250:256]...)
		}

	} else if entry0[210] != 0 && entry0[210] != 0xff {
		d.Variant = MasterDOS
		d.DirTracks = int(entry0[255]) + baseDirTracks
		if d.DirTracks > 39 {
			d.DirTracks = 39
		}
		if entry0[210] != '*' {
			labelRaw = entry0[210:220]
		}
		d.Serial = int(entry0[252]) | int(entry0[253])<<8
	}

	if labelRaw != nil {
		masked := make([]byte, len(labelRaw))
		for i, c := range labelRaw {
			masked[i] = c & 0x7f
		}
		d.Label = strings.TrimRight(cleanName(masked), " ")
	}
}

// verifyEmbeddedMap checks the sector map stored in the directory
// entry against the resolved chain. The embedded copy is redundant on
// all supported variants, so a mismatch is worth a warning but nothing
// more.
func (d *Disk) verifyEmbeddedMap(f *File) {

	if len(f.Entry) != EntrySize {
		return
	}
	embedded := SectorMapFromBytes(f.Entry[15 : 15+sectorMapLen])
	if !embedded.Equal(mapFromAddresses(f.addrs, d.spt)) {
		log.WithFields(log.Fields{
			"file": f.Name,
		}).Warn("embedded sector map disagrees with resolved chain")
	}
}

// SectorsPerTrack is the geometry the disk was loaded with, and the
// default for saving it.
func (d *Disk) SectorsPerTrack() int {
	return d.spt
}

//
func (d *Disk) Compressed() bool {
	return d.compressed
}

//
func (d *Disk) Path() string {
	return d.path
}

// Capacity is the number of directory slots, two per directory sector.
func (d *Disk) Capacity() int {
	return d.DirTracks * d.spt * 2
}

// Files lists the live files in directory order.
func (d *Disk) Files() []*File {
	var out []*File
	for _, f := range d.files {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

// FileCount is the number of live files.
func (d *Disk) FileCount() int {
	return len(d.Files())
}

// Slots exposes the raw slot arena, nil entries included.
func (d *Disk) Slots() []*File {
	return d.files
}

// Find returns the first live file matching name exactly, in slot
// order. Duplicate names are legal on MGT disks; only the first match
// is returned.
func (d *Disk) Find(name string) *File {
	for _, f := range d.files {
		if f != nil && f.Name == name {
			return f
		}
	}
	return nil
}

// Add places f into the directory, at slot index at when non-negative,
// otherwise into the first unused slot, or appended. The in-memory
// state is untouched when the directory is full.
func (d *Disk) Add(f *File, at int) error {

	if at >= 0 {
		if at >= d.Capacity() {
			return &DirectoryFullError{Capacity: d.Capacity()}
		}
		for len(d.files) <= at {
			d.files = append(d.files, nil)
		}
		if d.files[at] == nil {
			d.files[at] = f
			return nil
		}
		if len(d.files) >= d.Capacity() {
			return &DirectoryFullError{Capacity: d.Capacity()}
		}
		d.files = append(d.files[:at],
			append([]*File{f}, d.files[at:]...)...)
		return nil
	}

	for ix, slot := range d.files {
		if slot == nil {
			d.files[ix] = f
			return nil
		}
	}

	if len(d.files) >= d.Capacity() {
		return &DirectoryFullError{Capacity: d.Capacity()}
	}

	d.files = append(d.files, f)
	return nil
}

// AddCodeFile synthesizes a CODE file from raw bytes and adds it,
// deleting any files of the same name first, the way SAMDOS SAVE
// replaces. Whether the data area can actually hold the file surfaces
// at save time.
func (d *Disk) AddCodeFile(data []byte, name string, at int) (*File, error) {

	f := FromCodeBytes(data, name, 0x8000, nil)

	deleted := d.Delete(f.Name)
	err := d.Add(f, at)
	if err != nil && deleted > 0 {
		// the delete was observable; report, don't roll back silently
		return nil, fmt.Errorf(
			"replaced %d file(s) but could not add %q: %v", deleted, f.Name, err)
	}
	if err != nil {
		return nil, err
	}

	return f, nil
}

// Delete erases all files whose name matches the shell style pattern,
// case-insensitively, in slot order. Erased slots stay in place, so
// surviving files keep their directory positions. Returns the number
// of files erased.
func (d *Disk) Delete(pattern string) int {

	count := 0
	pattern = strings.ToLower(pattern)

	for ix, f := range d.files {
		if f == nil {
			continue
		}
		if ok, err := path.Match(pattern, strings.ToLower(f.Name)); err == nil && ok {
			d.files[ix] = nil
			count++
		}
	}

	return count
}

// BAM is the allocation map derived from the live files' resolved
// chains. It is recomputed on every call and never read back from the
// directory.
func (d *Disk) BAM() *SectorMap {
	return DeriveBAM(d.Files(), d.spt)
}

// IsBootable reports whether the disk would boot: the very first
// directory slot holds a file of a type the ROM auto-executes, and its
// data carries the boot signature.
func (d *Disk) IsBootable() bool {

	if len(d.files) == 0 || d.files[0] == nil {
		return false
	}
	f := d.files[0]
	return f.Type.bootable() && f.HasBootSignature()
}

// ToImage lays the disk out as a plain MGT image at the given
// geometry. Files keep their loaded chains when the geometry is
// unchanged and the chain still matches their data; everything else is
// placed by a first-fit scan. Erased slots are not written out, the
// surviving files occupy the leading directory slots. Nothing in the
// Disk is modified until the whole layout has succeeded.
func (d *Disk) ToImage(spt int) (image.Image, error) {

	if !mgt.ValidSectorsPerTrack(spt) {
		return nil, fmt.Errorf("invalid sectors per track: %d", spt)
	}

	if n := d.FileCount(); n > d.DirTracks*spt*2 {
		return nil, &DirectoryFullError{Capacity: d.DirTracks * spt * 2}
	}

	img, err := image.NewMGT(spt)
	if err != nil {
		return nil, err
	}

	bam := NewSectorMap()
	assigned := make(map[*File][]Address)
	var pending []*File

	for _, f := range d.Files() {
		want := (len(f.Data) + f.Type.PayloadBytes() - 1) / f.Type.PayloadBytes()
		if spt == d.spt && len(f.addrs) == want && want > 0 {
			assigned[f] = f.addrs
			for _, a := range f.addrs {
				bam.Mark(a, spt)
			}
		} else {
			pending = append(pending, f)
		}
	}

	for _, f := range pending {
		want := (len(f.Data) + f.Type.PayloadBytes() - 1) / f.Type.PayloadBytes()
		addrs, err := Allocate(bam, d.DirTracks, spt, want, f.Type.IsContiguous())
		if err != nil {
			return nil, err
		}
		assigned[f] = addrs
	}

	chain := &Chain{Img: img, DirTracks: d.DirTracks}
	timefmt := TimeBDOS
	if d.Variant == MasterDOS {
		timefmt = TimeMasterDOS
	}

	// erased slots are compacted away on disk, so a later scan never
	// mistakes a hole for the end of the directory
	slot := 0
	for _, f := range d.files {
		if f == nil {
			continue
		}

		addrs := assigned[f]
		if err := chain.Write(addrs, f.Data, f.Type.IsContiguous()); err != nil {
			return nil, err
		}

		entry, err := f.Encode(addrs, spt, timefmt)
		if err != nil {
			return nil, err
		}
		if err := writeDirEntry(img, slot, entry); err != nil {
			return nil, err
		}
		slot++
	}

	if err := d.writeVariantMarkers(img); err != nil {
		return nil, err
	}

	// layout complete, commit the new chains
	for f, addrs := range assigned {
		f.addrs = addrs
		f.Sectors = len(addrs)
		if len(addrs) > 0 {
			f.StartTrack = addrs[0].Track
			f.StartSector = addrs[0].Sector
		}
	}
	d.spt = spt

	return img, nil
}

// writeVariantMarkers patches the first directory entry with the
// label, serial and directory size markers of the disk's DOS variant,
// so the variant survives a round trip.
func (d *Disk) writeVariantMarkers(img image.Image) error {

	if d.Variant == SAMDOS {
		return nil
	}

	sec, err := img.ReadSector(0, 1)
	if err != nil {
		return err
	}

	label := []byte(fmt.Sprintf("%-16s", d.Label))

	switch d.Variant {

	case MasterDOS:
		if d.Label != "" {
			copy(sec[210:220], label[:10])
		} else {
			sec[210] = '*'
		}
		sec[252] = byte(d.Serial)
		sec[253] = byte(d.Serial >> 8)
		sec[255] = byte(d.DirTracks - baseDirTracks)

	case BDOS:
		copy(sec[232:236], "BDOS")
		if d.Label != "" {
			copy(sec[210:220], label[:10])
			copy(sec[250:256], label[10:16])
		}
	}

	return img.WriteSector(0, 1, sec)
}

// Save lays the disk out at the given geometry and writes it to path
// as a plain MGT image, gzip compressed when asked.
func (d *Disk) Save(path string, compressed bool, spt int) error {

	img, err := d.ToImage(spt)
	if err != nil {
		return err
	}

	if err := img.Save(path, compressed); err != nil {
		return err
	}

	d.path = img.Path()
	d.compressed = compressed
	return nil
}

// Dir formats the classic directory listing: label line, one numbered
// line per file, then the space summary.
func (d *Disk) Dir() string {

	var b strings.Builder

	label := d.Label
	if label == "" {
		label = d.Variant.String()
	}
	fmt.Fprintf(&b, "* %s:\n", label)

	used := 0
	for ix, f := range d.Files() {
		fmt.Fprintf(&b, "%3d  %s\n", ix+1, f)
		used += f.Sectors
	}

	total := mgt.Sides * mgt.Tracks * d.spt
	free := total - d.DirTracks*d.spt - used
	slots := d.Capacity() - d.FileCount()

	fmt.Fprintf(&b, "\n%2d files, %2d free slots, %3dK used, %3dK free\n",
		d.FileCount(), slots, used/2, free/2)

	return b.String()
}

// dirPosition locates a zero-based directory slot: two 256-byte
// entries per directory sector.
func dirPosition(index, spt int) (track, sector, offset int) {
	return index / (spt * 2), 1 + (index%(spt*2))/2, (index % 2) * EntrySize
}

//
func readDirEntry(img image.Image, index int) ([]byte, error) {

	if index < 0 {
		return nil, fmt.Errorf("invalid directory index: %d", index)
	}

	track, sector, offset := dirPosition(index, img.SectorsPerTrack())
	sec, err := img.ReadSector(track, sector)
	if err != nil {
		return nil, err
	}
	return sec[offset : offset+EntrySize], nil
}

//
func writeDirEntry(img image.Image, index int, entry []byte) error {

	if index < 0 {
		return fmt.Errorf("invalid directory index: %d", index)
	}
	if len(entry) != EntrySize {
		return fmt.Errorf(
			"directory entry must be %d bytes, got %d", EntrySize, len(entry))
	}

	track, sector, offset := dirPosition(index, img.SectorsPerTrack())
	sec, err := img.ReadSector(track, sector)
	if err != nil {
		return err
	}
	copy(sec[offset:offset+EntrySize], entry)
	return img.WriteSector(track, sector, sec)
}
