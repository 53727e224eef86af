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

// Package image reads and writes the disk image containers that hold an
// MGT format disk: plain MGT dumps, SAD, and uniform EDSK. Containers
// may be gzip compressed on disk; compression is detected on open and
// opted into on save.
package image

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/mgtdrive/mgtdrive/pkg/mgt"
)

// Format identifies a disk image container encoding.
type Format int

//
const (
	MGT Format = iota
	SAD
	EDSK
)

//
func (f Format) String() string {
	switch f {
	case MGT:
		return "mgt"
	case SAD:
		return "sad"
	case EDSK:
		return "edsk"
	}
	return "unknown"
}

// ParseFormat maps a format name or common file extension to a Format.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "mgt", "img":
		return MGT, nil
	case "sad":
		return SAD, nil
	case "edsk", "dsk":
		return EDSK, nil
	}
	return MGT, fmt.Errorf("unsupported image format: %s", name)
}

// Image is a sector addressable disk image container. Track addresses
// carry the side in bit 7, sectors are numbered from 1, and all sectors
// are 512 bytes.
type Image interface {
	Format() Format
	SectorsPerTrack() int
	// Path is the file the image was opened from, empty for new images.
	Path() string
	// Compressed reports whether the source file was gzip compressed.
	Compressed() bool
	SectorOffset(track, sector int) (int, error)
	ReadSector(track, sector int) ([]byte, error)
	WriteSector(track, sector int, data []byte) error
	// Data is the complete container buffer, headers included.
	Data() []byte
	Save(path string, compressed bool) error
	// setOrigin records the backing file after open or save.
	setOrigin(path string, compressed bool)
}

//
func mgtSize(spt int) int {
	return mgt.Sides * mgt.Tracks * spt * mgt.SectorSize
}

//
func sadSize(spt int) int {
	return sadHeaderSize + mgtSize(spt)
}

//
func edskSize(spt int) int {
	return edskDiskHeaderLen +
		mgt.Sides*mgt.Tracks*(edskTrackHeaderLen+spt*mgt.SectorSize)
}

// Open loads a disk image file, transparently decompressing it and
// detecting the container format from its size.
func Open(path string) (Image, error) {

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	compressed := false

	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, &CorruptImageError{Path: path, Reason: "bad gzip stream", Err: err}
		}
		if data, err = ioutil.ReadAll(zr); err != nil {
			zr.Close()
			return nil, &CorruptImageError{Path: path, Reason: "bad gzip stream", Err: err}
		}
		if err = zr.Close(); err != nil {
			return nil, &CorruptImageError{Path: path, Reason: "bad gzip stream", Err: err}
		}
		compressed = true
	}

	img, err := FromBytes(data)
	if err != nil {
		if uf, ok := err.(*UnsupportedFormatError); ok {
			uf.Path = path
		}
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	img.setOrigin(abs, compressed)

	return img, nil
}

// FromBytes wraps an uncompressed container buffer, detecting the
// format from its size. The buffer is used as is, not copied.
func FromBytes(data []byte) (Image, error) {

	switch len(data) {

	case mgtSize(10), mgtSize(9):
		spt := len(data) / (mgt.Sides * mgt.Tracks * mgt.SectorSize)
		return &mgtImage{container{spt: spt, data: data}}, nil

	case sadSize(10), sadSize(9):
		spt := (len(data) - sadHeaderSize) /
			(mgt.Sides * mgt.Tracks * mgt.SectorSize)
		return &sadImage{container{spt: spt, data: data}}, nil

	case edskSize(10), edskSize(9):
		spt := (((len(data) - edskDiskHeaderLen) /
			(mgt.Sides * mgt.Tracks)) - edskTrackHeaderLen) / mgt.SectorSize
		img := &edskImage{container{spt: spt, data: data}}
		if err := img.validate(); err != nil {
			return nil, err
		}
		return img, nil
	}

	return nil, &UnsupportedFormatError{Size: len(data)}
}

// container carries the state shared by all image formats.
type container struct {
	path       string
	spt        int
	compressed bool
	data       []byte
}

//
func (c *container) SectorsPerTrack() int {
	return c.spt
}

//
func (c *container) Path() string {
	return c.path
}

//
func (c *container) Compressed() bool {
	return c.compressed
}

//
func (c *container) Data() []byte {
	return c.data
}

//
func (c *container) setOrigin(path string, compressed bool) {
	c.path = path
	c.compressed = compressed
}

//
func (c *container) readAt(offset int) []byte {
	out := make([]byte, mgt.SectorSize)
	copy(out, c.data[offset:offset+mgt.SectorSize])
	return out
}

//
func (c *container) writeAt(offset int, data []byte) error {
	if len(data) != mgt.SectorSize {
		return fmt.Errorf(
			"sector data must be %d bytes, got %d", mgt.SectorSize, len(data))
	}
	copy(c.data[offset:offset+mgt.SectorSize], data)
	return nil
}

// Save writes the container buffer to path, via a temp file in the
// target directory so a failed save never clobbers an existing image.
func (c *container) Save(path string, compressed bool) error {

	tmp := fmt.Sprintf("%s_", path)

	fd, err := os.OpenFile(tmp, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(fd)

	if compressed {
		zw := gzip.NewWriter(out)
		if _, err = zw.Write(c.data); err == nil {
			err = zw.Close()
		}
	} else {
		_, err = out.Write(c.data)
	}

	if err == nil {
		err = out.Flush()
	}
	if err == nil {
		err = fd.Sync()
	}

	if err != nil {
		fd.Close()
		os.Remove(tmp)
		return err
	}

	if err = fd.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err = os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	c.setOrigin(abs, compressed)

	return nil
}

// Convert copies the sector contents of img into a blank container of
// the requested format, keeping the geometry.
func Convert(img Image, f Format) (Image, error) {

	if img.Format() == f {
		return img, nil
	}

	var out Image
	var err error

	switch f {
	case MGT:
		out, err = NewMGT(img.SectorsPerTrack())
	case SAD:
		out, err = NewSAD(img.SectorsPerTrack())
	case EDSK:
		out, err = NewEDSK(img.SectorsPerTrack())
	default:
		return nil, fmt.Errorf("unsupported image format: %d", f)
	}
	if err != nil {
		return nil, err
	}

	spt := img.SectorsPerTrack()

	for side := 0; side < mgt.Sides; side++ {
		for cyl := 0; cyl < mgt.Tracks; cyl++ {
			track := side*mgt.SideFlag + cyl
			for sector := 1; sector <= spt; sector++ {
				data, err := img.ReadSector(track, sector)
				if err != nil {
					return nil, err
				}
				if err := out.WriteSector(track, sector, data); err != nil {
					return nil, err
				}
			}
		}
	}

	return out, nil
}
