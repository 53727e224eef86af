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

package daemon

import (
	"context"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/mgtdrive/mgtdrive/pkg/mgt/image"
)

// Drive is one emulated floppy drive slot: a mounted disk image plus
// its write state. A drive is locked while the daemon serves sector
// requests from it or the API operates on it.
type Drive struct {
	//
	img  image.Image
	name string
	//
	writeProtected bool
	modified       bool
	//
	lock chan bool
}

//
func NewDrive(img image.Image, name string) *Drive {

	if name == "" && img.Path() != "" {
		name = filepath.Base(img.Path())
	}

	return &Drive{
		img:  img,
		name: name,
		lock: make(chan bool, 1),
	}
}

//
func (d *Drive) Lock(ctx context.Context) bool {
	select {
	case d.lock <- true:
		log.Debug("drive locked")
		return true
	case <-ctx.Done():
		log.Debug("drive lock timed out")
		return false
	}
}

//
func (d *Drive) Unlock() {
	select {
	case <-d.lock:
		log.Debug("drive unlocked")
	default:
		log.Debug("drive was already unlocked")
	}
}

//
func (d *Drive) Image() image.Image {
	return d.img
}

// SetImage replaces the mounted image, keeping the drive's name and
// write protection. Used when the directory is rewritten through the
// API. The caller holds the drive lock.
func (d *Drive) SetImage(img image.Image) {
	d.img = img
	d.modified = true
}

//
func (d *Drive) Name() string {
	return d.name
}

//
func (d *Drive) IsWriteProtected() bool {
	return d.writeProtected
}

//
func (d *Drive) SetWriteProtected(p bool) {
	d.writeProtected = p
}

//
func (d *Drive) IsModified() bool {
	return d.modified
}

//
func (d *Drive) SetModified(m bool) {
	d.modified = m
}

// ReadSector serves one sector to the adapter.
func (d *Drive) ReadSector(track, sector int) ([]byte, error) {
	return d.img.ReadSector(track, sector)
}

// WriteSector accepts one sector from the adapter and marks the drive
// modified.
func (d *Drive) WriteSector(track, sector int, data []byte) error {
	if err := d.img.WriteSector(track, sector, data); err != nil {
		return err
	}
	d.modified = true
	return nil
}

// Flush writes a modified image back to the file it was mounted from.
// A drive mounted from a stream has no backing file and keeps its
// modified state until saved through the API.
func (d *Drive) Flush() error {

	if !d.modified || d.img.Path() == "" {
		return nil
	}

	if err := d.img.Save(d.img.Path(), d.img.Compressed()); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"drive": d.name,
		"path":  d.img.Path(),
	}).Info("drive flushed")

	d.modified = false
	return nil
}
