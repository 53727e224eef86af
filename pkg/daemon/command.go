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
	"fmt"

	log "github.com/sirupsen/logrus"
)

//
const CmdHello = 'h'  // adapter restarted, resync
const CmdStatus = 's' // get drive state
const CmdGet = 'g'    // read sector from drive
const CmdPut = 'p'    // write sector to drive
const CmdPing = 'P'   // liveness check
const CmdDebug = 'd'  // debug message from adapter

// status reply bits
const (
	StatusLoaded byte = 1 << iota
	StatusWriteProtected
	StatusModified
)

//
func newCommand(data []byte) *command {
	return &command{data: data}
}

//
type command struct {
	data []byte
}

//
func (c *command) dispatch(d *Daemon) error {

	switch c.cmd() {

	case CmdHello:
		d.synced = false
		return nil

	case CmdPing:
		log.Debug("ping from adapter")
		return d.conduit.send([]byte{CmdPing, 0, 0, 0})

	case CmdStatus:
		return c.status(d)

	case CmdGet:
		return c.get(d)

	case CmdPut:
		return c.put(d)

	case CmdDebug:
		return c.debug(d)
	}

	return fmt.Errorf("unknown command: %v", c.data)
}

//
func (c *command) cmd() byte {
	return c.data[0]
}

//
func (c *command) arg(ix int) byte {
	if 0 <= ix && ix < len(c.data)-1 {
		return c.data[ix+1]
	}
	return 0
}

// drive returns the 1-based drive number carried in this command.
func (c *command) drive() (int, error) {
	drive := c.arg(0)
	if drive < 1 || int(drive) > DriveCount {
		return -1, fmt.Errorf("illegal drive number: %d", drive)
	}
	return int(drive), nil
}

//
func (c *command) address() (int, int) {
	return int(c.arg(1)), int(c.arg(2))
}

//
func (c *command) get(d *Daemon) error {

	drive, err := c.drive()
	if err != nil {
		return err
	}

	track, sector := c.address()

	if drv := d.getDrive(drive); drv != nil {
		data, err := drv.ReadSector(track, sector)
		if err != nil {
			log.WithFields(log.Fields{
				"drive":  drive,
				"track":  track,
				"sector": sector,
			}).Warnf("GET failed: %v", err)
			return d.conduit.send([]byte{0, 0})
		}

		log.WithFields(log.Fields{
			"drive":  drive,
			"track":  track,
			"sector": sector,
		}).Debug("GET")

		size := len(data)
		if err := d.conduit.send(
			[]byte{byte(size), byte(size >> 8)}); err != nil {
			return err
		}
		return d.conduit.sendSector(data)
	}

	log.WithFields(log.Fields{"drive": drive}).Debug("GET, drive empty")
	return d.conduit.send([]byte{0, 0})
}

//
func (c *command) put(d *Daemon) error {

	drive, err := c.drive()
	if err != nil {
		return err
	}

	track, sector := c.address()

	// the sector data follows the frame whether we can place it or not
	data, err := d.conduit.receiveSector()
	if err != nil {
		return err
	}

	drv := d.getDrive(drive)
	if drv == nil {
		log.WithFields(log.Fields{"drive": drive}).Warn("PUT to empty drive")
		return nil
	}
	if drv.IsWriteProtected() {
		log.WithFields(
			log.Fields{"drive": drive}).Warn("PUT to write protected drive")
		return nil
	}

	log.WithFields(log.Fields{
		"drive":  drive,
		"track":  track,
		"sector": sector,
	}).Debug("PUT")

	return drv.WriteSector(track, sector, data)
}

//
func (c *command) status(d *Daemon) error {

	drive, err := c.drive()
	if err != nil {
		return err
	}

	var flags byte

	if drv := d.getDrive(drive); drv != nil {
		flags = StatusLoaded
		if drv.IsWriteProtected() {
			flags |= StatusWriteProtected
		}
		if drv.IsModified() {
			flags |= StatusModified
		}
	}

	log.WithFields(log.Fields{
		"drive": drive,
		"flags": flags,
	}).Debug("STATUS")

	return d.conduit.send([]byte{flags})
}

// debug logs a short message from the adapter: two payload bytes,
// typically an error location and code.
func (c *command) debug(d *Daemon) error {
	log.WithFields(log.Fields{
		"a": c.arg(0),
		"b": c.arg(1),
		"c": c.arg(2),
	}).Debug("adapter debug")
	return nil
}
