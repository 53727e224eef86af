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

// Package daemon serves mounted disk images to the floppy interface
// adapter over a serial link.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// DriveCount is the number of emulated drive slots, matching the two
// drives the DOS variants address.
const DriveCount = 2

//
var ErrDaemonStopped = errors.New("daemon stopped")

// Daemon manages the serial conversation with the adapter and owns the
// drive slots.
type Daemon struct {
	//
	drives  []atomic.Value
	conduit *conduit
	port    string
	synced  bool
	stopped int32
}

//
func NewDaemon(port string) *Daemon {
	return &Daemon{
		drives: make([]atomic.Value, DriveCount),
		port:   port,
	}
}

//
func (d *Daemon) Serve() error {
	return d.listen()
}

// Stop ends the serve loop. Safe to call from another goroutine; the
// loop notices on its next conduit operation.
func (d *Daemon) Stop() {
	atomic.StoreInt32(&d.stopped, 1)
	if d.conduit != nil {
		d.conduit.close()
	}
}

//
func (d *Daemon) isStopped() bool {
	return atomic.LoadInt32(&d.stopped) != 0
}

//
func (d *Daemon) listen() error {

	if err := d.ResetConduit(); err != nil {
		return err
	}

	var cmd *command
	var err error

	for ; ; cmd = nil {

		if d.isStopped() {
			return ErrDaemonStopped
		}

		if d.synced {
			if cmd, err = d.conduit.receiveCommand(); err != nil {
				log.Errorf("error receiving command: %v", err)
				d.synced = false
			}

		} else {
			if err = d.conduit.syncOnHello(); err != nil {
				log.Errorf("error syncing with adapter: %v", err)
			} else {
				d.synced = true
				for ix := 1; ix <= DriveCount; ix++ {
					if drv := d.getDrive(ix); drv != nil {
						drv.Unlock()
					}
				}
			}
		}

		if err != nil {
			if d.isStopped() {
				return ErrDaemonStopped
			}
			if err = d.ResetConduit(); err != nil {
				return err
			}

		} else if cmd != nil {
			if err = cmd.dispatch(d); err != nil {
				log.Errorf("error dispatching command: %v", err)
				d.synced = false
			}
		}
	}
}

//
func (d *Daemon) ResetConduit() error {

	d.synced = false

	if d.conduit != nil {
		log.Infof("closing port %s", d.port)
		if err := d.conduit.close(); err != nil {
			log.Errorf("error closing port: %v", err)
		}
		d.conduit = nil
	}

	maxBackoff := 15 * time.Second

	for backoff := time.Second; ; {
		if d.isStopped() {
			return ErrDaemonStopped
		}
		log.Infof("opening port %s", d.port)
		if con, err := newConduit(d.port); err != nil {
			log.Errorf("cannot open serial port: %v", err)
			if backoff < maxBackoff {
				backoff *= 2
			}
			time.Sleep(backoff)
		} else {
			d.conduit = con
			return nil
		}
	}
}

// SetDrive mounts drv at slot ix (1-based), flushing a modified
// occupant to its backing file first. When force is set, a modified
// occupant without a backing file is discarded rather than refused.
func (d *Daemon) SetDrive(ix int, drv *Drive, force bool) error {

	present, ok := d.GetDrive(ix)
	if !ok {
		return fmt.Errorf("drive %d busy", ix)
	}

	if present != nil {
		defer present.Unlock()
		if present.IsModified() {
			if err := present.Flush(); err != nil {
				return err
			}
			if present.IsModified() && !force {
				return fmt.Errorf("image in drive %d is modified", ix)
			}
		}
	}

	d.setDrive(ix, drv)
	return nil
}

// UnloadDrive empties slot ix, flushing a modified image unless force
// discards it.
func (d *Daemon) UnloadDrive(ix int, force bool) error {
	return d.SetDrive(ix, nil, force)
}

//
func (d *Daemon) setDrive(ix int, drv *Drive) {
	if 0 < ix && ix <= len(d.drives) {
		d.drives[ix-1].Store(&slot{drive: drv})
	}
}

// GetDrive locks and returns the drive at slot ix (1-based). The
// second return is false when the slot is locked elsewhere; a nil
// drive with true means the slot is empty. The caller unlocks.
func (d *Daemon) GetDrive(ix int) (*Drive, bool) {

	drv := d.getDrive(ix)

	if drv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if drv.Lock(ctx) {
			return drv, true
		}
		return nil, false
	}

	return nil, true
}

//
func (d *Daemon) getDrive(ix int) *Drive {
	if 0 < ix && ix <= len(d.drives) {
		if s := d.drives[ix-1].Load(); s != nil {
			return s.(*slot).drive
		}
	}
	return nil
}

// slot wraps the drive pointer so an empty slot can be stored in an
// atomic.Value.
type slot struct {
	drive *Drive
}
