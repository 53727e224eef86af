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
	"bytes"
	"fmt"
	"io"

	"github.com/jacobsa/go-serial/serial"
	log "github.com/sirupsen/logrus"

	"github.com/mgtdrive/mgtdrive/pkg/mgt"
)

// The adapter protocol: both sides speak 4-byte frames. From the
// adapter these are [cmd, drive, track, sector]; a put frame is
// followed by the 512 bytes of sector data. The hello frames establish
// sync after either side restarts.
const commandLength = 4

//
var helloAdapter = []byte("hlom")
var helloDaemon = []byte("hlod")

//
type conduit struct {
	port io.ReadWriteCloser
}

//
func newConduit(port string) (*conduit, error) {
	ret := &conduit{}
	var err error
	ret.port, err = openPort(port)
	return ret, err
}

//
func openPort(p string) (io.ReadWriteCloser, error) {
	return serial.Open(serial.OpenOptions{
		PortName:        p,
		BaudRate:        1000000,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
}

//
func (c *conduit) close() error {
	return c.port.Close()
}

// syncOnHello scans the byte stream for the adapter's hello frame,
// then answers with the daemon's. Everything before the hello is
// noise from a previous session and dropped.
func (c *conduit) syncOnHello() error {

	log.Info("syncing with adapter")
	hello := make([]byte, commandLength)

	for !bytes.Equal(hello, helloAdapter) {
		shiftLeft(hello)
		if err := c.receive(hello[len(hello)-1:]); err != nil {
			return err
		}
	}

	if err := c.send(helloDaemon); err != nil {
		return fmt.Errorf("error sending daemon hello: %v", err)
	}

	log.Info("synced with adapter")
	return nil
}

//
func (c *conduit) receive(data []byte) error {
	_, err := io.ReadFull(c.port, data)
	return err
}

//
func (c *conduit) send(data []byte) error {
	_, err := c.port.Write(data)
	return err
}

//
func (c *conduit) receiveCommand() (*command, error) {
	data := make([]byte, commandLength)
	if err := c.receive(data); err != nil {
		return nil, err
	}
	return newCommand(data), nil
}

//
func (c *conduit) sendSector(data []byte) error {
	if len(data) != mgt.SectorSize {
		return fmt.Errorf("sector data must be %d bytes", mgt.SectorSize)
	}
	return c.send(data)
}

//
func (c *conduit) receiveSector() ([]byte, error) {
	data := make([]byte, mgt.SectorSize)
	if err := c.receive(data); err != nil {
		return nil, fmt.Errorf("error reading sector data: %v", err)
	}
	return data, nil
}

//
func shiftLeft(data []byte) {
	for ix := 0; ix < len(data)-1; ix++ {
		data[ix] = data[ix+1]
	}
}
