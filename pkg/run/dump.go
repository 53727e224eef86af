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

package run

import (
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/mgtdrive/mgtdrive/pkg/mgt/dos"
	"github.com/mgtdrive/mgtdrive/pkg/mgt/image"
)

//
func NewDump() *Dump {

	d := &Dump{}
	d.Runner = *NewRunner(
		`dump [-d|--drive {drive}] [-i|--input {file}] [-t|--track {track}]
      [-s|--sector {sector}] [-a|--address {address}]`,
		"dump disk image from file or daemon",
		`
Use the dump command to output a hex dump of a disk image, from file or from
daemon. Without track and sector, the occupied directory entries are dumped;
with them, a single sector.`,
		"", runnerHelpEpilogue, d.Run)

	d.AddBaseSettings()
	d.AddSetting(&d.File, "input", "i", "", nil, "disk image input file", false)
	d.AddSetting(&d.Drive, "drive", "d", "", 1, "drive number (1-2)", false)
	d.AddSetting(&d.Track, "track", "t", "", -1, "track to dump (0-207)", false)
	d.AddSetting(&d.Sector, "sector", "s", "", -1, "sector to dump", false)

	return d
}

//
type Dump struct {
	//
	Runner
	//
	Drive  int
	File   string
	Track  int
	Sector int
}

//
func (d *Dump) Run() error {

	d.ParseSettings()

	var img image.Image
	var err error

	if d.File != "" {
		if img, err = image.Open(d.File); err != nil {
			return err
		}

	} else {
		if err = validateDrive(d.Drive); err != nil {
			return err
		}

		resp, err := d.apiCall(
			"GET", fmt.Sprintf("/drive/%d", d.Drive), false, nil)
		if err != nil {
			return err
		}
		defer resp.Close()

		data, err := ioutil.ReadAll(resp)
		if err != nil {
			return err
		}
		if img, err = image.FromBytes(data); err != nil {
			return err
		}
	}

	if d.Track >= 0 || d.Sector >= 0 {
		return dumpSector(img, d.Track, d.Sector)
	}
	return dumpDirectory(img)
}

//
func dumpSector(img image.Image, track, sector int) error {

	if sector < 0 {
		sector = 1
	}
	if track < 0 {
		track = 0
	}

	data, err := img.ReadSector(track, sector)
	if err != nil {
		return err
	}

	fmt.Printf("track %d, sector %d:\n", track, sector)
	dump := hex.Dumper(os.Stdout)
	dump.Write(data)
	return dump.Close()
}

//
func dumpDirectory(img image.Image) error {

	disk, err := dos.FromImage(img, false)
	if err != nil {
		return err
	}

	dump := hex.Dumper(os.Stdout)
	defer dump.Close()

	for ix, f := range disk.Slots() {
		if f == nil {
			continue
		}
		fmt.Printf("slot %d: %s\n", ix+1, f)
		dump.Write(f.Entry)
		fmt.Println()
	}

	return nil
}
