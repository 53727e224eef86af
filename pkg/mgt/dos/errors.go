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

// ChainFault classifies how a sector chain contradicts its directory
// entry.
type ChainFault int

//
const (
	OutOfBounds ChainFault = iota
	Cycle
	LengthMismatch
)

//
func (f ChainFault) String() string {
	switch f {
	case OutOfBounds:
		return "out of bounds"
	case Cycle:
		return "cycle"
	case LengthMismatch:
		return "length mismatch"
	}
	return "unknown"
}

// ChainError reports a corrupt sector chain. It names the file and the
// sector address at which the walk failed, so a caller can decide
// whether to skip the file or abandon the image.
type ChainError struct {
	Fault    ChainFault
	File     string
	Track    int
	Sector   int
	Declared int
	Walked   int
}

//
func (e *ChainError) Error() string {
	switch e.Fault {
	case LengthMismatch:
		return fmt.Sprintf(
			"sector chain of %q walks %d sectors, directory declares %d",
			e.File, e.Walked, e.Declared)
	default:
		return fmt.Sprintf(
			"sector chain of %q: %s at track %d, sector %d",
			e.File, e.Fault, e.Track, e.Sector)
	}
}

// DirectoryFullError reports that every directory slot is taken.
type DirectoryFullError struct {
	Capacity int
}

//
func (e *DirectoryFullError) Error() string {
	return fmt.Sprintf("directory is full (%d slots)", e.Capacity)
}

// OutOfSpaceError reports that the data area cannot hold the requested
// number of sectors.
type OutOfSpaceError struct {
	Needed int
	Free   int
}

//
func (e *OutOfSpaceError) Error() string {
	return fmt.Sprintf(
		"data area is out of space: %d sectors needed, %d free",
		e.Needed, e.Free)
}
