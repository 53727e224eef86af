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

package image

import (
	"fmt"
)

// UnsupportedFormatError reports a container that is not one of the
// supported encodings at the standard geometry. Nothing is partially
// loaded when this is returned.
type UnsupportedFormatError struct {
	Path   string
	Size   int
	Reason string
}

//
func (e *UnsupportedFormatError) Error() string {
	name := e.Path
	if name == "" {
		name = "image"
	}
	if e.Reason != "" {
		return fmt.Sprintf("%s is not a supported disk image: %s", name, e.Reason)
	}
	return fmt.Sprintf(
		"%s is not a supported disk image (%d bytes)", name, e.Size)
}

// CorruptImageError reports a container that matched a supported
// encoding but cannot be decoded, such as a broken gzip stream or a
// damaged track header.
type CorruptImageError struct {
	Path   string
	Reason string
	Err    error
}

//
func (e *CorruptImageError) Error() string {
	name := e.Path
	if name == "" {
		name = "image"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s is corrupt: %s: %v", name, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s is corrupt: %s", name, e.Reason)
}

//
func (e *CorruptImageError) Unwrap() error {
	return e.Err
}
