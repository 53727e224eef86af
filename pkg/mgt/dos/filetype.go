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
	"github.com/mgtdrive/mgtdrive/pkg/mgt"
)

// FileType is the 5-bit type code from a directory entry. Values below
// 16 come from the DISCiPLE/+D era, 16 and up are SAM types.
type FileType byte

//
const (
	TypeNone FileType = iota
	TypeZXBasic
	TypeZXData
	TypeZXDataStr
	TypeZXCode
	TypeZXSnap48K
	TypeZXMdrv
	TypeZXScreen
	TypeSpecial
	TypeZXSnap128K
	TypeOpentype
	TypeZXExecute
	TypeUnidosDir
	TypeUnidosCreate

	TypeBasic FileType = iota + 2
	TypeData
	TypeDataStr
	TypeCode
	TypeScreen
	TypeDir
	TypeDriverApp
	TypeDriverBoot
	TypeEdosNomen
	TypeEdosSystem
	TypeEdosOverlay

	TypeHdosDos FileType = iota + 3
	TypeHdosDir
	TypeHdosDisk
	TypeHdosTemp
)

//
var typeNames = map[FileType]string{
	TypeZXBasic:      "ZX BASIC",
	TypeZXData:       "ZX DATA ()",
	TypeZXDataStr:    "ZX DATA $()",
	TypeZXCode:       "ZX CODE",
	TypeZXSnap48K:    "ZX SNP 48K",
	TypeZXMdrv:       "ZX MDRV",
	TypeZXScreen:     "ZX SCREEN$",
	TypeSpecial:      "SPECIAL",
	TypeZXSnap128K:   "ZX SNP 128K",
	TypeOpentype:     "OPENTYPE",
	TypeZXExecute:    "ZX EXECUTE",
	TypeUnidosDir:    "UNIDOS DIR",
	TypeUnidosCreate: "UNIDOS CREATE",
	TypeBasic:        "BASIC",
	TypeData:         "DATA ()",
	TypeDataStr:      "DATA $",
	TypeCode:         "CODE",
	TypeScreen:       "SCREEN$",
	TypeDir:          "<DIR>",
	TypeDriverApp:    "DRIVER APP",
	TypeDriverBoot:   "DRIVER BOOT",
	TypeEdosNomen:    "EDOS NOMEN",
	TypeEdosSystem:   "EDOS SYSTEM",
	TypeEdosOverlay:  "EDOS OVERLAY",
	TypeHdosDos:      "HDOS DOS",
	TypeHdosDir:      "HDOS DIR",
	TypeHdosDisk:     "HDOS DISK",
	TypeHdosTemp:     "HDOS TEMP",
}

//
func (t FileType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "WHAT?"
}

// IsSAM reports whether the type belongs to the SAM range, which is
// what decides whether the entry carries a timestamp.
func (t FileType) IsSAM() bool {
	return t >= TypeBasic
}

// IsContiguous reports whether file data occupies consecutive sectors
// with no chain pointers.
func (t FileType) IsContiguous() bool {
	return t == TypeSpecial || t == TypeUnidosDir
}

// PayloadBytes is the number of data bytes per sector for this type:
// the full sector for contiguous types, the sector minus the trailing
// chain pointer otherwise.
func (t FileType) PayloadBytes() int {
	if t.IsContiguous() {
		return mgt.SectorSize
	}
	return mgt.SectorSize - 2
}

// bootable reports whether a boot ROM would auto-execute a file of this
// type from the first directory slot.
func (t FileType) bootable() bool {
	return t == TypeZXCode || t == TypeCode || t == TypeDriverBoot
}
