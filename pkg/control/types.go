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

package control

//
type Status struct {
	Drives []DriveStatus `json:"drives"`
}

//
type DriveStatus struct {
	Drive          int    `json:"drive"`
	Name           string `json:"name"`
	Format         string `json:"format,omitempty"`
	WriteProtected bool   `json:"writeProtected"`
	Modified       bool   `json:"modified"`
}

//
type FileInfo struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Sectors int    `json:"sectors"`
	Length  int    `json:"length"`
}

//
type DriveList struct {
	Drive     int        `json:"drive"`
	Name      string     `json:"name"`
	Label     string     `json:"label,omitempty"`
	Variant   string     `json:"variant"`
	Files     []FileInfo `json:"files"`
	FreeSlots int        `json:"freeSlots"`
}

//
type RepoItem struct {
	Ref  string `json:"ref"`
	Size int64  `json:"size"`
}
