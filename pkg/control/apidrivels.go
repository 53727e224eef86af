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

import (
	"net/http"

	"github.com/mgtdrive/mgtdrive/pkg/mgt/dos"
)

// driveList reads the directory of the image mounted in the addressed
// drive.
func (a *api) driveList(w http.ResponseWriter, req *http.Request) {

	drv, drive := a.lockDrive(w, req)
	if drv == nil {
		return
	}
	defer drv.Unlock()

	d, err := dos.FromImage(drv.Image(), false)
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return
	}

	if !wantsJSON(req) {
		sendReply([]byte(d.Dir()), http.StatusOK, w)
		return
	}

	ls := DriveList{
		Drive:     drive,
		Name:      drv.Name(),
		Label:     d.Label,
		Variant:   d.Variant.String(),
		FreeSlots: d.Capacity() - d.FileCount(),
	}

	for _, f := range d.Files() {
		ls.Files = append(ls.Files, FileInfo{
			Name:    f.Name,
			Type:    f.Type.String(),
			Sectors: f.Sectors,
			Length:  f.Length,
		})
	}

	sendJSONReply(ls, http.StatusOK, w)
}
