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
	"fmt"
	"net/http"
	"strings"

	"github.com/mgtdrive/mgtdrive/pkg/daemon"
)

//
func (a *api) version(w http.ResponseWriter, req *http.Request) {
	if wantsJSON(req) {
		sendJSONReply(map[string]string{"version": Version},
			http.StatusOK, w)
	} else {
		sendReply([]byte(Version), http.StatusOK, w)
	}
}

//
func (a *api) status(w http.ResponseWriter, req *http.Request) {

	st := Status{}

	for ix := 1; ix <= daemon.DriveCount; ix++ {

		ds := DriveStatus{Drive: ix, Name: "<empty>"}

		drv, ok := a.daemon.GetDrive(ix)
		if !ok {
			ds.Name = "<busy>"
		} else if drv != nil {
			ds.Name = drv.Name()
			ds.Format = drv.Image().Format().String()
			ds.WriteProtected = drv.IsWriteProtected()
			ds.Modified = drv.IsModified()
			drv.Unlock()
		}

		st.Drives = append(st.Drives, ds)
	}

	if wantsJSON(req) {
		sendJSONReply(st, http.StatusOK, w)
		return
	}

	var sb strings.Builder
	for _, ds := range st.Drives {
		flags := ""
		if ds.WriteProtected {
			flags += " P"
		}
		if ds.Modified {
			flags += " M"
		}
		fmt.Fprintf(&sb, "%d: %s%s\n", ds.Drive, ds.Name, flags)
	}
	sendReply([]byte(strings.TrimSuffix(sb.String(), "\n")), http.StatusOK, w)
}
