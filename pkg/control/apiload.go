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
	"io/ioutil"
	"net/http"
	"path/filepath"

	"github.com/mgtdrive/mgtdrive/pkg/daemon"
	"github.com/mgtdrive/mgtdrive/pkg/mgt/image"
	"github.com/mgtdrive/mgtdrive/pkg/repo"
)

// load mounts a disk image into the addressed drive. The image comes
// either from the request body, or from the repository when the body
// is a repo:// reference (Content-Type text/plain).
func (a *api) load(w http.ResponseWriter, req *http.Request) {

	drive := getDrive(w, req)
	if drive == -1 {
		return
	}

	body, err := ioutil.ReadAll(req.Body)
	if handleError(err, http.StatusInternalServerError, w) {
		return
	}

	var img image.Image
	name := getArg(req, "name")

	if ref := string(body); repo.IsReference(ref) {
		path, err := repo.Locate(ref, a.repository)
		if handleError(err, http.StatusUnprocessableEntity, w) {
			return
		}
		if img, err = image.Open(path); handleError(
			err, http.StatusUnprocessableEntity, w) {
			return
		}
		if name == "" {
			name = filepath.Base(path)
		}

	} else {
		if img, err = image.FromBytes(body); handleError(
			err, http.StatusUnprocessableEntity, w) {
			return
		}
	}

	drv := daemon.NewDrive(img, name)
	drv.SetWriteProtected(isFlagSet(req, "wprot"))

	if err = a.daemon.SetDrive(drive, drv, isFlagSet(req, "force")); err != nil {
		handleError(err, http.StatusConflict, w)
		return
	}

	sendReply([]byte(fmt.Sprintf(
		"loaded %s image into drive %d", img.Format(), drive)),
		http.StatusOK, w)
}
