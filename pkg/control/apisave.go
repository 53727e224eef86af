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
	"compress/gzip"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/mgtdrive/mgtdrive/pkg/mgt/image"
)

// save downloads the image mounted in the addressed drive, optionally
// converted to another format and gzip compressed.
func (a *api) save(w http.ResponseWriter, req *http.Request) {

	drv, drive := a.lockDrive(w, req)
	if drv == nil {
		return
	}
	defer drv.Unlock()

	img := drv.Image()

	if f := getArg(req, "format"); f != "" {
		format, err := image.ParseFormat(f)
		if handleError(err, http.StatusUnprocessableEntity, w) {
			return
		}
		if format != img.Format() {
			var err error
			if img, err = image.Convert(img, format); handleError(
				err, http.StatusUnprocessableEntity, w) {
				return
			}
		}
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf(
		"attachment; filename=\"drive%d.%s\"", drive, img.Format()))
	w.WriteHeader(http.StatusOK)

	if isFlagSet(req, "compress") {
		gz := gzip.NewWriter(w)
		if _, err := gz.Write(img.Data()); err != nil {
			log.Errorf("problem sending image: %v", err)
		}
		if err := gz.Close(); err != nil {
			log.Errorf("problem sending image: %v", err)
		}

	} else if _, err := w.Write(img.Data()); err != nil {
		log.Errorf("problem sending image: %v", err)
	}
}
