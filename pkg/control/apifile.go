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
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/mgtdrive/mgtdrive/pkg/daemon"
	"github.com/mgtdrive/mgtdrive/pkg/mgt/dos"
	"github.com/mgtdrive/mgtdrive/pkg/mgt/image"
)

// extractFile downloads a file from the image mounted in the
// addressed drive. By default the bare file content is sent; with
// raw=true the exported pair of raw directory entry and on-disk data,
// re-importable through LoadFile.
func (a *api) extractFile(w http.ResponseWriter, req *http.Request) {

	drv, _ := a.lockDrive(w, req)
	if drv == nil {
		return
	}
	defer drv.Unlock()

	name := mux.Vars(req)["name"]

	d, err := dos.FromImage(drv.Image(), false)
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return
	}

	f := d.Find(name)
	if f == nil {
		handleError(fmt.Errorf("no such file: %s", name),
			http.StatusNotFound, w)
		return
	}

	body := f.Payload()
	if isFlagSet(req, "raw") {
		body = append(append([]byte{}, f.Entry...), f.Data...)
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", f.Name))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(body); err != nil {
		log.Errorf("problem sending file: %v", err)
	}
}

// addFile writes the request body as a CODE file onto the image
// mounted in the addressed drive. Load address and auto-execute
// address can be given as query args.
func (a *api) addFile(w http.ResponseWriter, req *http.Request) {

	drv, _ := a.lockDrive(w, req)
	if drv == nil {
		return
	}
	defer drv.Unlock()

	if drv.IsWriteProtected() {
		handleError(fmt.Errorf("drive is write protected"),
			http.StatusConflict, w)
		return
	}

	name := mux.Vars(req)["name"]

	body, err := ioutil.ReadAll(req.Body)
	if handleError(err, http.StatusInternalServerError, w) {
		return
	}

	start := 0x8000
	if s := getArg(req, "start"); s != "" {
		if start, err = strconv.Atoi(s); handleError(
			err, http.StatusUnprocessableEntity, w) {
			return
		}
	}

	var execute *int
	if e := getArg(req, "execute"); e != "" {
		x, err := strconv.Atoi(e)
		if handleError(err, http.StatusUnprocessableEntity, w) {
			return
		}
		execute = &x
	}

	d, err := dos.FromImage(drv.Image(), false)
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return
	}

	if err = d.Add(dos.FromCodeBytes(body, name, start, execute),
		-1); handleError(err, http.StatusConflict, w) {
		return
	}

	img, err := d.ToImage(d.SectorsPerTrack())
	if handleError(err, http.StatusConflict, w) {
		return
	}

	if err = a.mountRebuilt(drv, img); handleError(
		err, http.StatusInternalServerError, w) {
		return
	}
	sendReply([]byte(fmt.Sprintf("added %s", name)), http.StatusOK, w)
}

// deleteFiles removes all files matching the name pattern from the
// image mounted in the addressed drive.
func (a *api) deleteFiles(w http.ResponseWriter, req *http.Request) {

	drv, _ := a.lockDrive(w, req)
	if drv == nil {
		return
	}
	defer drv.Unlock()

	if drv.IsWriteProtected() {
		handleError(fmt.Errorf("drive is write protected"),
			http.StatusConflict, w)
		return
	}

	pattern := mux.Vars(req)["name"]

	d, err := dos.FromImage(drv.Image(), false)
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return
	}

	count := d.Delete(pattern)
	if count == 0 {
		handleError(fmt.Errorf("no file matches %s", pattern),
			http.StatusNotFound, w)
		return
	}

	img, err := d.ToImage(d.SectorsPerTrack())
	if handleError(err, http.StatusConflict, w) {
		return
	}

	if err = a.mountRebuilt(drv, img); handleError(
		err, http.StatusInternalServerError, w) {
		return
	}
	sendReply([]byte(fmt.Sprintf("deleted %d file(s)", count)),
		http.StatusOK, w)
}

// mountRebuilt swaps a rewritten image into the drive, converted back
// to the container format the drive was mounted with. When the drive
// was mounted from a file, the rewrite is saved back to it right away,
// so the rebuilt image keeps the drive's backing file.
func (a *api) mountRebuilt(drv *daemon.Drive, img image.Image) error {

	path := drv.Image().Path()
	compressed := drv.Image().Compressed()

	if img.Format() != drv.Image().Format() {
		converted, err := image.Convert(img, drv.Image().Format())
		if err != nil {
			return err
		}
		img = converted
	}

	drv.SetImage(img)

	if path != "" {
		if err := img.Save(path, compressed); err != nil {
			return err
		}
		drv.SetModified(false)
	}
	return nil
}
