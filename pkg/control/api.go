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

// Package control is the HTTP API over the daemon: drive status,
// loading and saving images, and file operations on mounted disks.
package control

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/mgtdrive/mgtdrive/pkg/daemon"
)

// Version is stamped in by the linker and reported by the version
// endpoint.
var Version string

//
type APIServer interface {
	Serve() error
	Stop() error
}

//
func NewAPIServer(addr, repository string, d *daemon.Daemon) APIServer {
	return &api{address: addr, repository: repository, daemon: d}
}

//
type api struct {
	address    string
	repository string
	daemon     *daemon.Daemon
	server     *http.Server
}

//
func (a *api) router() *mux.Router {

	router := mux.NewRouter().StrictSlash(true)

	addRoute(router, "version", "GET", "/version", a.version)
	addRoute(router, "status", "GET", "/status", a.status)
	addRoute(router, "ls", "GET", "/list", a.list)
	addRoute(router, "load", "PUT", "/drive/{drive:[1-2]}", a.load)
	addRoute(router, "save", "GET", "/drive/{drive:[1-2]}", a.save)
	addRoute(router, "unload", "DELETE", "/drive/{drive:[1-2]}", a.unload)
	addRoute(router, "drivels", "GET", "/drive/{drive:[1-2]}/ls", a.driveList)
	addRoute(router, "extract", "GET",
		"/drive/{drive:[1-2]}/file/{name}", a.extractFile)
	addRoute(router, "add", "PUT",
		"/drive/{drive:[1-2]}/file/{name}", a.addFile)
	addRoute(router, "rm", "DELETE",
		"/drive/{drive:[1-2]}/file/{name}", a.deleteFiles)

	return router
}

//
func (a *api) Serve() error {

	addr := a.address
	if len(strings.Split(addr, ":")) < 2 {
		addr = fmt.Sprintf("%s:8765", a.address)
	}

	log.Infof("MGTDrive API starts listening on %s", addr)
	a.server = &http.Server{Addr: addr, Handler: a.router()}

	err := a.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

//
func (a *api) Stop() error {
	if a.server != nil {
		log.Info("API server stopping...")
		err := a.server.Shutdown(context.Background())
		a.server = nil
		return err
	}
	return nil
}

//
func addRoute(r *mux.Router, name, method, pattern string,
	handler http.HandlerFunc) {
	r.Methods(method).
		Path(pattern).
		Name(name).
		Handler(requestLogger(handler, name))
}

//
func requestLogger(inner http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		log.WithFields(log.Fields{
			"remote": r.RemoteAddr,
			"method": r.Method,
			"path":   r.RequestURI,
		}).Debugf("API BEGIN | %s", name)

		start := time.Now()
		inner.ServeHTTP(w, r)

		log.WithFields(log.Fields{
			"remote":   r.RemoteAddr,
			"method":   r.Method,
			"path":     r.RequestURI,
			"duration": time.Since(start),
		}).Debugf("API END   | %s", name)
	})
}

// getDrive extracts and validates the drive number from the request,
// replying with an error itself when invalid.
func getDrive(w http.ResponseWriter, req *http.Request) int {
	vars := mux.Vars(req)
	drive, err := strconv.Atoi(vars["drive"])
	if err != nil || drive < 1 || drive > daemon.DriveCount {
		handleError(fmt.Errorf("invalid drive"), http.StatusUnprocessableEntity, w)
		return -1
	}
	return drive
}

// lockDrive locks the addressed drive slot, replying with an error
// itself when the slot is busy or empty. The caller unlocks.
func (a *api) lockDrive(w http.ResponseWriter, req *http.Request) (
	*daemon.Drive, int) {

	drive := getDrive(w, req)
	if drive == -1 {
		return nil, -1
	}

	drv, ok := a.daemon.GetDrive(drive)
	if !ok {
		handleError(fmt.Errorf("drive %d busy", drive), http.StatusLocked, w)
		return nil, -1
	}
	if drv == nil {
		handleError(fmt.Errorf("no image in drive %d", drive),
			http.StatusUnprocessableEntity, w)
		return nil, -1
	}

	return drv, drive
}

//
func isFlagSet(req *http.Request, flag string) bool {
	return strings.ToLower(req.URL.Query().Get(flag)) == "true"
}

//
func getArg(req *http.Request, arg string) string {
	return req.URL.Query().Get(arg)
}

//
func setHeaders(h http.Header, json bool) {
	if json {
		h.Set("Content-Type", "application/json; charset=UTF-8")
	} else {
		h.Set("Content-Type", "text/plain; charset=UTF-8")
	}
}

//
func handleError(e error, statusCode int, w http.ResponseWriter) bool {
	if e != nil {
		log.Errorf("%v", e)
		setHeaders(w.Header(), false)
		w.WriteHeader(statusCode)
		fmt.Fprintf(w, "%v\n", e)
		return true
	}
	return false
}

//
func sendReply(body []byte, statusCode int, w http.ResponseWriter) {
	setHeaders(w.Header(), false)
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		log.Errorf("problem sending reply: %v", err)
	}
	w.Write([]byte("\n"))
}

//
func sendJSONReply(obj interface{}, statusCode int, w http.ResponseWriter) {
	setHeaders(w.Header(), true)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(obj); err != nil {
		log.Errorf("problem sending JSON reply: %v", err)
	}
}

//
func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json")
}
