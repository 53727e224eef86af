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
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mgtdrive/mgtdrive/pkg/daemon"
	"github.com/mgtdrive/mgtdrive/pkg/mgt/dos"
	"github.com/mgtdrive/mgtdrive/pkg/mgt/image"
)

func newTestServer(t *testing.T, repo string) (*httptest.Server, *daemon.Daemon) {
	t.Helper()
	d := daemon.NewDaemon("")
	a := &api{repository: repo, daemon: d}
	srv := httptest.NewServer(a.router())
	t.Cleanup(srv.Close)
	return srv, d
}

func testImageBytes(t *testing.T) []byte {
	t.Helper()
	d := dos.NewDisk()
	if _, err := d.AddCodeFile(
		[]byte("api test payload"), "apifile", -1); err != nil {
		t.Fatalf("AddCodeFile failed: %v", err)
	}
	img, err := d.ToImage(10)
	if err != nil {
		t.Fatalf("ToImage failed: %v", err)
	}
	return img.Data()
}

func do(t *testing.T, method, url string, body []byte) *http.Response {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	return resp
}

func TestStatusEmpty(t *testing.T) {

	srv, _ := newTestServer(t, "")

	resp := do(t, "GET", srv.URL+"/status", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	body, _ := ioutil.ReadAll(resp.Body)
	if !strings.Contains(string(body), "<empty>") {
		t.Errorf("unexpected status body: %s", body)
	}
}

func TestLoadAndList(t *testing.T) {

	srv, _ := newTestServer(t, "")

	resp := do(t, "PUT", srv.URL+"/drive/1", testImageBytes(t))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("load failed with status %d", resp.StatusCode)
	}

	req, _ := http.NewRequest("GET", srv.URL+"/drive/1/ls", nil)
	req.Header.Set("Accept", "application/json")
	r, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("ls failed: %v", err)
	}
	defer r.Body.Close()

	var ls DriveList
	if err := json.NewDecoder(r.Body).Decode(&ls); err != nil {
		t.Fatalf("decoding ls reply failed: %v", err)
	}
	if len(ls.Files) != 1 || ls.Files[0].Name != "apifile" {
		t.Errorf("unexpected listing: %+v", ls)
	}
}

func TestLoadInvalidDrive(t *testing.T) {

	srv, _ := newTestServer(t, "")

	resp := do(t, "PUT", srv.URL+"/drive/3", testImageBytes(t))
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		t.Errorf("drive 3 accepted")
	}
}

func TestFileRoundTrip(t *testing.T) {

	srv, _ := newTestServer(t, "")

	resp := do(t, "PUT", srv.URL+"/drive/1", testImageBytes(t))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("load failed with status %d", resp.StatusCode)
	}

	payload := []byte("added through the API")
	resp = do(t, "PUT", srv.URL+"/drive/1/file/added", payload)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add failed with status %d", resp.StatusCode)
	}

	resp = do(t, "GET", srv.URL+"/drive/1/file/added", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("extract failed with status %d", resp.StatusCode)
	}
	got, _ := ioutil.ReadAll(resp.Body)
	if !bytes.Equal(got, payload) {
		t.Errorf("extracted %q, want %q", got, payload)
	}

	resp = do(t, "DELETE", srv.URL+"/drive/1/file/added", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete failed with status %d", resp.StatusCode)
	}

	resp = do(t, "GET", srv.URL+"/drive/1/file/added", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("deleted file still extractable, status %d", resp.StatusCode)
	}
}

// File operations rewrite the mounted image; the rewrite must keep the
// container format the drive was mounted with.
func TestAddKeepsContainerFormat(t *testing.T) {

	mgtImg, err := image.FromBytes(testImageBytes(t))
	if err != nil {
		t.Fatalf("FromBytes failed: %v", err)
	}
	sadImg, err := image.Convert(mgtImg, image.SAD)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	srv, d := newTestServer(t, "")

	resp := do(t, "PUT", srv.URL+"/drive/1", sadImg.Data())
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("load failed with status %d", resp.StatusCode)
	}

	resp = do(t, "PUT", srv.URL+"/drive/1/file/added", []byte("payload"))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add failed with status %d", resp.StatusCode)
	}

	drv, ok := d.GetDrive(1)
	if !ok || drv == nil {
		t.Fatal("drive 1 not available")
	}
	defer drv.Unlock()
	if got := drv.Image().Format(); got != image.SAD {
		t.Errorf("mounted image format %v after add, want %v",
			got, image.SAD)
	}
}

func TestUnload(t *testing.T) {

	srv, d := newTestServer(t, "")

	resp := do(t, "PUT", srv.URL+"/drive/2", testImageBytes(t))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("load failed with status %d", resp.StatusCode)
	}

	// stream mounted and untouched, no force needed
	resp = do(t, "DELETE", srv.URL+"/drive/2", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unload failed with status %d", resp.StatusCode)
	}

	drv, ok := d.GetDrive(2)
	if !ok || drv != nil {
		t.Errorf("drive 2 not empty after unload")
	}
}
