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
	"os"
	"path/filepath"
	"strings"

	"github.com/mgtdrive/mgtdrive/pkg/repo"
)

// list walks the image repository and reports all disk images in it,
// as repo references usable with the load endpoint.
func (a *api) list(w http.ResponseWriter, req *http.Request) {

	if a.repository == "" {
		handleError(fmt.Errorf("no repository configured"),
			http.StatusUnprocessableEntity, w)
		return
	}

	var items []RepoItem

	err := filepath.Walk(a.repository,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || !repo.IsImageFile(path) {
				return nil
			}
			rel, err := filepath.Rel(a.repository, path)
			if err != nil {
				return err
			}
			items = append(items, RepoItem{
				Ref:  repo.PrefixRepoRef + filepath.ToSlash(rel),
				Size: info.Size(),
			})
			return nil
		})

	if handleError(err, http.StatusInternalServerError, w) {
		return
	}

	if wantsJSON(req) {
		sendJSONReply(items, http.StatusOK, w)
		return
	}

	var sb strings.Builder
	for _, it := range items {
		fmt.Fprintf(&sb, "%s\n", it.Ref)
	}
	sendReply([]byte(strings.TrimSuffix(sb.String(), "\n")), http.StatusOK, w)
}
