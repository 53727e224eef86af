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

// Package repo resolves repo:// references against the disk image
// repository folder configured on the daemon host.
package repo

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

//
const PrefixRepoRef = "repo://"

//
func newFileSource(file string) (*fileSource, error) {
	if f, err := os.Open(file); err != nil {
		return nil, err
	} else {
		return &fileSource{file: f, reader: bufio.NewReader(f)}, nil
	}
}

//
type fileSource struct {
	file   *os.File
	reader io.Reader
}

//
func (fs *fileSource) Read(p []byte) (n int, err error) {
	return fs.reader.Read(p)
}

//
func (fs *fileSource) Close() error {
	return fs.file.Close()
}

// Resolve opens the disk image a repo:// reference points to. The
// reference is confined to the repository folder; references that
// climb out of it are refused.
func Resolve(ref, repo string) (io.ReadCloser, error) {

	log.WithFields(log.Fields{
		"reference":  ref,
		"repository": repo,
	}).Debug("resolving ref")

	if !strings.HasPrefix(ref, PrefixRepoRef) {
		return nil, fmt.Errorf("not a repo reference: %s", ref)
	}

	if repo == "" {
		return nil, fmt.Errorf("image repository is not enabled")
	}

	path, err := Locate(ref, repo)
	if err != nil {
		return nil, err
	}

	return newFileSource(path)
}

// Locate maps a repo:// reference to the path of the image file it
// denotes, without opening it.
func Locate(ref, repo string) (string, error) {

	rel := strings.TrimPrefix(ref, PrefixRepoRef)

	base, err := filepath.Abs(repo)
	if err != nil {
		return "", err
	}

	path := filepath.Join(base, rel)
	if path != base && !strings.HasPrefix(path, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("reference escapes the repository: %s", ref)
	}

	return path, nil
}

//
func IsReference(r string) bool {
	return strings.HasPrefix(r, PrefixRepoRef)
}

// IsImageFile reports whether path has a disk image extension,
// optionally gzip compressed.
func IsImageFile(path string) bool {
	p := strings.ToLower(strings.TrimSuffix(path, ".gz"))
	switch filepath.Ext(p) {
	case ".mgt", ".img", ".sad", ".dsk", ".edsk":
		return true
	}
	return false
}
