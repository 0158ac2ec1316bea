// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"fmt"
	"os"
	"path/filepath"
)

// File is the value of a FILE property. Only Name, Length, and
// TransferID cross the wire; Path refers to local content and is
// filled in on the receiving side by a FileProvider.
type File struct {
	Name       string
	Path       string
	Length     int64
	TransferID string
}

// NewFile describes the local file at path, taking the name and length
// from the file system.
func NewFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("describing attachment: %w", err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("describing attachment: %s is a directory", path)
	}
	return File{Name: filepath.Base(path), Path: path, Length: info.Size()}, nil
}

// Available reports whether the content is present locally. A decoded
// file whose transfer id the provider did not know is unavailable.
func (f File) Available() bool {
	return f.Path != ""
}

func (f File) String() string {
	return fmt.Sprintf("%s (%d)", f.Name, f.Length)
}

// FileSink takes custody of a local file while a message is encoded and
// returns the transfer id written in its place.
type FileSink interface {
	HandleFile(path string) (transferID string, err error)
}

// FileProvider maps a transfer id back to a local path while a message
// is decoded. An empty path with a nil error means the attachment is
// not available.
type FileProvider interface {
	GetFile(transferID string) (path string, err error)
}

// shouldTransfer reports whether the content of f is handed to a sink:
// it must exist locally and be non-empty.
func (f File) shouldTransfer() bool {
	if f.Path == "" || f.Length <= 0 {
		return false
	}
	info, err := os.Stat(f.Path)
	return err == nil && !info.IsDir() && info.Size() > 0
}
