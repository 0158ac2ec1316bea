// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package attachment

import (
	"fmt"
	"strconv"
	"sync"
)

// Loop brokers attachments between an encoder and a decoder in the
// same process. HandleFile records the path under the next sequential
// id; GetFile returns it. Content is never copied, so the file must
// still exist when the receiver opens it.
type Loop struct {
	mu    sync.Mutex
	next  int
	paths map[string]string
}

// NewLoop returns an empty broker. The first transfer id is "1".
func NewLoop() *Loop {
	return &Loop{paths: make(map[string]string)}
}

// HandleFile implements message.FileSink.
func (l *Loop) HandleFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("attachment loop: empty path")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	transferID := strconv.Itoa(l.next)
	l.paths[transferID] = path
	return transferID, nil
}

// GetFile implements message.FileProvider. An id the loop never issued
// yields an empty path.
func (l *Loop) GetFile(transferID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paths[transferID], nil
}

// Len returns the number of attachments handed to the loop.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.paths)
}
