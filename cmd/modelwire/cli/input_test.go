// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelwire/modelwire/lib/testutil"
)

func TestReadInputFromFile(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "message.bin", []byte{0x00, 0x01, 0x41})
	data, remaining, err := ReadInput([]string{"extra", path}, strings.NewReader("ignored"), false)
	if err != nil {
		t.Fatalf("ReadInput: %v", err)
	}
	if !bytes.Equal(data, []byte{0x00, 0x01, 0x41}) {
		t.Errorf("data = %x, want 000141", data)
	}
	if len(remaining) != 1 || remaining[0] != "extra" {
		t.Errorf("remaining = %v, want [extra]", remaining)
	}
}

func TestReadInputFromStdin(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.bin")
	data, remaining, err := ReadInput([]string{missing}, strings.NewReader("00 01\n41"), true)
	if err != nil {
		t.Fatalf("ReadInput: %v", err)
	}
	if !bytes.Equal(data, []byte{0x00, 0x01, 0x41}) {
		t.Errorf("data = %x, want 000141", data)
	}
	if len(remaining) != 1 {
		t.Errorf("remaining = %v, want the unconsumed argument", remaining)
	}
}

func TestReadInputRejectsBadHex(t *testing.T) {
	for _, input := range []string{"", "  \n", "zz"} {
		if _, _, err := ReadInput(nil, strings.NewReader(input), true); err == nil {
			t.Errorf("ReadInput(hex %q) succeeded, want error", input)
		}
	}
}

func TestWriteJSONNormalizesNilSlices(t *testing.T) {
	var buffer bytes.Buffer
	var empty []string
	if err := WriteJSON(&buffer, empty); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if got := strings.TrimSpace(buffer.String()); got != "[]" {
		t.Errorf("WriteJSON(nil slice) = %q, want []", got)
	}
}

func TestNewLoggerHandlers(t *testing.T) {
	var text, json bytes.Buffer
	newLogger(&text, true, false).Info("decoded", "uuid", "first-model")
	newLogger(&json, false, false).Info("decoded", "uuid", "first-model")
	if !strings.Contains(text.String(), "uuid=first-model") {
		t.Errorf("terminal output = %q, want key=value text", text.String())
	}
	if !strings.Contains(json.String(), `"uuid":"first-model"`) {
		t.Errorf("piped output = %q, want JSON", json.String())
	}

	var quiet, verbose bytes.Buffer
	newLogger(&quiet, false, false).Debug("hidden")
	newLogger(&verbose, false, true).Debug("shown")
	if quiet.Len() != 0 {
		t.Errorf("debug record written without verbose: %q", quiet.String())
	}
	if !strings.Contains(verbose.String(), "shown") {
		t.Errorf("verbose output = %q, want the debug record", verbose.String())
	}
}
