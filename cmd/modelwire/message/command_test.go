// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelwire/modelwire/lib/attachment"
	"github.com/modelwire/modelwire/lib/catalog"
	libmessage "github.com/modelwire/modelwire/lib/message"
	"github.com/modelwire/modelwire/lib/model"
	"github.com/modelwire/modelwire/lib/modeldef"
	"github.com/modelwire/modelwire/lib/registry"
	"github.com/modelwire/modelwire/lib/testutil"
)

const usersDescriptor = `name: users
version: 1
models:
  - name: address
    uuid: adr.model
    properties:
      - {name: street, key: 1, type: STRING}
  - name: user
    uuid: first-model
    version: 2
    properties:
      - {name: first, key: 1, type: STRING}
      - {name: address, key: 4, type: OBJECT_SINGLE_REFERENCE, reference: address}
      - {name: state, key: 6, type: ENUM, values: [active, blocked]}
      - {name: avatar, key: 9, type: FILE}
`

func usersCollection(t *testing.T) *registry.Collection {
	t.Helper()
	path := testutil.WriteFile(t, t.TempDir(), "users.yaml", []byte(usersDescriptor))
	collection, err := modeldef.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return collection
}

func encodeUser(t *testing.T, collection *registry.Collection, files libmessage.FileSink, avatar string) []byte {
	t.Helper()
	userModel, _ := collection.ModelByName("user")
	addressModel, _ := collection.ModelByName("address")

	address := libmessage.New(addressModel)
	user := libmessage.New(userModel)
	steps := []error{
		address.SetString("street", "Main"),
		user.SetString("first", "Tom"),
		user.SetEnum("state", "blocked"),
		user.SetReference("address", address),
	}
	if avatar != "" {
		file, err := libmessage.NewFile(avatar)
		if err != nil {
			t.Fatalf("NewFile: %v", err)
		}
		steps = append(steps, user.SetFile("avatar", file))
	}
	for _, err := range steps {
		if err != nil {
			t.Fatalf("building message: %v", err)
		}
	}
	data, err := user.Marshal(files)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return data
}

func TestPeek(t *testing.T) {
	data := encodeUser(t, usersCollection(t), nil, "")

	var text bytes.Buffer
	if err := peek(&text, data, false); err != nil {
		t.Fatalf("peek: %v", err)
	}
	if got := text.String(); got != "first-model\t2\n" {
		t.Errorf("peek = %q, want %q", got, "first-model\t2\n")
	}

	var output bytes.Buffer
	if err := peek(&output, data, true); err != nil {
		t.Fatalf("peek --json: %v", err)
	}
	var got header
	if err := json.Unmarshal(output.Bytes(), &got); err != nil {
		t.Fatalf("parsing peek JSON: %v", err)
	}
	if got != (header{UUID: "first-model", Version: 2}) {
		t.Errorf("peek --json = %+v", got)
	}

	if err := peek(&output, []byte{0x00}, false); err == nil {
		t.Error("peek of a truncated header succeeded")
	}
}

func TestDecodeText(t *testing.T) {
	collection := usersCollection(t)
	data := encodeUser(t, collection, nil, "")

	var output bytes.Buffer
	if err := decode(&output, collection.NewRegistry().Decode, data, libmessage.ReadOptions{}, false); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, want := range []string{"user [first-model v2]", `first, STRING: "Tom"`, "state, ENUM: blocked", `street, STRING: "Main"`} {
		if !strings.Contains(output.String(), want) {
			t.Errorf("decode output missing %q:\n%s", want, output.String())
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	collection := usersCollection(t)
	data := encodeUser(t, collection, nil, "")

	var output bytes.Buffer
	if err := decode(&output, collection.NewRegistry().Decode, data, libmessage.ReadOptions{}, true); err != nil {
		t.Fatalf("decode --json: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(output.Bytes(), &got); err != nil {
		t.Fatalf("parsing decode JSON: %v\n%s", err, output.String())
	}
	if got["first"] != "Tom" || got["state"] != "blocked" {
		t.Errorf("decoded = %v", got)
	}
	address, ok := got["address"].(map[string]any)
	if !ok || address["street"] != "Main" {
		t.Errorf("decoded address = %v", got["address"])
	}
}

func TestDecodeRestoresAttachments(t *testing.T) {
	collection := usersCollection(t)
	store, err := attachment.NewStore(attachment.StoreOptions{Directory: t.TempDir()})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	avatar := testutil.WriteFile(t, t.TempDir(), "avatar.png", bytes.Repeat([]byte("pixel"), 100))
	data := encodeUser(t, collection, store, avatar)

	var output bytes.Buffer
	if err := decode(&output, collection.NewRegistry().Decode, data, libmessage.ReadOptions{Files: store}, true); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var got struct {
		Avatar struct {
			Name       string `json:"name"`
			Length     int64  `json:"length"`
			TransferID string `json:"transferId"`
			Path       string `json:"path"`
		} `json:"avatar"`
	}
	if err := json.Unmarshal(output.Bytes(), &got); err != nil {
		t.Fatalf("parsing decode JSON: %v", err)
	}
	if got.Avatar.Name != "avatar.png" || got.Avatar.Length != 500 || got.Avatar.TransferID == "" {
		t.Fatalf("decoded avatar = %+v", got.Avatar)
	}
	restored, err := os.ReadFile(got.Avatar.Path)
	if err != nil {
		t.Fatalf("reading restored avatar: %v", err)
	}
	if len(restored) != 500 {
		t.Errorf("restored avatar has %d bytes, want 500", len(restored))
	}
}

func TestDecodeUnknownModel(t *testing.T) {
	collection := usersCollection(t)
	data := encodeUser(t, collection, nil, "")

	err := decode(&bytes.Buffer{}, registry.New().Decode, data, libmessage.ReadOptions{}, false)
	if !errors.Is(err, model.ErrUnresolvedModel) {
		t.Fatalf("decode against an empty registry: %v, want ErrUnresolvedModel", err)
	}
}

func TestDecodeFromCatalogKeepsOldVersions(t *testing.T) {
	collection := usersCollection(t)
	data := encodeUser(t, collection, nil, "")

	// A later descriptor moves user to version 3 with an extra property.
	newer := strings.Replace(usersDescriptor, "    version: 2\n", "    version: 3\n", 1) +
		"      - {name: last, key: 10, type: STRING}\n"
	newerPath := testutil.WriteFile(t, t.TempDir(), "users-v3.yaml", []byte(newer))
	newerCollection, err := modeldef.Load(newerPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	path := filepath.Join(t.TempDir(), "models.db")
	cat, err := catalog.Open(catalog.Options{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, c := range []*registry.Collection{collection, newerCollection} {
		if _, err := cat.PutCollection(context.Background(), c); err != nil {
			t.Fatalf("PutCollection: %v", err)
		}
	}
	if err := cat.Close(); err != nil {
		t.Fatal(err)
	}

	decodeMessage, err := loadDecoder("", path, slog.Default())
	if err != nil {
		t.Fatalf("loadDecoder: %v", err)
	}
	var output bytes.Buffer
	if err := decode(&output, decodeMessage, data, libmessage.ReadOptions{}, false); err != nil {
		t.Fatalf("decode of a version 2 message with version 3 stored: %v", err)
	}
	for _, want := range []string{"user [first-model v2]", `first, STRING: "Tom"`, `street, STRING: "Main"`} {
		if !strings.Contains(output.String(), want) {
			t.Errorf("decode output missing %q:\n%s", want, output.String())
		}
	}
}

func TestReadKey(t *testing.T) {
	directory := t.TempDir()
	raw := bytes.Repeat([]byte{0xab}, attachment.KeySize)

	rawPath := testutil.WriteFile(t, directory, "raw.key", raw)
	hexPath := testutil.WriteFile(t, directory, "hex.key", []byte(hex.EncodeToString(raw)+"\n"))
	shortPath := testutil.WriteFile(t, directory, "short.key", []byte("abcd"))

	for _, path := range []string{rawPath, hexPath} {
		key, err := readKey(path)
		if err != nil {
			t.Fatalf("readKey(%s): %v", filepath.Base(path), err)
		}
		if !bytes.Equal(key, raw) {
			t.Errorf("readKey(%s) = %x", filepath.Base(path), key)
		}
	}
	if _, err := readKey(shortPath); err == nil {
		t.Error("readKey accepted a 2-byte key")
	}
}
