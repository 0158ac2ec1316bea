// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package attachment

import (
	"bytes"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelwire/modelwire/lib/message"
	"github.com/modelwire/modelwire/lib/model"
	"github.com/modelwire/modelwire/lib/testutil"
)

var (
	_ message.FileSink     = (*Loop)(nil)
	_ message.FileProvider = (*Loop)(nil)
	_ message.FileSink     = (*Store)(nil)
	_ message.FileProvider = (*Store)(nil)
)

func newStore(t *testing.T, compression Compression) *Store {
	t.Helper()
	store, err := NewStore(StoreOptions{Directory: t.TempDir(), Compression: compression})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func textContent() []byte {
	return []byte(strings.Repeat("the quick brown fox jumps over the lazy dog\n", 200))
}

func randomContent(size int) []byte {
	source := rand.New(rand.NewPCG(1, 2))
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(source.Uint32())
	}
	return data
}

func TestLoop(t *testing.T) {
	loop := NewLoop()
	first, err := loop.HandleFile("/tmp/a.bin")
	if err != nil {
		t.Fatalf("HandleFile: %v", err)
	}
	second, err := loop.HandleFile("/tmp/b.bin")
	if err != nil {
		t.Fatalf("HandleFile: %v", err)
	}
	if first != "1" || second != "2" {
		t.Fatalf("transfer ids = %q, %q, want 1, 2", first, second)
	}
	if path, _ := loop.GetFile(second); path != "/tmp/b.bin" {
		t.Fatalf("GetFile(%q) = %q, want /tmp/b.bin", second, path)
	}
	if path, err := loop.GetFile("99"); path != "" || err != nil {
		t.Fatalf("GetFile(unknown) = %q, %v, want empty and nil", path, err)
	}
	if _, err := loop.HandleFile(""); err == nil {
		t.Fatal("HandleFile(\"\") succeeded, want error")
	}
	if loop.Len() != 2 {
		t.Fatalf("Len = %d, want 2", loop.Len())
	}
}

func TestLoopConcurrentIDsAreUnique(t *testing.T) {
	loop := NewLoop()
	const workers, perWorker = 8, 50
	ids := make(chan string, workers*perWorker)
	for range workers {
		go func() {
			for range perWorker {
				id, err := loop.HandleFile("/tmp/shared")
				if err != nil {
					t.Errorf("HandleFile: %v", err)
					id = ""
				}
				ids <- id
			}
		}()
	}
	seen := make(map[string]bool)
	for i := range workers * perWorker {
		id := testutil.RequireReceive(t, ids, 5*time.Second, "transfer id %d", i)
		if seen[id] {
			t.Fatalf("transfer id %q issued twice", id)
		}
		seen[id] = true
	}
	if loop.Len() != workers*perWorker {
		t.Fatalf("loop holds %d files, want %d", loop.Len(), workers*perWorker)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		compression Compression
		content     []byte
		want        Compression
	}{
		{"auto text", CompressionAuto, textContent(), CompressionZstd},
		{"auto random", CompressionAuto, randomContent(4096), CompressionNone},
		{"lz4", CompressionLZ4, textContent(), CompressionLZ4},
		{"zstd", CompressionZstd, textContent(), CompressionZstd},
		{"none", CompressionNone, textContent(), CompressionNone},
		{"lz4 incompressible", CompressionLZ4, randomContent(4096), CompressionNone},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := newStore(t, test.compression)
			path := testutil.WriteFile(t, t.TempDir(), "payload.dat", test.content)

			transferID, err := store.HandleFile(path)
			if err != nil {
				t.Fatalf("HandleFile: %v", err)
			}
			if transferID != TransferID(test.content) {
				t.Fatalf("transfer id = %s, want content hash %s", transferID, TransferID(test.content))
			}

			metadata, ok, err := store.Metadata(transferID)
			if err != nil || !ok {
				t.Fatalf("Metadata = %v, %v", ok, err)
			}
			if metadata.Compression != test.want {
				t.Fatalf("compression = %s, want %s", metadata.Compression, test.want)
			}
			if metadata.Name != "payload.dat" || metadata.Length != int64(len(test.content)) {
				t.Fatalf("metadata = %+v", metadata)
			}
			if test.want != CompressionNone && metadata.StoredLength >= metadata.Length {
				t.Fatalf("stored %d bytes for %d bytes of content", metadata.StoredLength, metadata.Length)
			}

			restored, err := store.GetFile(transferID)
			if err != nil {
				t.Fatalf("GetFile: %v", err)
			}
			if filepath.Base(restored) != "payload.dat" {
				t.Fatalf("restored name = %s, want payload.dat", filepath.Base(restored))
			}
			got, err := os.ReadFile(restored)
			if err != nil {
				t.Fatalf("reading restored file: %v", err)
			}
			if !bytes.Equal(got, test.content) {
				t.Fatal("restored content differs from stored content")
			}
		})
	}
}

func TestStoreDeduplicates(t *testing.T) {
	store := newStore(t, CompressionAuto)
	directory := t.TempDir()
	first := testutil.WriteFile(t, directory, "first.txt", textContent())
	second := testutil.WriteFile(t, directory, "second.txt", textContent())

	firstID, err := store.HandleFile(first)
	if err != nil {
		t.Fatalf("HandleFile: %v", err)
	}
	secondID, err := store.HandleFile(second)
	if err != nil {
		t.Fatalf("HandleFile: %v", err)
	}
	if firstID != secondID {
		t.Fatalf("identical content got ids %s and %s", firstID, secondID)
	}
	metadata, _, err := store.Metadata(firstID)
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if metadata.Name != "first.txt" {
		t.Fatalf("metadata name = %s, want the first stored name", metadata.Name)
	}
}

func TestStoreUnknownTransferID(t *testing.T) {
	store := newStore(t, CompressionAuto)
	for _, id := range []string{"", "1", "not-a-hash", TransferID([]byte("never stored"))} {
		path, err := store.GetFile(id)
		if err != nil {
			t.Fatalf("GetFile(%q) error: %v", id, err)
		}
		if path != "" {
			t.Fatalf("GetFile(%q) = %q, want empty", id, path)
		}
	}
}

func TestStoreDetectsCorruptBlob(t *testing.T) {
	store := newStore(t, CompressionNone)
	path := testutil.WriteFile(t, t.TempDir(), "data.txt", textContent())
	transferID, err := store.HandleFile(path)
	if err != nil {
		t.Fatalf("HandleFile: %v", err)
	}
	corrupt := textContent()
	corrupt[0] ^= 0xff
	if err := os.WriteFile(store.blobPath(transferID), corrupt, 0o644); err != nil {
		t.Fatalf("corrupting blob: %v", err)
	}
	if _, err := store.GetFile(transferID); err == nil {
		t.Fatal("GetFile succeeded on a corrupt blob")
	}
}

func TestNewStoreValidation(t *testing.T) {
	if _, err := NewStore(StoreOptions{}); err == nil {
		t.Fatal("NewStore without a directory succeeded")
	}
	if _, err := NewStore(StoreOptions{Directory: t.TempDir(), Compression: Compression(42)}); err == nil {
		t.Fatal("NewStore with an unknown compression succeeded")
	}
}

func TestParseCompression(t *testing.T) {
	for _, compression := range []Compression{CompressionAuto, CompressionNone, CompressionLZ4, CompressionZstd} {
		parsed, err := ParseCompression(compression.String())
		if err != nil {
			t.Fatalf("ParseCompression(%q): %v", compression.String(), err)
		}
		if parsed != compression {
			t.Fatalf("ParseCompression(%q) = %s", compression.String(), parsed)
		}
	}
	if _, err := ParseCompression("gzip"); err == nil {
		t.Fatal("ParseCompression(gzip) succeeded")
	}
}

// A message carrying a file through a store decodes on the other side
// with the content restored locally.
func TestStoreCarriesMessageAttachments(t *testing.T) {
	document := model.NewObject("doc.model", "document", 1)
	if _, err := document.AddProperty("title", 1, model.TypeString); err != nil {
		t.Fatalf("AddProperty: %v", err)
	}
	if _, err := document.AddProperty("body", 2, model.TypeFile); err != nil {
		t.Fatalf("AddProperty: %v", err)
	}

	content := textContent()
	file, err := message.NewFile(testutil.WriteFile(t, t.TempDir(), "body.txt", content))
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	outgoing := message.New(document)
	if err := outgoing.SetString("title", "notes"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	if err := outgoing.SetFile("body", file); err != nil {
		t.Fatalf("SetFile: %v", err)
	}

	store := newStore(t, CompressionAuto)
	data, err := outgoing.Marshal(store)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	incoming, err := message.Unmarshal(data, document, message.ReadOptions{Files: store})
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	received, ok := incoming.File("body")
	if !ok {
		t.Fatal("decoded message has no body")
	}
	if !received.Available() {
		t.Fatal("decoded attachment is not available")
	}
	if received.TransferID != TransferID(content) {
		t.Fatalf("transfer id = %s, want %s", received.TransferID, TransferID(content))
	}
	if received.Name != "body.txt" || received.Length != int64(len(content)) {
		t.Fatalf("decoded file = %+v", received)
	}
	got, err := os.ReadFile(received.Path)
	if err != nil {
		t.Fatalf("reading restored body: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatal("restored body differs")
	}

	// A receiver without the store sees the file as unavailable.
	detached, err := message.Unmarshal(data, document, message.ReadOptions{Files: NewLoop()})
	if err != nil {
		t.Fatalf("Unmarshal with an empty provider: %v", err)
	}
	if missing, _ := detached.File("body"); missing.Available() {
		t.Fatalf("attachment unexpectedly available at %q", missing.Path)
	}
}

func testKey(seed byte) []byte {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = seed + byte(i)
	}
	return key
}

func TestEncryptedStore(t *testing.T) {
	directory := t.TempDir()
	key := testKey(7)
	store, err := NewStore(StoreOptions{Directory: directory, EncryptionKey: key})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	content := textContent()
	transferID, err := store.HandleFile(testutil.WriteFile(t, t.TempDir(), "secret.txt", content))
	if err != nil {
		t.Fatalf("HandleFile: %v", err)
	}

	metadata, _, err := store.Metadata(transferID)
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if !metadata.Encrypted {
		t.Fatal("metadata does not record encryption")
	}
	blob, err := os.ReadFile(store.blobPath(transferID))
	if err != nil {
		t.Fatalf("reading blob: %v", err)
	}
	if bytes.Contains(blob, []byte("quick brown fox")) {
		t.Fatal("blob contains plaintext")
	}

	restored, err := store.GetFile(transferID)
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	got, err := os.ReadFile(restored)
	if err != nil {
		t.Fatalf("reading restored file: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatal("restored content differs")
	}

	// Separate cache directories force each store to open the blob.
	keyless, err := NewStore(StoreOptions{Directory: directory, CacheDirectory: t.TempDir()})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := keyless.GetFile(transferID); err == nil {
		t.Fatal("GetFile without a key succeeded on an encrypted blob")
	}
	wrongKey, err := NewStore(StoreOptions{Directory: directory, CacheDirectory: t.TempDir(), EncryptionKey: testKey(9)})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := wrongKey.GetFile(transferID); err == nil {
		t.Fatal("GetFile with the wrong key succeeded")
	}
}

func TestSealedBlobIsBoundToTransferID(t *testing.T) {
	key := testKey(1)
	sealed, err := sealBlob([]byte("payload"), key, "first")
	if err != nil {
		t.Fatalf("sealBlob: %v", err)
	}
	if _, err := openBlob(sealed, key, "second"); err == nil {
		t.Fatal("blob opened under another transfer id")
	}
	opened, err := openBlob(sealed, key, "first")
	if err != nil {
		t.Fatalf("openBlob: %v", err)
	}
	if string(opened) != "payload" {
		t.Fatalf("opened = %q, want payload", opened)
	}
	if _, err := openBlob(sealed[:10], key, "first"); err == nil {
		t.Fatal("truncated blob opened")
	}
}

func TestNewStoreRejectsShortKey(t *testing.T) {
	if _, err := NewStore(StoreOptions{Directory: t.TempDir(), EncryptionKey: []byte("short")}); err == nil {
		t.Fatal("NewStore accepted a short key")
	}
}
