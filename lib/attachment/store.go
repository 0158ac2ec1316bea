// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package attachment

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/modelwire/modelwire/lib/codec"
)

// StoreOptions configures a Store.
type StoreOptions struct {
	// Directory holds compressed blobs and their metadata sidecars.
	// Required.
	Directory string

	// CacheDirectory receives decompressed files handed out by
	// GetFile. Defaults to a "cache" subdirectory of Directory.
	CacheDirectory string

	// Compression applied to new blobs. The zero value probes each
	// file.
	Compression Compression

	// EncryptionKey, when set, seals every new blob with
	// XChaCha20-Poly1305 under a key derived per blob. It must be
	// KeySize bytes. Sidecars stay readable without it.
	EncryptionKey []byte

	// Logger receives store and restore events. Nil uses
	// slog.Default().
	Logger *slog.Logger
}

// Metadata is the CBOR sidecar written next to every blob.
type Metadata struct {
	// Name is the base name of the file first stored under this id.
	Name string `cbor:"name"`

	// Length is the uncompressed size in bytes.
	Length int64 `cbor:"length"`

	// Compression is the algorithm the blob was written with. Never
	// CompressionAuto.
	Compression Compression `cbor:"compression"`

	// StoredLength is the size of the blob on disk.
	StoredLength int64 `cbor:"stored_length"`

	// Encrypted is set when the blob is sealed with the store key.
	Encrypted bool `cbor:"encrypted,omitempty"`
}

// Store is a content-addressed attachment directory. It implements
// both message.FileSink and message.FileProvider, so one Store can
// serve as the encoder's sink and, on a host that shares the
// directory, the decoder's provider.
//
// Identical content is stored once. The metadata keeps the name of the
// first file stored with that content; the name carried by each
// message is unaffected.
type Store struct {
	directory      string
	cacheDirectory string
	compression    Compression
	key            []byte
	logger         *slog.Logger

	// mu serializes writers so two goroutines storing the same
	// content do not race on the same blob path.
	mu sync.Mutex
}

// NewStore creates the store directories if needed.
func NewStore(options StoreOptions) (*Store, error) {
	if options.Directory == "" {
		return nil, fmt.Errorf("attachment store: directory is required")
	}
	switch options.Compression {
	case CompressionAuto, CompressionNone, CompressionLZ4, CompressionZstd:
	default:
		return nil, fmt.Errorf("attachment store: unsupported compression %s", options.Compression)
	}
	if options.EncryptionKey != nil && len(options.EncryptionKey) != KeySize {
		return nil, fmt.Errorf("attachment store: encryption key is %d bytes, want %d", len(options.EncryptionKey), KeySize)
	}
	cacheDirectory := options.CacheDirectory
	if cacheDirectory == "" {
		cacheDirectory = filepath.Join(options.Directory, "cache")
	}
	for _, directory := range []string{
		filepath.Join(options.Directory, "blobs"),
		filepath.Join(options.Directory, "meta"),
		cacheDirectory,
	} {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return nil, fmt.Errorf("attachment store: %w", err)
		}
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		directory:      options.Directory,
		cacheDirectory: cacheDirectory,
		compression:    options.Compression,
		key:            bytes.Clone(options.EncryptionKey),
		logger:         logger,
	}, nil
}

// HandleFile implements message.FileSink: it stores the content of the
// file at path and returns its transfer id.
func (s *Store) HandleFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("storing attachment: %w", err)
	}
	transferID := TransferID(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.metadataPath(transferID)); err == nil {
		return transferID, nil
	}

	stored, compression, err := compress(data, s.compression)
	if err != nil {
		return "", fmt.Errorf("storing attachment %s: %w", path, err)
	}
	if s.key != nil {
		if stored, err = sealBlob(stored, s.key, transferID); err != nil {
			return "", fmt.Errorf("storing attachment %s: %w", path, err)
		}
	}
	metadata := Metadata{
		Name:         filepath.Base(path),
		Length:       int64(len(data)),
		Compression:  compression,
		StoredLength: int64(len(stored)),
		Encrypted:    s.key != nil,
	}
	encoded, err := codec.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("encoding attachment metadata: %w", err)
	}

	// The blob goes first: metadata present means the blob is
	// complete.
	if err := writeAtomic(s.blobPath(transferID), stored); err != nil {
		return "", fmt.Errorf("storing attachment %s: %w", path, err)
	}
	if err := writeAtomic(s.metadataPath(transferID), encoded); err != nil {
		return "", fmt.Errorf("storing attachment %s: %w", path, err)
	}
	s.logger.Debug("attachment stored",
		"transfer_id", transferID,
		"name", metadata.Name,
		"length", metadata.Length,
		"stored_length", metadata.StoredLength,
		"compression", compression.String(),
		"encrypted", metadata.Encrypted,
	)
	return transferID, nil
}

// GetFile implements message.FileProvider. The content is restored
// under its stored name inside a per-id cache directory and the path
// is returned. An id the store does not hold, including one that is
// not a content hash at all, yields an empty path and a nil error.
func (s *Store) GetFile(transferID string) (string, error) {
	metadata, ok, err := s.Metadata(transferID)
	if err != nil || !ok {
		return "", err
	}

	cached := s.cachePath(transferID, metadata.Name)
	if info, err := os.Stat(cached); err == nil && info.Size() == metadata.Length {
		return cached, nil
	}

	stored, err := os.ReadFile(s.blobPath(transferID))
	if err != nil {
		return "", fmt.Errorf("restoring attachment %s: %w", transferID, err)
	}
	if metadata.Encrypted {
		if s.key == nil {
			return "", fmt.Errorf("restoring attachment %s: blob is encrypted and the store has no key", transferID)
		}
		if stored, err = openBlob(stored, s.key, transferID); err != nil {
			return "", fmt.Errorf("restoring attachment %s: %w", transferID, err)
		}
	}
	data, err := decompress(stored, metadata.Compression, metadata.Length)
	if err != nil {
		return "", fmt.Errorf("restoring attachment %s: %w", transferID, err)
	}
	if TransferID(data) != transferID {
		return "", fmt.Errorf("restoring attachment %s: content hash mismatch", transferID)
	}
	if err := writeAtomic(cached, data); err != nil {
		return "", fmt.Errorf("restoring attachment %s: %w", transferID, err)
	}
	s.logger.Debug("attachment restored", "transfer_id", transferID, "path", cached)
	return cached, nil
}

// Metadata returns the sidecar for transferID. The boolean is false
// when the store does not hold the id.
func (s *Store) Metadata(transferID string) (Metadata, bool, error) {
	if !validTransferID(transferID) {
		return Metadata{}, false, nil
	}
	encoded, err := os.ReadFile(s.metadataPath(transferID))
	if errors.Is(err, fs.ErrNotExist) {
		return Metadata{}, false, nil
	}
	if err != nil {
		return Metadata{}, false, fmt.Errorf("reading attachment metadata: %w", err)
	}
	var metadata Metadata
	if err := codec.Unmarshal(encoded, &metadata); err != nil {
		return Metadata{}, false, fmt.Errorf("decoding attachment metadata %s: %w", transferID, err)
	}
	return metadata, true, nil
}

// Blobs and sidecars are sharded by the first two hex digits.
func (s *Store) blobPath(transferID string) string {
	return filepath.Join(s.directory, "blobs", transferID[:2], transferID)
}

func (s *Store) metadataPath(transferID string) string {
	return filepath.Join(s.directory, "meta", transferID[:2], transferID+".cbor")
}

func (s *Store) cachePath(transferID, name string) string {
	name = filepath.Base(name)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		name = transferID
	}
	return filepath.Join(s.cacheDirectory, transferID, name)
}

// writeAtomic writes data through a temporary file in the destination
// directory and renames it into place.
func writeAtomic(path string, data []byte) error {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", directory, err)
	}
	temporary, err := os.CreateTemp(directory, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	temporaryPath := temporary.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(temporaryPath)
		}
	}()

	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	success = true
	return nil
}
