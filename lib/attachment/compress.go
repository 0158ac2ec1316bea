// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package attachment

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies how a stored blob is compressed. The values
// are recorded in metadata sidecars and must not be renumbered.
type Compression uint8

const (
	// CompressionAuto probes the content and picks zstd for text-like
	// data, lz4 for data that compresses modestly, and none otherwise.
	// It is only meaningful in StoreOptions; blobs are never tagged
	// with it.
	CompressionAuto Compression = 0

	// CompressionNone stores content as is.
	CompressionNone Compression = 1

	// CompressionLZ4 stores content as a single lz4 block.
	CompressionLZ4 Compression = 2

	// CompressionZstd stores content as a zstd frame at the default
	// level.
	CompressionZstd Compression = 3
)

func (c Compression) String() string {
	switch c {
	case CompressionAuto:
		return "auto"
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name as printed by String.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "auto":
		return CompressionAuto, nil
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

// errIncompressible means the compressed form is not smaller than the
// input; the caller stores the content uncompressed instead.
var errIncompressible = errors.New("content is incompressible")

// zstd encoders and decoders are safe for concurrent use and costly to
// build, so one of each serves the package.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("attachment: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("attachment: zstd decoder initialization failed: " + err.Error())
	}
}

// selectCompression probes data with zstd. A ratio of at least 1.5
// selects zstd, at least 1.1 selects lz4 (faster to decode at a
// similar size), anything less stores the data raw.
func selectCompression(data []byte) Compression {
	if len(data) == 0 {
		return CompressionNone
	}
	compressed := zstdEncoder.EncodeAll(data, nil)
	ratio := float64(len(data)) / float64(len(compressed))
	switch {
	case ratio >= 1.5:
		return CompressionZstd
	case ratio >= 1.1:
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// compress returns data compressed with the requested algorithm and the
// algorithm actually used. Auto is resolved first, and content that
// does not shrink falls back to CompressionNone.
func compress(data []byte, requested Compression) ([]byte, Compression, error) {
	if requested == CompressionAuto {
		requested = selectCompression(data)
	}
	var (
		compressed []byte
		err        error
	)
	switch requested {
	case CompressionNone:
		return data, CompressionNone, nil
	case CompressionLZ4:
		compressed, err = compressLZ4(data)
	case CompressionZstd:
		compressed, err = compressZstd(data)
	default:
		return nil, 0, fmt.Errorf("unsupported compression %s", requested)
	}
	if errors.Is(err, errIncompressible) {
		return data, CompressionNone, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return compressed, requested, nil
}

// decompress reverses compress. The result must be exactly length
// bytes long.
func decompress(stored []byte, compression Compression, length int64) ([]byte, error) {
	switch compression {
	case CompressionNone:
		if int64(len(stored)) != length {
			return nil, fmt.Errorf("stored blob has %d bytes, expected %d", len(stored), length)
		}
		return stored, nil
	case CompressionLZ4:
		return decompressLZ4(stored, length)
	case CompressionZstd:
		return decompressZstd(stored, length)
	default:
		return nil, fmt.Errorf("unsupported compression %s", compression)
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	destination := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	// CompressBlock reports 0 for incompressible input.
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func decompressLZ4(compressed []byte, length int64) ([]byte, error) {
	destination := make([]byte, length)
	read, err := lz4.UncompressBlock(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if int64(read) != length {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, length)
	}
	return destination, nil
}

func compressZstd(data []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}

func decompressZstd(compressed []byte, length int64) ([]byte, error) {
	result, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, length))
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if int64(len(result)) != length {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), length)
	}
	return result, nil
}
