// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package attachment

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the length of a store encryption key.
const KeySize = 32

// Sealed blob layout:
//
//	[version: 1 byte] [nonce: 24 bytes] [ciphertext+tag]
//
// The version byte and the transfer id are authenticated as additional
// data, so a blob copied under another id fails to open.
const sealedBlobVersion byte = 0x01

const sealedBlobOverhead = 1 + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

var hkdfInfoBlob = []byte("modelwire.attachment.blob.v1")

// blobKey derives the key for one blob from the store key, so no two
// blobs share a key even though nonces are random.
func blobKey(storeKey []byte, transferID string) ([]byte, error) {
	info := make([]byte, 0, len(hkdfInfoBlob)+len(transferID))
	info = append(info, hkdfInfoBlob...)
	info = append(info, transferID...)
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, storeKey, nil, info), key); err != nil {
		return nil, fmt.Errorf("deriving blob key: %w", err)
	}
	return key, nil
}

func sealBlob(plaintext, storeKey []byte, transferID string) ([]byte, error) {
	key, err := blobKey(storeKey, transferID)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}

	var nonce [chacha20poly1305.NonceSizeX]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	output := make([]byte, 1+len(nonce), sealedBlobOverhead+len(plaintext))
	output[0] = sealedBlobVersion
	copy(output[1:], nonce[:])
	return aead.Seal(output, nonce[:], plaintext, additionalData(sealedBlobVersion, transferID)), nil
}

func openBlob(sealed, storeKey []byte, transferID string) ([]byte, error) {
	if len(sealed) < sealedBlobOverhead {
		return nil, fmt.Errorf("sealed blob is %d bytes, minimum is %d", len(sealed), sealedBlobOverhead)
	}
	if version := sealed[0]; version != sealedBlobVersion {
		return nil, fmt.Errorf("sealed blob version %d is not supported", version)
	}
	key, err := blobKey(storeKey, transferID)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}
	nonce := sealed[1 : 1+chacha20poly1305.NonceSizeX]
	ciphertext := sealed[1+chacha20poly1305.NonceSizeX:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, additionalData(sealed[0], transferID))
	if err != nil {
		return nil, fmt.Errorf("opening sealed blob (wrong key or tampered data): %w", err)
	}
	return plaintext, nil
}

func additionalData(version byte, transferID string) []byte {
	data := make([]byte, 0, 1+len(transferID))
	data = append(data, version)
	return append(data, transferID...)
}
