// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package attachment

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// contentDomainKey keys the BLAKE3 hash that names stored attachments:
// the ASCII domain name, zero-padded to 32 bytes. Changing it renames
// every blob.
var contentDomainKey = [32]byte{
	'm', 'o', 'd', 'e', 'l', 'w', 'i', 'r', 'e', '.', 'a', 't', 't', 'a', 'c', 'h',
	'm', 'e', 'n', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// TransferID returns the id a Store assigns to content: the hex keyed
// BLAKE3 hash of the bytes.
func TransferID(data []byte) string {
	// NewKeyed only fails for a key that is not 32 bytes long.
	hasher, err := blake3.NewKeyed(contentDomainKey[:])
	if err != nil {
		panic("attachment: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// validTransferID reports whether id could have been produced by
// TransferID. Anything else is never looked up on disk.
func validTransferID(id string) bool {
	if len(id) != 64 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}
