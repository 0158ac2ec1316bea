// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package attachment implements the side channel that carries FILE
// property content next to encoded messages.
//
// A message never contains file bytes. While encoding, each
// transferable file is handed to a [message.FileSink], which takes
// custody of the content and returns a transfer id; the id is what
// crosses the wire. While decoding, a [message.FileProvider] maps the
// id back to a local path.
//
// Two implementations are provided:
//
//   - [Loop] is an in-process broker for a sender and receiver sharing a
//     file system. Ids are sequential and paths are handed back as is.
//   - [Store] is a content-addressed directory. The transfer id is the
//     keyed BLAKE3 hash of the content, blobs are compressed with zstd or
//     lz4 depending on what the content looks like, and a CBOR sidecar
//     records the original name and length so a receiver can restore the
//     file under its own name.
//
// Both are safe for concurrent use.
package attachment
