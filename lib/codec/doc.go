// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the shared CBOR configuration for modelwire's
// auxiliary formats: attachment metadata sidecars and the CBOR form of
// model collection descriptors. Messages themselves use the binary
// layout of package message, never CBOR.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// same descriptor always produces identical bytes, so descriptor files
// can be compared and hashed.
//
//	data, err := codec.Marshal(descriptor)
//	err = codec.Unmarshal(data, &descriptor)
//
// # Struct Tag Rules
//
//   - `cbor` tag: the type is only ever serialized as CBOR, such as the
//     attachment store's on-disk metadata.
//   - `json` tag: the type is serialized as JSON and CBOR.
//     fxamacker/cbor v2 reads `json` tags when `cbor` tags are absent,
//     so one tag controls naming and omitempty for both. Descriptor
//     types use this.
//
// Never put both `cbor` and `json` tags on the same field.
package codec
