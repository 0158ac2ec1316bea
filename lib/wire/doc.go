// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire provides the primitive big-endian encoders and decoders
// shared by the model and message codecs.
//
// Every multi-byte integer and float is big-endian. Strings are an
// int32 byte length followed by UTF-8 bytes; a zero length stands for
// both the empty string and an absent string, so the two cannot be told
// apart after a round trip. Arrays are an int32 element count followed
// by fixed-width elements (or length-prefixed strings), again with zero
// meaning absent. A bitset is sparse: the number of set bits followed by
// the index of each set bit as an int32, at most [MaxBitIndex].
//
// [Writer] and [Reader] use sticky errors in the style of bufio: after
// the first failure every further call is a no-op, and the error is
// reported by Err. Callers write or read a whole structure and check
// once at the end:
//
//	w := wire.NewWriter(&buffer)
//	w.String(uuid)
//	w.Int16(version)
//	if err := w.Err(); err != nil {
//	    return err
//	}
//
// Readers never trust a length prefix for allocation. Byte payloads are
// copied incrementally and element slices grow as elements arrive, so a
// corrupt length fails with [ErrTruncated] at the end of input instead
// of allocating gigabytes up front. Bit indices are range checked for
// the same reason.
package wire
