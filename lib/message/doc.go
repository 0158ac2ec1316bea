// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package message holds runtime instances of models and their binary
// encoding.
//
// An [Object] is created against exactly one [model.Object] and stores
// a sparse, ordered set of populated properties. Each populated slot
// carries a [Value], a closed sum type with one variant per
// [model.PropertyType]. Setters validate the property name and the
// value variant against the model; getters return the zero value of
// the requested kind for absent or differently typed slots.
//
// Wire layout (big-endian):
//
//	Object   := uuid:String version:int16 count:int16 Property*
//	Property := typeId:byte key:int16 Payload
//
// Strings, arrays, bitsets and multi references are prefixed with an
// int32 length or count. Zero means absent: an empty string or empty
// array does not survive a round trip as a present slot. FILE payloads
// carry only metadata plus a transfer id issued by a [FileSink]; the
// receiving side maps the id back to a local path with a
// [FileProvider].
//
// Nested references can be materialized as typed records through a
// [Decoder]. [TypedDecoder] adapts any wrapper type around *Object into
// a Decoder, and [Object.Remap] projects an already decoded generic
// tree into typed records without rereading the bytes.
package message
