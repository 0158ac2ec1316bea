// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package modeldef reads and writes model collection descriptors: the
// file form of a [registry.Collection] that schema authors maintain and
// consumers load at startup.
//
// Descriptors are authored as YAML or as JSONC (JSON extended with
// comments and trailing commas) and can also be exchanged as CBOR. The
// typical flow:
//
//  1. ReadFile or Parse: bytes → Descriptor
//  2. Validate: structural checks, reported as a list of issues
//  3. Build: Descriptor → registry.Collection
//
// Load does all three. Describe is the inverse of Build, and Encode
// writes a Descriptor in any of the supported formats.
//
// Property types and content types are written by their canonical
// names (STRING, OBJECT_MULTI_REFERENCE, TIMESTAMP). Reference targets
// and service method models name another model of the same descriptor,
// by model name or by uuid; forward and self references are allowed.
package modeldef
