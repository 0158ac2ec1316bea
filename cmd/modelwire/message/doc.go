// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package message implements the "modelwire message" command group:
// read the header of an encoded message, or decode it against the
// models of a descriptor or catalog.
package message
