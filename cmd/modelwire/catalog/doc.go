// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package catalog implements the "modelwire catalog" commands, which
// keep model definitions in a local SQLite catalog so messages can be
// decoded long after the descriptor that produced them has changed.
package catalog
