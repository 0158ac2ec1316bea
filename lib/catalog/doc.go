// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package catalog persists model definitions in SQLite so that a
// process can rebuild its registry, with every version it has ever
// seen, after a restart.
//
// Each row holds one (uuid, version) and the model definition in the
// schema binary encoding (see model.Object.MarshalBinary), which
// carries the referenced models along with it. A stored version is
// immutable: putting the same (uuid, version) again with a different
// definition fails with model.ErrDefinitionConflict, while putting an
// identical definition is a no-op.
//
// The database runs in WAL mode with a small connection pool, so
// readers never wait for the writer. Connections are taken per call;
// a [Catalog] is safe for concurrent use.
package catalog
