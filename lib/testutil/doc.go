// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for modelwire packages.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so that concurrency tests never hang: a goroutine that fails
// to report back fails the test after the timeout instead.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation, such as model uuids or attachment names that must not
// collide between subtests.
//
// [WriteFile] creates a file with the given content inside a test
// directory and returns its path.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no modelwire-internal dependencies.
package testutil
