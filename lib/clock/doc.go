// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable source of the current time.
//
// Components that record timestamps take a Clock instead of calling
// time.Now, so tests can pin the time:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	cat, err := catalog.Open(catalog.Options{Path: path, Clock: c})
//	c.Advance(time.Hour)
package clock
