// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the modelwire binary.
//
// [GitCommit], [GitDirty], [BuildTime], and [Version] are injected with
// -ldflags -X:
//
//	go build -ldflags "-X github.com/modelwire/modelwire/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Without injection, [Info] falls back to the module version and VCS
// settings the Go toolchain embeds in the binary.
package version
