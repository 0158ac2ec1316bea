// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry resolves wire identities to models and typed
// decoders.
//
// A [Registry] maps (uuid, version) to a [model.Object] and a model
// uuid to a [message.Decoder]. It is populated at startup, usually from
// one or more [Collection] values, and read concurrently afterwards.
// Writers may keep adding models at runtime (a schema upgrade); readers
// never block each other. Entries are never removed.
//
// For every uuid the registry tracks the latest version: a model
// replaces the latest entry only when its version is strictly higher.
// [Registry.Model] is latest-only, so a message written against an
// older version resolves only through [Registry.ModelVersions].
//
// A [Collection] is the unit a protocol publisher ships: a named,
// namespaced, versioned bundle of models, the decoders for them, and
// service schemas describing request/response pairs. Service schemas
// are metadata; nothing in this package dispatches calls.
package registry
