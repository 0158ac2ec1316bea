// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package model

import "errors"

// Error kinds shared by the schema, codec, and registry packages.
// Callers match them with errors.Is; the returned errors wrap them with
// the uuid, property name, or key involved.
var (
	// ErrDefinitionConflict reports a duplicate property name or key
	// while building a model.
	ErrDefinitionConflict = errors.New("property definition conflict")

	// ErrInvalidDefinition reports a structurally invalid definition,
	// such as a reference property without a referenced model.
	ErrInvalidDefinition = errors.New("invalid property definition")

	// ErrUnknownProperty reports a property name or key that the model
	// does not declare.
	ErrUnknownProperty = errors.New("unknown property")

	// ErrModelMismatch reports a decoded uuid that differs from the
	// model the caller expected.
	ErrModelMismatch = errors.New("model mismatch")

	// ErrTypeMismatch reports a value or decoded type id that disagrees
	// with the declared property type.
	ErrTypeMismatch = errors.New("property type mismatch")

	// ErrUnresolvedModel reports a (uuid, version) pair with no
	// registered model.
	ErrUnresolvedModel = errors.New("unresolved model")
)
