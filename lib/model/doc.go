// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package model declares the schema side of the message protocol: the
// closed set of wire-level property types, the descriptive content
// types, and the definitions that make up a model.
//
// A model ([Object]) is a named, versioned collection of keyed
// properties identified by a uuid that stays the same across all of its
// versions. The pair (uuid, version) is the wire identity of a
// decodable shape. Each [Property] carries a key that is the only
// identity used on the wire: renaming a property is compatible,
// reusing a retired key for a different type is not.
//
// An Object is itself a property of type [TypeObject] with no parent
// and no key, so both satisfy [Definition] and the same lookups apply
// at every nesting level. References between models are plain
// pointers; a model may reference itself.
//
// Definitions are built once during startup and read concurrently
// afterwards. The Add methods are not safe for concurrent use and must
// finish before a model is shared.
//
//	address := model.NewObject("adr.model", "address", 1)
//	address.AddProperty("street", 1, model.TypeString)
//	user := model.NewObject("first-model", "user", 1, model.WithTitle("User"))
//	user.AddSingleReference("address", 4, address)
//
// Duplicate names or keys are rejected with [ErrDefinitionConflict];
// this is the only validation gate and it runs while the model is
// built, never while decoding.
package model
