// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"slices"
)

// Definition is the contract shared by a property and a model: a model
// is a property of type TypeObject with no parent and key zero.
type Definition interface {
	Name() string
	Key() int16
	Type() PropertyType
	ContentType() ContentType
	SpecificType() string
	Title() string
	QualifiedName() string
}

// Property is one named, keyed slot declared on a model.
type Property struct {
	parent       *Object
	name         string
	key          int16
	propertyType PropertyType
	contentType  ContentType
	specificType string
	title        string

	// referenced is set iff propertyType is a reference type.
	referenced *Object

	// enumValues is set iff propertyType is TypeEnum. The ordinal of a
	// value is its index.
	enumValues []string
}

// Option sets an optional attribute on a property or model definition.
type Option func(*Property)

// WithTitle sets the display title.
func WithTitle(title string) Option {
	return func(p *Property) { p.title = title }
}

// WithSpecificType sets the free-form specific type tag, typically the
// name of a richer type in generated code.
func WithSpecificType(specificType string) Option {
	return func(p *Property) { p.specificType = specificType }
}

// WithContentType sets the semantic content type. Reference properties
// ignore it and stay ContentGeneric.
func WithContentType(contentType ContentType) Option {
	return func(p *Property) { p.contentType = contentType }
}

func (p *Property) apply(options []Option) {
	for _, option := range options {
		option(p)
	}
}

// Parent returns the model that declares p, or nil for a top-level
// model.
func (p *Property) Parent() *Object { return p.parent }

// Name returns the property name, unique within its model.
func (p *Property) Name() string { return p.name }

// Key returns the wire key, unique within its model.
func (p *Property) Key() int16 { return p.key }

// Type returns the wire-level type.
func (p *Property) Type() PropertyType { return p.propertyType }

// ContentType returns the semantic content tag.
func (p *Property) ContentType() ContentType { return p.contentType }

// SpecificType returns the specific type tag, or "".
func (p *Property) SpecificType() string { return p.specificType }

// Title returns the display title, or "".
func (p *Property) Title() string { return p.title }

// QualifiedName returns "<model name>-<uuid>/<property name>". For a
// property without a parent it is the bare name.
func (p *Property) QualifiedName() string {
	if p.parent == nil {
		return p.name
	}
	return p.parent.QualifiedName() + "/" + p.name
}

// IsReference reports whether p holds nested message objects.
func (p *Property) IsReference() bool { return p.propertyType.IsReference() }

// IsMultiReference reports whether p holds a list of nested objects.
func (p *Property) IsMultiReference() bool { return p.propertyType == TypeObjectMultiReference }

// IsEnum reports whether p is an enum property.
func (p *Property) IsEnum() bool { return p.propertyType == TypeEnum }

// ReferencedObject returns the model of the nested objects for a
// reference property, or nil.
func (p *Property) ReferencedObject() *Object { return p.referenced }

// EnumValues returns a copy of the declared enum values in ordinal
// order, or nil for non-enum properties.
func (p *Property) EnumValues() []string { return slices.Clone(p.enumValues) }

// EnumOrdinal returns the ordinal of value in p's enum values.
func (p *Property) EnumOrdinal(value string) (int, bool) {
	index := slices.Index(p.enumValues, value)
	return index, index >= 0
}

// EnumValue returns the enum value with the given ordinal.
func (p *Property) EnumValue(ordinal int) (string, bool) {
	if ordinal < 0 || ordinal >= len(p.enumValues) {
		return "", false
	}
	return p.enumValues[ordinal], true
}

func (p *Property) String() string {
	switch {
	case p.IsReference():
		return fmt.Sprintf("%s(%d) %s -> %s", p.name, p.key, p.propertyType, p.referenced.Name())
	case p.contentType != ContentGeneric:
		return fmt.Sprintf("%s(%d) %s %s", p.name, p.key, p.propertyType, p.contentType)
	default:
		return fmt.Sprintf("%s(%d) %s", p.name, p.key, p.propertyType)
	}
}
