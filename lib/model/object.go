// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"slices"
)

// Object is a model: a named, versioned, uuid-identified collection of
// property definitions. The embedded Property describes the model
// itself as a property of type TypeObject.
type Object struct {
	Property

	uuid    string
	version int16

	properties []*Property
	byKey      map[int16]*Property
	byName     map[string]*Property
}

// NewObject returns an empty model. The uuid must stay identical across
// every version of the same logical type.
func NewObject(uuid, name string, version int16, options ...Option) *Object {
	object := &Object{
		Property: Property{
			name:         name,
			propertyType: TypeObject,
			contentType:  ContentGeneric,
		},
		uuid:    uuid,
		version: version,
		byKey:   make(map[int16]*Property),
		byName:  make(map[string]*Property),
	}
	object.apply(options)
	object.contentType = ContentGeneric
	return object
}

// UUID returns the identity shared by all versions of this model.
func (o *Object) UUID() string { return o.uuid }

// Version returns the model version.
func (o *Object) Version() int16 { return o.version }

// QualifiedName returns "<name>-<uuid>".
func (o *Object) QualifiedName() string {
	return o.name + "-" + o.uuid
}

// Properties returns the property definitions in declaration order.
func (o *Object) Properties() []*Property {
	return slices.Clone(o.properties)
}

// Len returns the number of declared properties.
func (o *Object) Len() int { return len(o.properties) }

// PropertyByKey returns the property declared with key.
func (o *Object) PropertyByKey(key int16) (*Property, bool) {
	p, ok := o.byKey[key]
	return p, ok
}

// PropertyByName returns the property declared with name.
func (o *Object) PropertyByName(name string) (*Property, bool) {
	p, ok := o.byName[name]
	return p, ok
}

// AddProperty declares a scalar, array, string, or file property.
// Reference and enum properties have their own constructors because
// they need extra information.
func (o *Object) AddProperty(name string, key int16, propertyType PropertyType, options ...Option) (*Property, error) {
	switch {
	case !propertyType.Valid():
		return nil, fmt.Errorf("%w: %s.%s has type %s", ErrInvalidDefinition, o.name, name, propertyType)
	case propertyType == TypeObject:
		return nil, fmt.Errorf("%w: %s.%s: nested objects must be declared as references", ErrInvalidDefinition, o.name, name)
	case propertyType.IsReference():
		return nil, fmt.Errorf("%w: %s.%s: use AddSingleReference or AddMultiReference", ErrInvalidDefinition, o.name, name)
	case propertyType == TypeEnum:
		return nil, fmt.Errorf("%w: %s.%s: use AddEnumProperty", ErrInvalidDefinition, o.name, name)
	}
	property := &Property{
		parent:       o,
		name:         name,
		key:          key,
		propertyType: propertyType,
		contentType:  ContentGeneric,
	}
	property.apply(options)
	return property, o.add(property)
}

// AddSingleReference declares a property holding one nested object of
// the referenced model. The referenced model may be o itself.
func (o *Object) AddSingleReference(name string, key int16, referenced *Object, options ...Option) (*Property, error) {
	return o.addReference(name, key, referenced, TypeObjectSingleReference, options)
}

// AddMultiReference declares a property holding an ordered list of
// nested objects of the referenced model.
func (o *Object) AddMultiReference(name string, key int16, referenced *Object, options ...Option) (*Property, error) {
	return o.addReference(name, key, referenced, TypeObjectMultiReference, options)
}

func (o *Object) addReference(name string, key int16, referenced *Object, propertyType PropertyType, options []Option) (*Property, error) {
	if referenced == nil {
		return nil, fmt.Errorf("%w: %s.%s: reference without a referenced model", ErrInvalidDefinition, o.name, name)
	}
	property := &Property{
		parent:       o,
		name:         name,
		key:          key,
		propertyType: propertyType,
		referenced:   referenced,
	}
	property.apply(options)
	property.contentType = ContentGeneric
	return property, o.add(property)
}

// AddEnumProperty declares an enum property. Values are stored by
// ordinal, so new values may only be appended in later versions.
func (o *Object) AddEnumProperty(name string, key int16, values []string, options ...Option) (*Property, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s.%s: enum without values", ErrInvalidDefinition, o.name, name)
	}
	seen := make(map[string]bool, len(values))
	for _, value := range values {
		if value == "" || seen[value] {
			return nil, fmt.Errorf("%w: %s.%s: empty or duplicate enum value %q", ErrInvalidDefinition, o.name, name, value)
		}
		seen[value] = true
	}
	property := &Property{
		parent:       o,
		name:         name,
		key:          key,
		propertyType: TypeEnum,
		contentType:  ContentGeneric,
		enumValues:   slices.Clone(values),
	}
	property.apply(options)
	return property, o.add(property)
}

func (o *Object) add(property *Property) error {
	if property.name == "" {
		return fmt.Errorf("%w: %s: property with key %d has no name", ErrInvalidDefinition, o.name, property.key)
	}
	if !property.contentType.Valid() {
		return fmt.Errorf("%w: %s.%s has content type %s", ErrInvalidDefinition, o.name, property.name, property.contentType)
	}
	if existing, ok := o.byName[property.name]; ok {
		return fmt.Errorf("%w: %s already declares %s", ErrDefinitionConflict, o.name, existing)
	}
	if existing, ok := o.byKey[property.key]; ok {
		return fmt.Errorf("%w: %s already declares key %d as %s", ErrDefinitionConflict, o.name, property.key, existing.name)
	}
	o.properties = append(o.properties, property)
	o.byKey[property.key] = property
	o.byName[property.name] = property
	return nil
}

// ReferencedObjects returns every model reachable from o through
// reference properties, excluding o itself, in first-seen order.
func (o *Object) ReferencedObjects() []*Object {
	seen := map[*Object]bool{o: true}
	var result []*Object
	var walk func(*Object)
	walk = func(current *Object) {
		for _, property := range current.properties {
			referenced := property.referenced
			if referenced == nil || seen[referenced] {
				continue
			}
			seen[referenced] = true
			result = append(result, referenced)
			walk(referenced)
		}
	}
	walk(o)
	return result
}

func (o *Object) String() string {
	return fmt.Sprintf("%s [%s] v%d", o.name, o.uuid, o.version)
}
