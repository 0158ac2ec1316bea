// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package model

import "fmt"

// PropertyType is the wire-level kind of a property value. The numeric
// values are protocol constants written as the first byte of every
// encoded property: the mapping is append-only and must never change.
type PropertyType uint8

const (
	TypeObject                PropertyType = 1
	TypeObjectSingleReference PropertyType = 2
	TypeObjectMultiReference  PropertyType = 3
	TypeBoolean               PropertyType = 4
	TypeByte                  PropertyType = 5
	TypeInt                   PropertyType = 6
	TypeLong                  PropertyType = 7
	TypeFloat                 PropertyType = 8
	TypeDouble                PropertyType = 9
	TypeString                PropertyType = 10
	TypeBitSet                PropertyType = 11
	TypeByteArray             PropertyType = 12
	TypeIntArray              PropertyType = 13
	TypeLongArray             PropertyType = 14
	TypeFloatArray            PropertyType = 15
	TypeDoubleArray           PropertyType = 16
	TypeStringArray           PropertyType = 17
	TypeFile                  PropertyType = 18
	TypeEnum                  PropertyType = 19
)

var propertyTypeNames = [...]string{
	TypeObject:                "OBJECT",
	TypeObjectSingleReference: "OBJECT_SINGLE_REFERENCE",
	TypeObjectMultiReference:  "OBJECT_MULTI_REFERENCE",
	TypeBoolean:               "BOOLEAN",
	TypeByte:                  "BYTE",
	TypeInt:                   "INT",
	TypeLong:                  "LONG",
	TypeFloat:                 "FLOAT",
	TypeDouble:                "DOUBLE",
	TypeString:                "STRING",
	TypeBitSet:                "BITSET",
	TypeByteArray:             "BYTE_ARRAY",
	TypeIntArray:              "INT_ARRAY",
	TypeLongArray:             "LONG_ARRAY",
	TypeFloatArray:            "FLOAT_ARRAY",
	TypeDoubleArray:           "DOUBLE_ARRAY",
	TypeStringArray:           "STRING_ARRAY",
	TypeFile:                  "FILE",
	TypeEnum:                  "ENUM",
}

// PropertyTypes lists every defined type in id order.
func PropertyTypes() []PropertyType {
	types := make([]PropertyType, 0, len(propertyTypeNames)-1)
	for id := TypeObject; id <= TypeEnum; id++ {
		types = append(types, id)
	}
	return types
}

// Valid reports whether t is a defined type id.
func (t PropertyType) Valid() bool {
	return t >= TypeObject && t <= TypeEnum
}

// ID returns the wire id of t.
func (t PropertyType) ID() byte {
	return byte(t)
}

// String returns the canonical upper-case name, or "unknown(N)".
func (t PropertyType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
	return propertyTypeNames[t]
}

// IsReference reports whether values of t are nested message objects.
func (t PropertyType) IsReference() bool {
	return t == TypeObjectSingleReference || t == TypeObjectMultiReference
}

// IsArray reports whether t is encoded as a counted sequence, where a
// zero count means absent.
func (t PropertyType) IsArray() bool {
	switch t {
	case TypeBitSet, TypeByteArray, TypeIntArray, TypeLongArray,
		TypeFloatArray, TypeDoubleArray, TypeStringArray:
		return true
	}
	return false
}

// MarshalText implements encoding.TextMarshaler so descriptors carry
// type names rather than ids.
func (t PropertyType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("cannot marshal property type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *PropertyType) UnmarshalText(text []byte) error {
	parsed, err := ParsePropertyType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// PropertyTypeByID maps a wire id to its type.
func PropertyTypeByID(id byte) (PropertyType, bool) {
	t := PropertyType(id)
	return t, t.Valid()
}

// ParsePropertyType parses a canonical type name such as "STRING" or
// "OBJECT_MULTI_REFERENCE".
func ParsePropertyType(name string) (PropertyType, error) {
	for id := TypeObject; id <= TypeEnum; id++ {
		if propertyTypeNames[id] == name {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown property type %q", name)
}

// ContentType is a semantic tag on a property. It never changes the
// wire shape; it tells tooling how to present or index a value.
type ContentType uint8

const (
	ContentGeneric       ContentType = 1
	ContentTimestamp     ContentType = 2
	ContentDateTime      ContentType = 3
	ContentDate          ContentType = 4
	ContentTime          ContentType = 5
	ContentGeoLatitude   ContentType = 6
	ContentGeoLongitude  ContentType = 7
	ContentGeoAltitude   ContentType = 8
	ContentGeoLongHash   ContentType = 9
	ContentGeoStringHash ContentType = 10
)

var contentTypeNames = [...]string{
	ContentGeneric:       "GENERIC",
	ContentTimestamp:     "TIMESTAMP",
	ContentDateTime:      "DATE_TIME",
	ContentDate:          "DATE",
	ContentTime:          "TIME",
	ContentGeoLatitude:   "GEO_LATITUDE",
	ContentGeoLongitude:  "GEO_LONGITUDE",
	ContentGeoAltitude:   "GEO_ALTITUDE",
	ContentGeoLongHash:   "GEO_LONG_HASH",
	ContentGeoStringHash: "GEO_STRING_HASH",
}

// Valid reports whether c is a defined content type id.
func (c ContentType) Valid() bool {
	return c >= ContentGeneric && c <= ContentGeoStringHash
}

// String returns the canonical upper-case name, or "unknown(N)".
func (c ContentType) String() string {
	if !c.Valid() {
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
	return contentTypeNames[c]
}

// MarshalText implements encoding.TextMarshaler.
func (c ContentType) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("cannot marshal content type %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ContentType) UnmarshalText(text []byte) error {
	parsed, err := ParseContentType(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseContentType parses a canonical content type name. The empty
// string parses as ContentGeneric.
func ParseContentType(name string) (ContentType, error) {
	if name == "" {
		return ContentGeneric, nil
	}
	for id := ContentGeneric; id <= ContentGeoStringHash; id++ {
		if contentTypeNames[id] == name {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown content type %q", name)
}
