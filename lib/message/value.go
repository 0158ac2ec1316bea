// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/modelwire/modelwire/lib/model"
)

// Value is the content of one populated property. The set of variants
// is closed: each corresponds to exactly one model.PropertyType.
type Value interface {
	// Type returns the property type this variant encodes as.
	Type() model.PropertyType
	isValue()
}

type (
	Bool        bool
	Byte        int8
	Int         int32
	Long        int64
	Float       float32
	Double      float64
	String      string
	ByteArray   []byte
	IntArray    []int32
	LongArray   []int64
	FloatArray  []float32
	DoubleArray []float64
	StringArray []string
)

// BitSet wraps a sparse set of non-negative bit indices.
type BitSet struct {
	*bitset.BitSet
}

// Enum is the ordinal of a declared enum value.
type Enum int32

// Reference is the value of a single reference property.
type Reference struct {
	Record Record
}

// References is the value of a multi reference property, in order.
type References []Record

func (Bool) Type() model.PropertyType        { return model.TypeBoolean }
func (Byte) Type() model.PropertyType        { return model.TypeByte }
func (Int) Type() model.PropertyType         { return model.TypeInt }
func (Long) Type() model.PropertyType        { return model.TypeLong }
func (Float) Type() model.PropertyType       { return model.TypeFloat }
func (Double) Type() model.PropertyType      { return model.TypeDouble }
func (String) Type() model.PropertyType      { return model.TypeString }
func (BitSet) Type() model.PropertyType      { return model.TypeBitSet }
func (ByteArray) Type() model.PropertyType   { return model.TypeByteArray }
func (IntArray) Type() model.PropertyType    { return model.TypeIntArray }
func (LongArray) Type() model.PropertyType   { return model.TypeLongArray }
func (FloatArray) Type() model.PropertyType  { return model.TypeFloatArray }
func (DoubleArray) Type() model.PropertyType { return model.TypeDoubleArray }
func (StringArray) Type() model.PropertyType { return model.TypeStringArray }
func (File) Type() model.PropertyType        { return model.TypeFile }
func (Enum) Type() model.PropertyType        { return model.TypeEnum }
func (Reference) Type() model.PropertyType   { return model.TypeObjectSingleReference }
func (References) Type() model.PropertyType  { return model.TypeObjectMultiReference }

func (Bool) isValue()        {}
func (Byte) isValue()        {}
func (Int) isValue()         {}
func (Long) isValue()        {}
func (Float) isValue()       {}
func (Double) isValue()      {}
func (String) isValue()      {}
func (BitSet) isValue()      {}
func (ByteArray) isValue()   {}
func (IntArray) isValue()    {}
func (LongArray) isValue()   {}
func (FloatArray) isValue()  {}
func (DoubleArray) isValue() {}
func (StringArray) isValue() {}
func (File) isValue()        {}
func (Enum) isValue()        {}
func (Reference) isValue()   {}
func (References) isValue()  {}

// absent reports whether value stands for "no value": nil, or a
// variant wrapping a nil payload.
func absent(value Value) bool {
	switch v := value.(type) {
	case nil:
		return true
	case BitSet:
		return v.BitSet == nil
	case Reference:
		return v.Record == nil
	case ByteArray:
		return v == nil
	case IntArray:
		return v == nil
	case LongArray:
		return v == nil
	case FloatArray:
		return v == nil
	case DoubleArray:
		return v == nil
	case StringArray:
		return v == nil
	case References:
		return v == nil
	}
	return false
}
