// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"fmt"
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/modelwire/modelwire/lib/model"
)

// Record is anything backed by a message object: the generic *Object
// itself, or a typed wrapper produced by a Decoder.
type Record interface {
	MessageObject() *Object
}

// Property is one populated slot of an Object.
type Property struct {
	definition *model.Property
	value      Value
}

// Definition returns the model property this slot populates.
func (p *Property) Definition() *model.Property { return p.definition }

// Value returns the slot content. It is never nil.
func (p *Property) Value() Value { return p.value }

// Object is an instance of one model. It is a single-owner value: it
// is not safe for concurrent mutation.
type Object struct {
	model      *model.Object
	properties []*Property
	byName     map[string]*Property
}

// New returns an empty message for m.
func New(m *model.Object) *Object {
	return &Object{model: m, byName: make(map[string]*Property)}
}

// MessageObject returns o, so a generic object is itself a Record.
func (o *Object) MessageObject() *Object { return o }

// Model returns the model o was created against.
func (o *Object) Model() *model.Object { return o.model }

// Name returns the model name.
func (o *Object) Name() string { return o.model.Name() }

// Properties returns the populated slots in storage order.
func (o *Object) Properties() []*Property {
	return slices.Clone(o.properties)
}

// Len returns the number of populated slots.
func (o *Object) Len() int { return len(o.properties) }

func (o *Object) definition(name string) (*model.Property, error) {
	definition, ok := o.model.PropertyByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no property %q", model.ErrUnknownProperty, o.model.Name(), name)
	}
	return definition, nil
}

// Set stores value in the named slot, replacing any previous value in
// place. A nil value, or a variant wrapping nil, removes the slot.
func (o *Object) Set(name string, value Value) error {
	definition, err := o.definition(name)
	if err != nil {
		return err
	}
	if absent(value) {
		o.remove(name)
		return nil
	}
	if err := validate(definition, value); err != nil {
		return err
	}
	o.put(definition, value)
	return nil
}

func validate(definition *model.Property, value Value) error {
	if value.Type() != definition.Type() {
		return fmt.Errorf("%w: %s is %s, got a %s value",
			model.ErrTypeMismatch, definition.QualifiedName(), definition.Type(), value.Type())
	}
	switch v := value.(type) {
	case Enum:
		if _, ok := definition.EnumValue(int(v)); !ok {
			return fmt.Errorf("%w: %s has no enum ordinal %d", model.ErrTypeMismatch, definition.QualifiedName(), v)
		}
	case Reference:
		return checkReferenced(definition, v.Record)
	case References:
		for _, record := range v {
			if err := checkReferenced(definition, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkReferenced(definition *model.Property, record Record) error {
	if record == nil || record.MessageObject() == nil {
		return fmt.Errorf("%w: %s: nil record", model.ErrTypeMismatch, definition.QualifiedName())
	}
	want := definition.ReferencedObject().UUID()
	if got := record.MessageObject().model.UUID(); got != want {
		return fmt.Errorf("%w: %s references %s, got a %s record",
			model.ErrModelMismatch, definition.QualifiedName(), want, got)
	}
	return nil
}

func (o *Object) put(definition *model.Property, value Value) {
	if existing, ok := o.byName[definition.Name()]; ok {
		existing.value = value
		return
	}
	property := &Property{definition: definition, value: value}
	o.properties = append(o.properties, property)
	o.byName[definition.Name()] = property
}

func (o *Object) remove(name string) {
	if _, ok := o.byName[name]; !ok {
		return
	}
	delete(o.byName, name)
	o.properties = slices.DeleteFunc(o.properties, func(p *Property) bool {
		return p.definition.Name() == name
	})
}

// Remove clears the named slot.
func (o *Object) Remove(name string) error {
	return o.Set(name, nil)
}

func (o *Object) SetBool(name string, value bool) error     { return o.Set(name, Bool(value)) }
func (o *Object) SetByte(name string, value int8) error     { return o.Set(name, Byte(value)) }
func (o *Object) SetInt(name string, value int32) error     { return o.Set(name, Int(value)) }
func (o *Object) SetLong(name string, value int64) error    { return o.Set(name, Long(value)) }
func (o *Object) SetFloat(name string, value float32) error { return o.Set(name, Float(value)) }
func (o *Object) SetDouble(name string, value float64) error {
	return o.Set(name, Double(value))
}

// SetString stores a string. The empty string is stored, but decodes
// as absent on the other side.
func (o *Object) SetString(name string, value string) error { return o.Set(name, String(value)) }

func (o *Object) SetBitSet(name string, value *bitset.BitSet) error {
	return o.Set(name, BitSet{value})
}

func (o *Object) SetBytes(name string, value []byte) error     { return o.Set(name, ByteArray(value)) }
func (o *Object) SetInts(name string, value []int32) error     { return o.Set(name, IntArray(value)) }
func (o *Object) SetLongs(name string, value []int64) error    { return o.Set(name, LongArray(value)) }
func (o *Object) SetFloats(name string, value []float32) error { return o.Set(name, FloatArray(value)) }
func (o *Object) SetDoubles(name string, value []float64) error {
	return o.Set(name, DoubleArray(value))
}
func (o *Object) SetStrings(name string, value []string) error {
	return o.Set(name, StringArray(value))
}
func (o *Object) SetFile(name string, value File) error { return o.Set(name, value) }

// SetEnum stores the ordinal of the declared enum value.
func (o *Object) SetEnum(name, value string) error {
	definition, err := o.definition(name)
	if err != nil {
		return err
	}
	ordinal, ok := definition.EnumOrdinal(value)
	if !ok {
		return fmt.Errorf("%w: %s does not declare enum value %q", model.ErrTypeMismatch, definition.QualifiedName(), value)
	}
	return o.Set(name, Enum(ordinal))
}

// SetReference stores a single nested record. A nil record removes the
// slot.
func (o *Object) SetReference(name string, record Record) error {
	return o.Set(name, Reference{record})
}

// SetReferences stores an ordered list of nested records.
func (o *Object) SetReferences(name string, records []Record) error {
	return o.Set(name, References(records))
}

// AddReference sets a single reference, or appends record to a multi
// reference.
func (o *Object) AddReference(name string, record Record) error {
	definition, err := o.definition(name)
	if err != nil {
		return err
	}
	if !definition.IsMultiReference() {
		return o.Set(name, Reference{record})
	}
	if err := checkReferenced(definition, record); err != nil {
		return err
	}
	var records References
	if existing, ok := o.byName[name]; ok {
		records = existing.value.(References)
	}
	o.put(definition, append(records, record))
	return nil
}

// Get returns the value in the named slot. It fails only for names the
// model does not declare; an absent slot yields nil.
func (o *Object) Get(name string) (Value, error) {
	if _, err := o.definition(name); err != nil {
		return nil, err
	}
	value, _ := o.Lookup(name)
	return value, nil
}

// Lookup returns the value in the named slot and whether it is
// populated.
func (o *Object) Lookup(name string) (Value, bool) {
	property, ok := o.byName[name]
	if !ok {
		return nil, false
	}
	return property.value, true
}

// Has reports whether the named slot is populated.
func (o *Object) Has(name string) bool {
	_, ok := o.byName[name]
	return ok
}

// lookup returns the slot content as V, or the zero V.
func lookup[V Value](o *Object, name string) V {
	value, _ := o.Lookup(name)
	typed, _ := value.(V)
	return typed
}

// The typed getters are lenient: an absent slot, a name the model does
// not declare, and a slot of another type all yield the zero value. Use
// Get to tell an undeclared name (model.ErrUnknownProperty) from an
// absent one.

func (o *Object) Bool(name string) bool      { return bool(lookup[Bool](o, name)) }
func (o *Object) Byte(name string) int8      { return int8(lookup[Byte](o, name)) }
func (o *Object) Int(name string) int32      { return int32(lookup[Int](o, name)) }
func (o *Object) Long(name string) int64     { return int64(lookup[Long](o, name)) }
func (o *Object) Float(name string) float32  { return float32(lookup[Float](o, name)) }
func (o *Object) Double(name string) float64 { return float64(lookup[Double](o, name)) }
func (o *Object) String(name string) string  { return string(lookup[String](o, name)) }
func (o *Object) BitSet(name string) *bitset.BitSet {
	return lookup[BitSet](o, name).BitSet
}
func (o *Object) Bytes(name string) []byte      { return lookup[ByteArray](o, name) }
func (o *Object) Ints(name string) []int32      { return lookup[IntArray](o, name) }
func (o *Object) Longs(name string) []int64     { return lookup[LongArray](o, name) }
func (o *Object) Floats(name string) []float32  { return lookup[FloatArray](o, name) }
func (o *Object) Doubles(name string) []float64 { return lookup[DoubleArray](o, name) }
func (o *Object) Strings(name string) []string  { return lookup[StringArray](o, name) }

// File returns the file in the named slot and whether one is set.
func (o *Object) File(name string) (File, bool) {
	value, _ := o.Lookup(name)
	file, ok := value.(File)
	return file, ok
}

// Enum returns the declared enum value in the named slot, or "".
func (o *Object) Enum(name string) string {
	property, ok := o.byName[name]
	if !ok {
		return ""
	}
	ordinal, ok := property.value.(Enum)
	if !ok {
		return ""
	}
	value, _ := property.definition.EnumValue(int(ordinal))
	return value
}

// Reference returns the nested record of a single reference, or nil.
func (o *Object) Reference(name string) Record {
	return lookup[Reference](o, name).Record
}

// References returns the nested records of a multi reference, or nil.
func (o *Object) References(name string) []Record {
	return lookup[References](o, name)
}

// Object returns the nested message of a single reference, or nil.
func (o *Object) Object(name string) *Object {
	record := o.Reference(name)
	if record == nil {
		return nil
	}
	return record.MessageObject()
}

// Objects returns the nested messages of a multi reference.
func (o *Object) Objects(name string) []*Object {
	records := o.References(name)
	if records == nil {
		return nil
	}
	objects := make([]*Object, len(records))
	for i, record := range records {
		objects[i] = record.MessageObject()
	}
	return objects
}
