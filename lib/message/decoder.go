// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"fmt"
	"slices"

	"github.com/modelwire/modelwire/lib/model"
	"github.com/modelwire/modelwire/lib/wire"
)

// Decoder materializes messages of one model as typed records, either
// straight from the wire or by projecting an already decoded generic
// object.
type Decoder interface {
	// ObjectUUID returns the uuid of the model this decoder handles.
	ObjectUUID() string

	// Decode reads one message from r. options carries the attachment
	// provider, logger, and nesting bound of the enclosing decode; the
	// decoder may substitute its own Decoders.
	Decode(r *wire.Reader, options ReadOptions) (Record, error)

	// Remap projects a generic object of the decoder's model into a
	// typed record, remapping nested references that have decoders.
	Remap(object *Object) (Record, error)
}

// Decoders looks up the decoder registered for a model uuid.
type Decoders interface {
	Decoder(uuid string) (Decoder, bool)
}

// DecoderMap is a fixed set of decoders keyed by model uuid.
type DecoderMap map[string]Decoder

// Decoder implements Decoders.
func (m DecoderMap) Decoder(uuid string) (Decoder, bool) {
	decoder, ok := m[uuid]
	return decoder, ok
}

// Add registers decoder under its model uuid.
func (m DecoderMap) Add(decoder Decoder) {
	m[decoder.ObjectUUID()] = decoder
}

// TypedDecoder is a Decoder for a record type T that wraps *Object. It
// is what generated code provides for each model; wrap converts a
// decoded generic object into T.
type TypedDecoder[T Record] struct {
	model    *model.Object
	decoders Decoders
	wrap     func(*Object) T
}

// NewTypedDecoder returns a decoder for messages of m. decoders is
// consulted for nested references and may be nil. It is typically the
// registry the decoder itself is added to.
func NewTypedDecoder[T Record](m *model.Object, decoders Decoders, wrap func(*Object) T) *TypedDecoder[T] {
	return &TypedDecoder[T]{model: m, decoders: decoders, wrap: wrap}
}

// ObjectUUID implements Decoder.
func (d *TypedDecoder[T]) ObjectUUID() string { return d.model.UUID() }

// Model returns the model this decoder reads.
func (d *TypedDecoder[T]) Model() *model.Object { return d.model }

// Decode implements Decoder.
func (d *TypedDecoder[T]) Decode(r *wire.Reader, options ReadOptions) (Record, error) {
	record, err := d.DecodeTyped(r, options)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// DecodeTyped reads one message from r as a T. Nested references go
// through the decoder's own Decoders rather than options.Decoders.
func (d *TypedDecoder[T]) DecodeTyped(r *wire.Reader, options ReadOptions) (T, error) {
	options.Decoders = d.decoders
	object, err := ReadObject(r, d.model, options)
	if err != nil {
		var zero T
		return zero, err
	}
	return d.wrap(object), nil
}

// Unmarshal decodes data, which must hold exactly one message, as a T.
func (d *TypedDecoder[T]) Unmarshal(data []byte, options ReadOptions) (T, error) {
	options.Decoders = d.decoders
	object, err := Unmarshal(data, d.model, options)
	if err != nil {
		var zero T
		return zero, err
	}
	return d.wrap(object), nil
}

// Remap implements Decoder.
func (d *TypedDecoder[T]) Remap(object *Object) (Record, error) {
	record, err := d.RemapTyped(object)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// RemapTyped projects object into a T.
func (d *TypedDecoder[T]) RemapTyped(object *Object) (T, error) {
	var zero T
	if object.model.UUID() != d.model.UUID() {
		return zero, fmt.Errorf("%w: cannot remap %s with the decoder for %s", model.ErrModelMismatch, object.model, d.model)
	}
	remapped, err := object.Remap(d.decoders)
	if err != nil {
		return zero, err
	}
	return d.wrap(remapped), nil
}

// Remap returns a copy of o in which every nested reference whose model
// has a decoder is replaced by that decoder's typed record. References
// without a decoder are copied generically and remapped recursively.
// List order and length are preserved.
func (o *Object) Remap(decoders Decoders) (*Object, error) {
	remapped := New(o.model)
	for _, property := range o.properties {
		var value Value
		switch v := property.value.(type) {
		case Reference:
			record, err := remapRecord(v.Record, decoders)
			if err != nil {
				return nil, err
			}
			value = Reference{record}
		case References:
			records := make(References, len(v))
			for i, nested := range v {
				record, err := remapRecord(nested, decoders)
				if err != nil {
					return nil, err
				}
				records[i] = record
			}
			value = records
		default:
			value = cloneValue(property.value)
		}
		remapped.put(property.definition, value)
	}
	return remapped, nil
}

func remapRecord(record Record, decoders Decoders) (Record, error) {
	nested := record.MessageObject()
	if decoders != nil {
		if decoder, ok := decoders.Decoder(nested.model.UUID()); ok {
			return decoder.Remap(nested)
		}
	}
	return nested.Remap(decoders)
}

// cloneValue copies the backing storage of array values so two objects
// never share mutable state.
func cloneValue(value Value) Value {
	switch v := value.(type) {
	case BitSet:
		return BitSet{v.Clone()}
	case ByteArray:
		return slices.Clone(v)
	case IntArray:
		return slices.Clone(v)
	case LongArray:
		return slices.Clone(v)
	case FloatArray:
		return slices.Clone(v)
	case DoubleArray:
		return slices.Clone(v)
	case StringArray:
		return slices.Clone(v)
	}
	return value
}
