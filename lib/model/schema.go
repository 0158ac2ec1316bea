// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"bytes"
	"fmt"

	"github.com/modelwire/modelwire/lib/wire"
)

// Schema encoding: a model definition serialized with the same
// primitives as message payloads, so a peer can ship its models next to
// its messages.
//
//	Object   := uuid:String name:String title:String specificType:String
//	            version:int16 count:int32 Property*
//	Property := name:String key:int16 type:byte content:byte
//	            specificType:String title:String Extra
//	Extra    := (reference) multi:bool cached:bool (uuid:String | Object)
//	          | (enum)      values:Strings
//	          | (other)     nothing
//
// A referenced model is written inline the first time it appears and by
// uuid afterwards. The root is registered before its properties, which
// makes self references and shared references finite.

// MarshalBinary encodes the model definition, including every model it
// references.
func (o *Object) MarshalBinary() ([]byte, error) {
	var buffer bytes.Buffer
	w := wire.NewWriter(&buffer)
	o.WriteDefinition(w)
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("encoding model %s: %w", o.name, err)
	}
	return buffer.Bytes(), nil
}

// WriteDefinition encodes the model definition to w. Errors are
// reported through w.Err.
func (o *Object) WriteDefinition(w *wire.Writer) {
	o.writeDefinition(w, map[string]bool{})
}

func (o *Object) writeDefinition(w *wire.Writer, written map[string]bool) {
	written[o.uuid] = true
	w.String(o.uuid)
	w.String(o.name)
	w.String(o.title)
	w.String(o.specificType)
	w.Int16(o.version)
	w.Count(len(o.properties))
	for _, property := range o.properties {
		w.String(property.name)
		w.Int16(property.key)
		w.Byte(property.propertyType.ID())
		w.Byte(byte(property.contentType))
		w.String(property.specificType)
		w.String(property.title)
		switch {
		case property.IsReference():
			w.Bool(property.IsMultiReference())
			referenced := property.referenced
			if written[referenced.uuid] {
				w.Bool(true)
				w.String(referenced.uuid)
			} else {
				w.Bool(false)
				referenced.writeDefinition(w, written)
			}
		case property.IsEnum():
			w.Strings(property.enumValues)
		}
	}
}

// UnmarshalObject decodes a model definition produced by MarshalBinary.
func UnmarshalObject(data []byte) (*Object, error) {
	r := wire.NewBytesReader(data)
	object, err := ReadDefinition(r)
	if err != nil {
		return nil, err
	}
	if r.Offset() != int64(len(data)) {
		return nil, fmt.Errorf("decoding model %s: %d trailing bytes", object.name, int64(len(data))-r.Offset())
	}
	return object, nil
}

// ReadDefinition decodes one model definition from r.
func ReadDefinition(r *wire.Reader) (*Object, error) {
	object := readDefinition(r, map[string]*Object{})
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decoding model definition: %w", err)
	}
	return object, nil
}

func readDefinition(r *wire.Reader, seen map[string]*Object) *Object {
	uuid := r.String()
	name := r.String()
	title := r.String()
	specificType := r.String()
	version := r.Int16()
	object := NewObject(uuid, name, version, WithTitle(title), WithSpecificType(specificType))
	seen[uuid] = object

	count := r.Count()
	for i := 0; i < count && r.Err() == nil; i++ {
		propertyName := r.String()
		key := r.Int16()
		typeID := r.Byte()
		contentType := ContentType(r.Byte())
		propertySpecificType := r.String()
		propertyTitle := r.String()
		options := []Option{
			WithSpecificType(propertySpecificType),
			WithTitle(propertyTitle),
			WithContentType(contentType),
		}
		if r.Err() != nil {
			break
		}
		propertyType, ok := PropertyTypeByID(typeID)
		if !ok {
			r.Fail(fmt.Errorf("%w: %s.%s has unknown type id %d", ErrInvalidDefinition, name, propertyName, typeID))
			break
		}

		var err error
		switch {
		case propertyType.IsReference():
			multi := r.Bool()
			var referenced *Object
			if r.Bool() {
				referencedUUID := r.String()
				referenced = seen[referencedUUID]
				if referenced == nil && r.Err() == nil {
					err = fmt.Errorf("%w: %s.%s references unknown model %q", ErrInvalidDefinition, name, propertyName, referencedUUID)
				}
			} else {
				referenced = readDefinition(r, seen)
			}
			if err == nil && r.Err() == nil {
				if multi != (propertyType == TypeObjectMultiReference) {
					err = fmt.Errorf("%w: %s.%s multi flag disagrees with type %s", ErrInvalidDefinition, name, propertyName, propertyType)
				} else if multi {
					_, err = object.AddMultiReference(propertyName, key, referenced, options...)
				} else {
					_, err = object.AddSingleReference(propertyName, key, referenced, options...)
				}
			}
		case propertyType == TypeEnum:
			values := r.Strings()
			if r.Err() == nil {
				_, err = object.AddEnumProperty(propertyName, key, values, options...)
			}
		default:
			_, err = object.AddProperty(propertyName, key, propertyType, options...)
		}
		r.Fail(err)
	}
	return object
}
