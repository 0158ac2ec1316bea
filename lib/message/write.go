// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"bytes"
	"fmt"
	"math"

	"github.com/modelwire/modelwire/lib/wire"
)

// Marshal encodes o. files receives the content of non-empty FILE
// properties and may be nil, in which case every transfer id is empty.
func (o *Object) Marshal(files FileSink) ([]byte, error) {
	var buffer bytes.Buffer
	if err := o.Write(wire.NewWriter(&buffer), files); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Write encodes o to w.
func (o *Object) Write(w *wire.Writer, files FileSink) error {
	o.write(w, files)
	if err := w.Err(); err != nil {
		return fmt.Errorf("encoding %s: %w", o.model, err)
	}
	return nil
}

func (o *Object) write(w *wire.Writer, files FileSink) {
	w.String(o.model.UUID())
	w.Int16(o.model.Version())
	if len(o.properties) > math.MaxInt16 {
		w.Fail(fmt.Errorf("%w: %d properties", wire.ErrInvalidLength, len(o.properties)))
		return
	}
	w.Int16(int16(len(o.properties)))
	for _, property := range o.properties {
		if w.Err() != nil {
			return
		}
		w.Byte(property.definition.Type().ID())
		w.Int16(property.definition.Key())
		writeValue(w, property.value, files)
	}
}

func writeValue(w *wire.Writer, value Value, files FileSink) {
	switch v := value.(type) {
	case Bool:
		w.Bool(bool(v))
	case Byte:
		w.Int8(int8(v))
	case Int:
		w.Int32(int32(v))
	case Long:
		w.Int64(int64(v))
	case Float:
		w.Float32(float32(v))
	case Double:
		w.Float64(float64(v))
	case String:
		w.String(string(v))
	case BitSet:
		w.BitSet(v.BitSet)
	case ByteArray:
		w.Bytes(v)
	case IntArray:
		w.Int32s(v)
	case LongArray:
		w.Int64s(v)
	case FloatArray:
		w.Float32s(v)
	case DoubleArray:
		w.Float64s(v)
	case StringArray:
		w.Strings(v)
	case File:
		w.Int64(v.Length)
		w.String(v.Name)
		var transferID string
		if files != nil && v.shouldTransfer() {
			id, err := files.HandleFile(v.Path)
			if err != nil {
				w.Fail(fmt.Errorf("handing off attachment %s: %w", v.Name, err))
				return
			}
			transferID = id
		}
		w.String(transferID)
	case Enum:
		w.Int32(int32(v))
	case Reference:
		v.Record.MessageObject().write(w, files)
	case References:
		w.Count(len(v))
		for _, record := range v {
			record.MessageObject().write(w, files)
		}
	default:
		w.Fail(fmt.Errorf("cannot encode value of type %T", value))
	}
}
