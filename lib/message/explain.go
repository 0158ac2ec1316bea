// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/modelwire/modelwire/lib/model"
)

// Explain renders o as an indented tree of its populated properties:
// one line per property with name, title, type, content type, and
// value, nested objects indented below their property.
func (o *Object) Explain() string {
	var builder strings.Builder
	o.explain(&builder, 0)
	return builder.String()
}

func (o *Object) explain(builder *strings.Builder, level int) {
	indent := strings.Repeat("\t", level)
	fmt.Fprintf(builder, "%s%s", indent, o.model.Name())
	if title := o.model.Title(); title != "" {
		fmt.Fprintf(builder, " (%s)", title)
	}
	fmt.Fprintf(builder, " [%s v%d]\n", o.model.UUID(), o.model.Version())
	for _, property := range o.properties {
		definition := property.definition
		fmt.Fprintf(builder, "%s\t%s", indent, definition.Name())
		if title := definition.Title(); title != "" {
			fmt.Fprintf(builder, " (%s)", title)
		}
		fmt.Fprintf(builder, ", %s", definition.Type())
		if definition.ContentType() != model.ContentGeneric {
			fmt.Fprintf(builder, ", %s", definition.ContentType())
		}
		switch v := property.value.(type) {
		case Reference:
			builder.WriteString(":\n")
			v.Record.MessageObject().explain(builder, level+2)
		case References:
			fmt.Fprintf(builder, ": %d\n", len(v))
			for _, record := range v {
				record.MessageObject().explain(builder, level+2)
			}
		default:
			fmt.Fprintf(builder, ": %s\n", formatValue(definition, property.value))
		}
	}
}

func formatValue(definition *model.Property, value Value) string {
	switch v := value.(type) {
	case String:
		return fmt.Sprintf("%q", string(v))
	case BitSet:
		return fmt.Sprint(setBits(v.BitSet))
	case Enum:
		name, _ := definition.EnumValue(int(v))
		return name
	case File:
		text := v.String()
		if v.TransferID != "" {
			text += " id " + v.TransferID
		}
		if v.Path != "" {
			text += " at " + v.Path
		}
		return text
	}
	return fmt.Sprint(value)
}

func setBits(set *bitset.BitSet) []uint {
	bits := make([]uint, 0, set.Count())
	for index, ok := set.NextSet(0); ok; index, ok = set.NextSet(index + 1) {
		bits = append(bits, index)
	}
	return bits
}

// Map projects o onto plain Go values keyed by property name, suitable
// for encoding/json or a CBOR encoder. Nested objects become nested
// maps, enums their declared value, bitsets the list of set indices.
func (o *Object) Map() map[string]any {
	result := make(map[string]any, len(o.properties))
	for _, property := range o.properties {
		result[property.definition.Name()] = mapValue(property.definition, property.value)
	}
	return result
}

func mapValue(definition *model.Property, value Value) any {
	switch v := value.(type) {
	case Bool:
		return bool(v)
	case Byte:
		return int8(v)
	case Int:
		return int32(v)
	case Long:
		return int64(v)
	case Float:
		return float32(v)
	case Double:
		return float64(v)
	case String:
		return string(v)
	case BitSet:
		return setBits(v.BitSet)
	case ByteArray:
		return []byte(v)
	case IntArray:
		return []int32(v)
	case LongArray:
		return []int64(v)
	case FloatArray:
		return []float32(v)
	case DoubleArray:
		return []float64(v)
	case StringArray:
		return []string(v)
	case File:
		file := map[string]any{"name": v.Name, "length": v.Length}
		if v.TransferID != "" {
			file["transferId"] = v.TransferID
		}
		if v.Path != "" {
			file["path"] = v.Path
		}
		return file
	case Enum:
		name, _ := definition.EnumValue(int(v))
		return name
	case Reference:
		return v.Record.MessageObject().Map()
	case References:
		list := make([]map[string]any, len(v))
		for i, record := range v {
			list[i] = record.MessageObject().Map()
		}
		return list
	}
	return nil
}

// Equal reports whether o and other are instances of the same model
// version with the same populated properties and values. Floating point
// values compare bit for bit. Nested records compare by their message
// objects, so a typed record equals its generic counterpart.
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}
	if o.model.UUID() != other.model.UUID() || o.model.Version() != other.model.Version() {
		return false
	}
	if len(o.properties) != len(other.properties) {
		return false
	}
	for _, property := range o.properties {
		theirs, ok := other.byName[property.definition.Name()]
		if !ok || !valueEqual(property.value, theirs.value) {
			return false
		}
	}
	return true
}

func valueEqual(a, b Value) bool {
	switch x := a.(type) {
	case Float:
		y, ok := b.(Float)
		return ok && math.Float32bits(float32(x)) == math.Float32bits(float32(y))
	case Double:
		y, ok := b.(Double)
		return ok && math.Float64bits(float64(x)) == math.Float64bits(float64(y))
	case BitSet:
		y, ok := b.(BitSet)
		return ok && slices.Equal(setBits(x.BitSet), setBits(y.BitSet))
	case ByteArray:
		y, ok := b.(ByteArray)
		return ok && slices.Equal(x, y)
	case IntArray:
		y, ok := b.(IntArray)
		return ok && slices.Equal(x, y)
	case LongArray:
		y, ok := b.(LongArray)
		return ok && slices.Equal(x, y)
	case FloatArray:
		y, ok := b.(FloatArray)
		return ok && slices.EqualFunc(x, y, func(p, q float32) bool {
			return math.Float32bits(p) == math.Float32bits(q)
		})
	case DoubleArray:
		y, ok := b.(DoubleArray)
		return ok && slices.EqualFunc(x, y, func(p, q float64) bool {
			return math.Float64bits(p) == math.Float64bits(q)
		})
	case StringArray:
		y, ok := b.(StringArray)
		return ok && slices.Equal(x, y)
	case Reference:
		y, ok := b.(Reference)
		return ok && x.Record.MessageObject().Equal(y.Record.MessageObject())
	case References:
		y, ok := b.(References)
		return ok && slices.EqualFunc(x, y, func(p, q Record) bool {
			return p.MessageObject().Equal(q.MessageObject())
		})
	}
	return a == b
}
