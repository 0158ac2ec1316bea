// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelwire/modelwire/lib/model"
	"github.com/modelwire/modelwire/lib/wire"
)

// ReadOptions configures a decode. The zero value decodes generically
// without attachments.
type ReadOptions struct {
	// Files resolves FILE transfer ids to local paths. Nil leaves every
	// decoded File unavailable.
	Files FileProvider

	// Decoders materializes nested references as typed records. Nil,
	// or a miss, decodes the nested object generically.
	Decoders Decoders

	// Logger receives the version mismatch warning. Nil uses
	// slog.Default().
	Logger *slog.Logger

	// MaxDepth bounds how deeply references may nest below the
	// top-level message. Zero means DefaultMaxDepth.
	MaxDepth int

	// depth is the nesting level of the message being read, carried
	// into decoders so the bound holds across them.
	depth int
}

// DefaultMaxDepth is the nesting bound used when ReadOptions.MaxDepth
// is zero.
const DefaultMaxDepth = 100

// ErrTooDeep reports a message whose references nest deeper than
// ReadOptions.MaxDepth.
var ErrTooDeep = errors.New("message nesting too deep")

// Resolver maps a (uuid, version) wire identity to a model.
type Resolver interface {
	Model(uuid string, version int16) (*model.Object, error)
}

// Unmarshal decodes data, which must hold exactly one message of
// model m.
func Unmarshal(data []byte, m *model.Object, options ReadOptions) (*Object, error) {
	r := wire.NewBytesReader(data)
	object, err := ReadObject(r, m, options)
	if err != nil {
		return nil, err
	}
	return object, checkConsumed(r, data)
}

// UnmarshalResolved decodes data, resolving its model through resolver.
func UnmarshalResolved(data []byte, resolver Resolver, options ReadOptions) (*Object, error) {
	r := wire.NewBytesReader(data)
	object, err := ReadResolved(r, resolver, options)
	if err != nil {
		return nil, err
	}
	return object, checkConsumed(r, data)
}

func checkConsumed(r *wire.Reader, data []byte) error {
	if trailing := int64(len(data)) - r.Offset(); trailing != 0 {
		return fmt.Errorf("decoding message: %d trailing bytes", trailing)
	}
	return nil
}

// ReadObject decodes one message of model m from r. A uuid other than
// m's fails with model.ErrModelMismatch. A different version is logged
// and decoding continues.
func ReadObject(r *wire.Reader, m *model.Object, options ReadOptions) (*Object, error) {
	d := newDecoding(r, options)
	object := d.object(m)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", m, err)
	}
	return object, nil
}

// ReadResolved decodes one message from r, looking up its model by the
// header's uuid and version. An unknown pair fails with the resolver's
// error, normally wrapping model.ErrUnresolvedModel.
func ReadResolved(r *wire.Reader, resolver Resolver, options ReadOptions) (*Object, error) {
	uuid := r.String()
	version := r.Int16()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decoding message header: %w", err)
	}
	m, err := resolver.Model(uuid, version)
	if err != nil {
		return nil, err
	}
	d := newDecoding(r, options)
	d.checkVersion(m, version)
	object := d.body(m)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", m, err)
	}
	return object, nil
}

// PeekHeader returns the uuid and version at the start of an encoded
// message without decoding the rest.
func PeekHeader(data []byte) (uuid string, version int16, err error) {
	r := wire.NewBytesReader(data)
	uuid = r.String()
	version = r.Int16()
	if err := r.Err(); err != nil {
		return "", 0, fmt.Errorf("reading message header: %w", err)
	}
	return uuid, version, nil
}

type decoding struct {
	r        *wire.Reader
	options  ReadOptions
	logger   *slog.Logger
	depth    int
	maxDepth int
}

func newDecoding(r *wire.Reader, options ReadOptions) *decoding {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxDepth := options.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &decoding{r: r, options: options, logger: logger, depth: options.depth, maxDepth: maxDepth}
}

// object reads a header, checks it against m, and reads the body.
func (d *decoding) object(m *model.Object) *Object {
	uuid := d.r.String()
	version := d.r.Int16()
	if d.r.Err() != nil {
		return nil
	}
	if uuid != m.UUID() {
		d.r.Fail(fmt.Errorf("%w: stream has model %q, expected %s", model.ErrModelMismatch, uuid, m))
		return nil
	}
	d.checkVersion(m, version)
	return d.body(m)
}

func (d *decoding) checkVersion(m *model.Object, version int16) {
	if version != m.Version() {
		d.logger.Warn("message version differs from model version",
			"uuid", m.UUID(),
			"model", m.Name(),
			"expected_version", m.Version(),
			"stream_version", version,
		)
	}
}

func (d *decoding) body(m *model.Object) *Object {
	object := New(m)
	count := d.r.Int16()
	if count < 0 {
		d.r.Fail(fmt.Errorf("%w: property count %d", wire.ErrInvalidLength, count))
		return nil
	}
	for i := 0; i < int(count) && d.r.Err() == nil; i++ {
		typeID := d.r.Byte()
		key := d.r.Int16()
		if d.r.Err() != nil {
			break
		}
		definition, ok := m.PropertyByKey(key)
		if !ok {
			d.r.Fail(fmt.Errorf("%w: %s declares no key %d", model.ErrUnknownProperty, m, key))
			break
		}
		if typeID != definition.Type().ID() {
			streamType, _ := model.PropertyTypeByID(typeID)
			d.r.Fail(fmt.Errorf("%w: key %d (%s) is %s, stream has %s",
				model.ErrTypeMismatch, key, definition.QualifiedName(), definition.Type(), streamType))
			break
		}
		value := d.value(definition)
		if d.r.Err() == nil && !absent(value) {
			object.put(definition, value)
		}
	}
	return object
}

func (d *decoding) value(definition *model.Property) Value {
	r := d.r
	switch definition.Type() {
	case model.TypeBoolean:
		return Bool(r.Bool())
	case model.TypeByte:
		return Byte(r.Int8())
	case model.TypeInt:
		return Int(r.Int32())
	case model.TypeLong:
		return Long(r.Int64())
	case model.TypeFloat:
		return Float(r.Float32())
	case model.TypeDouble:
		return Double(r.Float64())
	case model.TypeString:
		if value := r.String(); value != "" {
			return String(value)
		}
		return nil
	case model.TypeBitSet:
		return BitSet{r.BitSet()}
	case model.TypeByteArray:
		return ByteArray(r.Bytes())
	case model.TypeIntArray:
		return IntArray(r.Int32s())
	case model.TypeLongArray:
		return LongArray(r.Int64s())
	case model.TypeFloatArray:
		return FloatArray(r.Float32s())
	case model.TypeDoubleArray:
		return DoubleArray(r.Float64s())
	case model.TypeStringArray:
		return StringArray(r.Strings())
	case model.TypeFile:
		return d.file()
	case model.TypeEnum:
		ordinal := r.Int32()
		if _, ok := definition.EnumValue(int(ordinal)); !ok && r.Err() == nil {
			r.Fail(fmt.Errorf("%w: %s has no enum ordinal %d", model.ErrTypeMismatch, definition.QualifiedName(), ordinal))
			return nil
		}
		return Enum(ordinal)
	case model.TypeObjectSingleReference:
		return Reference{d.record(definition.ReferencedObject())}
	case model.TypeObjectMultiReference:
		n := r.Count()
		if n == 0 {
			return nil
		}
		records := make(References, 0, min(n, 1024))
		for i := 0; i < n && r.Err() == nil; i++ {
			if record := d.record(definition.ReferencedObject()); record != nil {
				records = append(records, record)
			}
		}
		return records
	}
	r.Fail(fmt.Errorf("%w: cannot decode %s", model.ErrTypeMismatch, definition.Type()))
	return nil
}

func (d *decoding) file() Value {
	length := d.r.Int64()
	name := d.r.String()
	file := File{Name: name, Length: length, TransferID: d.r.String()}
	if d.r.Err() != nil {
		return nil
	}
	if file.TransferID != "" && d.options.Files != nil {
		path, err := d.options.Files.GetFile(file.TransferID)
		if err != nil {
			d.r.Fail(fmt.Errorf("resolving attachment %s: %w", file.TransferID, err))
			return nil
		}
		file.Path = path
	}
	return file
}

// record decodes a nested message, through a registered decoder when
// one exists for the referenced model.
func (d *decoding) record(m *model.Object) Record {
	if d.depth >= d.maxDepth {
		d.r.Fail(fmt.Errorf("%w: %s nested more than %d levels", ErrTooDeep, m, d.maxDepth))
		return nil
	}
	if d.options.Decoders != nil {
		if decoder, ok := d.options.Decoders.Decoder(m.UUID()); ok {
			nested := d.options
			nested.Logger = d.logger
			nested.MaxDepth = d.maxDepth
			nested.depth = d.depth + 1
			record, err := decoder.Decode(d.r, nested)
			if err != nil {
				d.r.Fail(err)
				return nil
			}
			return record
		}
	}
	d.depth++
	object := d.object(m)
	d.depth--
	if d.r.Err() != nil {
		return nil
	}
	return object
}
