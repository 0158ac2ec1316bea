// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/bits-and-blooms/bitset"
)

// Writer encodes primitives to an underlying io.Writer. The first write
// error is retained and all later writes become no-ops.
type Writer struct {
	out     io.Writer
	err     error
	written int64
	scratch [8]byte
}

// NewWriter returns a Writer that encodes to out. Wrap out in a
// bufio.Writer when it is unbuffered (a socket, a file); the Writer
// issues one small write per primitive.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Err returns the first error encountered, if any.
func (w *Writer) Err() error {
	return w.err
}

// Written returns the number of bytes successfully written.
func (w *Writer) Written() int64 {
	return w.written
}

// Fail records err as the writer's error unless one is already set.
// Encoders use it to surface validation failures (an oversized count,
// an unencodable value) through the same sticky channel as I/O errors.
func (w *Writer) Fail(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

func (w *Writer) write(data []byte) {
	if w.err != nil {
		return
	}
	n, err := w.out.Write(data)
	w.written += int64(n)
	if err != nil {
		w.err = err
	}
}

// Byte writes a single byte.
func (w *Writer) Byte(value byte) {
	w.scratch[0] = value
	w.write(w.scratch[:1])
}

// Int8 writes a signed byte.
func (w *Writer) Int8(value int8) {
	w.Byte(byte(value))
}

// Bool writes 1 for true and 0 for false.
func (w *Writer) Bool(value bool) {
	if value {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
}

// Int16 writes a big-endian 16-bit integer.
func (w *Writer) Int16(value int16) {
	binary.BigEndian.PutUint16(w.scratch[:2], uint16(value))
	w.write(w.scratch[:2])
}

// Int32 writes a big-endian 32-bit integer.
func (w *Writer) Int32(value int32) {
	binary.BigEndian.PutUint32(w.scratch[:4], uint32(value))
	w.write(w.scratch[:4])
}

// Int64 writes a big-endian 64-bit integer.
func (w *Writer) Int64(value int64) {
	binary.BigEndian.PutUint64(w.scratch[:8], uint64(value))
	w.write(w.scratch[:8])
}

// Float32 writes the IEEE 754 bits of value, big-endian.
func (w *Writer) Float32(value float32) {
	w.Int32(int32(math.Float32bits(value)))
}

// Float64 writes the IEEE 754 bits of value, big-endian.
func (w *Writer) Float64(value float64) {
	w.Int64(int64(math.Float64bits(value)))
}

// Count writes an int32 element count, failing if n does not fit.
func (w *Writer) Count(n int) {
	if n > math.MaxInt32 {
		w.Fail(fmt.Errorf("%w: count %d exceeds int32", ErrInvalidLength, n))
		return
	}
	w.Int32(int32(n))
}

// String writes value as an int32 byte length followed by its UTF-8
// bytes. The empty string is written as length zero.
func (w *Writer) String(value string) {
	w.Count(len(value))
	if len(value) > 0 {
		if sw, ok := w.out.(io.StringWriter); ok && w.err == nil {
			n, err := sw.WriteString(value)
			w.written += int64(n)
			if err != nil {
				w.err = err
			}
			return
		}
		w.write([]byte(value))
	}
}

// Bytes writes a length-prefixed byte array. Nil and empty are both
// written as length zero.
func (w *Writer) Bytes(value []byte) {
	w.Count(len(value))
	if len(value) > 0 {
		w.write(value)
	}
}

// Int32s writes a counted array of 32-bit integers.
func (w *Writer) Int32s(values []int32) {
	w.Count(len(values))
	for _, value := range values {
		w.Int32(value)
	}
}

// Int64s writes a counted array of 64-bit integers.
func (w *Writer) Int64s(values []int64) {
	w.Count(len(values))
	for _, value := range values {
		w.Int64(value)
	}
}

// Float32s writes a counted array of 32-bit floats.
func (w *Writer) Float32s(values []float32) {
	w.Count(len(values))
	for _, value := range values {
		w.Float32(value)
	}
}

// Float64s writes a counted array of 64-bit floats.
func (w *Writer) Float64s(values []float64) {
	w.Count(len(values))
	for _, value := range values {
		w.Float64(value)
	}
}

// Strings writes a counted array of length-prefixed strings.
func (w *Writer) Strings(values []string) {
	w.Count(len(values))
	for _, value := range values {
		w.String(value)
	}
}

// BitSet writes the number of set bits followed by the index of each
// set bit in ascending order. A nil set is written as count zero.
// Indices above MaxBitIndex fail the write, since no reader would
// accept them.
func (w *Writer) BitSet(set *bitset.BitSet) {
	if set == nil {
		w.Int32(0)
		return
	}
	w.Count(int(set.Count()))
	for index, ok := set.NextSet(0); ok; index, ok = set.NextSet(index + 1) {
		if index > MaxBitIndex {
			w.Fail(fmt.Errorf("%w: bit index %d exceeds %d", ErrInvalidLength, index, MaxBitIndex))
			return
		}
		w.Int32(int32(index))
	}
}
