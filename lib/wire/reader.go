// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/bits-and-blooms/bitset"
)

var (
	// ErrTruncated is reported when the input ends in the middle of a
	// value.
	ErrTruncated = errors.New("wire: truncated input")

	// ErrInvalidLength is reported for a negative length or count
	// prefix, or one that cannot be represented when writing.
	ErrInvalidLength = errors.New("wire: invalid length")
)

// MaxBitIndex is the highest bit index a bitset may carry. A set's
// backing storage grows to its highest index, so an unbounded index
// read from the wire would let one int32 force a huge allocation.
const MaxBitIndex = 1<<24 - 1

// initialCapacity bounds the up-front allocation for counted arrays.
// Larger arrays grow by append as elements are actually read.
const initialCapacity = 1024

// Reader decodes primitives from an underlying io.Reader. The first
// error is retained and all later reads return zero values.
type Reader struct {
	in      io.Reader
	err     error
	read    int64
	scratch [8]byte
}

// NewReader returns a Reader that decodes from in.
func NewReader(in io.Reader) *Reader {
	return &Reader{in: in}
}

// NewBytesReader returns a Reader over data.
func NewBytesReader(data []byte) *Reader {
	return &Reader{in: bytes.NewReader(data)}
}

// Err returns the first error encountered, if any.
func (r *Reader) Err() error {
	return r.err
}

// Offset returns the number of bytes consumed so far. Useful for error
// messages that point at the failing position.
func (r *Reader) Offset() int64 {
	return r.read
}

// Fail records err as the reader's error unless one is already set.
// Higher-level decoders use it to stop a decode on a semantic failure
// (unknown key, type mismatch) while keeping a single error path.
func (r *Reader) Fail(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

func (r *Reader) fill(buffer []byte) bool {
	if r.err != nil {
		return false
	}
	n, err := io.ReadFull(r.in, buffer)
	r.read += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			r.err = fmt.Errorf("%w at offset %d", ErrTruncated, r.read)
		} else {
			r.err = err
		}
		return false
	}
	return true
}

// Byte reads a single byte.
func (r *Reader) Byte() byte {
	if !r.fill(r.scratch[:1]) {
		return 0
	}
	return r.scratch[0]
}

// Int8 reads a signed byte.
func (r *Reader) Int8() int8 {
	return int8(r.Byte())
}

// Bool reads a byte and reports whether it is non-zero.
func (r *Reader) Bool() bool {
	return r.Byte() != 0
}

// Int16 reads a big-endian 16-bit integer.
func (r *Reader) Int16() int16 {
	if !r.fill(r.scratch[:2]) {
		return 0
	}
	return int16(binary.BigEndian.Uint16(r.scratch[:2]))
}

// Int32 reads a big-endian 32-bit integer.
func (r *Reader) Int32() int32 {
	if !r.fill(r.scratch[:4]) {
		return 0
	}
	return int32(binary.BigEndian.Uint32(r.scratch[:4]))
}

// Int64 reads a big-endian 64-bit integer.
func (r *Reader) Int64() int64 {
	if !r.fill(r.scratch[:8]) {
		return 0
	}
	return int64(binary.BigEndian.Uint64(r.scratch[:8]))
}

// Float32 reads a big-endian IEEE 754 single.
func (r *Reader) Float32() float32 {
	return math.Float32frombits(uint32(r.Int32()))
}

// Float64 reads a big-endian IEEE 754 double.
func (r *Reader) Float64() float64 {
	return math.Float64frombits(uint64(r.Int64()))
}

// Count reads an int32 count or length prefix. Negative values fail
// with ErrInvalidLength and return zero.
func (r *Reader) Count() int {
	n := r.Int32()
	if n < 0 {
		r.Fail(fmt.Errorf("%w: %d at offset %d", ErrInvalidLength, n, r.read-4))
		return 0
	}
	return int(n)
}

// payload reads exactly n bytes, growing the destination as data
// arrives rather than trusting n for the allocation.
func (r *Reader) payload(n int) []byte {
	if r.err != nil || n == 0 {
		return nil
	}
	var buffer bytes.Buffer
	if n <= initialCapacity*64 {
		buffer.Grow(n)
	}
	copied, err := io.CopyN(&buffer, r.in, int64(n))
	r.read += copied
	if err != nil {
		if errors.Is(err, io.EOF) {
			r.err = fmt.Errorf("%w at offset %d: wanted %d bytes, got %d", ErrTruncated, r.read, n, copied)
		} else {
			r.err = err
		}
		return nil
	}
	return buffer.Bytes()
}

// String reads a length-prefixed UTF-8 string. Length zero yields "".
func (r *Reader) String() string {
	return string(r.payload(r.Count()))
}

// Bytes reads a length-prefixed byte array. Length zero yields nil.
func (r *Reader) Bytes() []byte {
	return r.payload(r.Count())
}

func capacity(n int) int {
	return min(n, initialCapacity)
}

// Int32s reads a counted array of 32-bit integers. Count zero yields nil.
func (r *Reader) Int32s() []int32 {
	n := r.Count()
	if n == 0 {
		return nil
	}
	values := make([]int32, 0, capacity(n))
	for i := 0; i < n && r.err == nil; i++ {
		values = append(values, r.Int32())
	}
	return values
}

// Int64s reads a counted array of 64-bit integers. Count zero yields nil.
func (r *Reader) Int64s() []int64 {
	n := r.Count()
	if n == 0 {
		return nil
	}
	values := make([]int64, 0, capacity(n))
	for i := 0; i < n && r.err == nil; i++ {
		values = append(values, r.Int64())
	}
	return values
}

// Float32s reads a counted array of 32-bit floats. Count zero yields nil.
func (r *Reader) Float32s() []float32 {
	n := r.Count()
	if n == 0 {
		return nil
	}
	values := make([]float32, 0, capacity(n))
	for i := 0; i < n && r.err == nil; i++ {
		values = append(values, r.Float32())
	}
	return values
}

// Float64s reads a counted array of 64-bit floats. Count zero yields nil.
func (r *Reader) Float64s() []float64 {
	n := r.Count()
	if n == 0 {
		return nil
	}
	values := make([]float64, 0, capacity(n))
	for i := 0; i < n && r.err == nil; i++ {
		values = append(values, r.Float64())
	}
	return values
}

// Strings reads a counted array of length-prefixed strings. Count zero
// yields nil.
func (r *Reader) Strings() []string {
	n := r.Count()
	if n == 0 {
		return nil
	}
	values := make([]string, 0, capacity(n))
	for i := 0; i < n && r.err == nil; i++ {
		values = append(values, r.String())
	}
	return values
}

// BitSet reads a sparse bitset: a count followed by that many set bit
// indices. Count zero yields nil. Indices outside [0, MaxBitIndex] fail
// with ErrInvalidLength.
func (r *Reader) BitSet() *bitset.BitSet {
	n := r.Count()
	if n == 0 {
		return nil
	}
	set := bitset.New(0)
	for i := 0; i < n && r.err == nil; i++ {
		index := r.Int32()
		if index < 0 || index > MaxBitIndex {
			r.Fail(fmt.Errorf("%w: bit index %d outside [0, %d]", ErrInvalidLength, index, MaxBitIndex))
			return nil
		}
		set.Set(uint(index))
	}
	if r.err != nil {
		return nil
	}
	return set
}
