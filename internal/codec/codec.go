// Package codec implements the bit-exact wire serialization used for every
// RPC request, response, and embedded domain value.
//
// The format is a closed set of encodings, each self-describing only to the
// extent spec.md requires (enums validate their tag on decode; everything
// else is a fixed-layout concatenation of fields). Unlike the C++ original
// this talks to (original_source/server-c/src/serdes.h), which memcpy's
// scalars in host byte order, this implementation fixes the wire format to
// little-endian so the same bytes decode the same way on any host.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrUnknownEnum is returned (wrapped, via Validate) when a decoded
// op_code or status_code tag falls outside its closed set of values.
var ErrUnknownEnum = errors.New("codec: unknown enum tag")

// ErrShortBuffer is returned when a decode reads past the end of the
// supplied buffer.
var ErrShortBuffer = errors.New("codec: buffer too short")

// Writer accumulates encoded bytes into a buffer it owns; Bytes exposes it.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer that appends to an internal buffer starting
// empty; call Bytes to retrieve the result.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 256)}
}

// Bytes returns the bytes written so far.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

func (w *Writer) PutInt32(v int32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(v))
	w.buf = append(w.buf, tmp[:]...)
}

func (w *Writer) PutInt64(v int64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(v))
	w.buf = append(w.buf, tmp[:]...)
}

func (w *Writer) PutUint64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *Writer) PutFloat64(v float64) {
	w.PutUint64(float64bits(v))
}

// PutString writes an 8-byte length prefix followed by the raw bytes, no
// terminator — mirrors serdes.h's std::string serialization (size_t prefix).
func (w *Writer) PutString(s string) {
	w.PutUint64(uint64(len(s)))
	w.buf = append(w.buf, s...)
}

// PutFixed writes exactly N raw bytes with no length prefix, padding with
// zero bytes if data is shorter than n, truncating if longer.
func (w *Writer) PutFixed(data []byte, n int) {
	tmp := make([]byte, n)
	copy(tmp, data)
	w.buf = append(w.buf, tmp...)
}

// PutBytes appends raw bytes with no framing at all.
func (w *Writer) PutBytes(data []byte) {
	w.buf = append(w.buf, data...)
}

// Reader consumes bytes from a caller-supplied buffer in order, tracking
// its own read position so callers can chain Get* calls the way the C++
// original chains `des(in, a, b, c, ...)`.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential decoding.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the number of bytes consumed so far.
func (r *Reader) Pos() int { return r.pos }

// Remaining returns the number of unconsumed bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return ErrShortBuffer
	}
	return nil
}

func (r *Reader) GetInt32() (int32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := int32(binary.LittleEndian.Uint32(r.buf[r.pos:]))
	r.pos += 4
	return v, nil
}

func (r *Reader) GetInt64() (int64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := int64(binary.LittleEndian.Uint64(r.buf[r.pos:]))
	r.pos += 8
	return v, nil
}

func (r *Reader) GetUint64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *Reader) GetFloat64() (float64, error) {
	bits, err := r.GetUint64()
	if err != nil {
		return 0, err
	}
	return float64frombits(bits), nil
}

// GetString reads an 8-byte length prefix and that many raw bytes.
func (r *Reader) GetString() (string, error) {
	n, err := r.GetUint64()
	if err != nil {
		return "", err
	}
	if err := r.need(int(n)); err != nil {
		return "", err
	}
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

// GetFixed reads exactly n raw bytes.
func (r *Reader) GetFixed(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// GetBytes reads exactly n raw bytes; it is an alias for GetFixed.
func (r *Reader) GetBytes(n int) ([]byte, error) {
	return r.GetFixed(n)
}

func float64bits(f float64) uint64 {
	return math.Float64bits(f)
}

func float64frombits(b uint64) float64 {
	return math.Float64frombits(b)
}

// Validate returns a wrapped ErrUnknownEnum naming the field, used by the
// op_code and status_code decoders in internal/rpcwire so a caller can log
// which field rejected the datagram. Currency codes are rejected by
// currency.FromCode with its own error, which does not wrap ErrUnknownEnum.
func Validate(field string, tag any) error {
	return fmt.Errorf("%w: %s=%v", ErrUnknownEnum, field, tag)
}
