package binio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// MaxVarintLen is the longest varint the skeleton format accepts.
const MaxVarintLen = 10

var (
	// ErrShortOutOfRange is returned when a short array value does not fit in 16 bits.
	ErrShortOutOfRange = errors.New("short value out of range")
	// ErrVarintOverflow is returned when a varint runs past MaxVarintLen bytes.
	ErrVarintOverflow = errors.New("varint overflow")
	// ErrStringTooLong is returned when a string prefix exceeds MaxStringLen.
	ErrStringTooLong = errors.New("string too long")
)

// MaxStringLen bounds the byte length Reader.String accepts.
const MaxStringLen = 1 << 24

// Writer emits big-endian skeleton primitives. The first write error is
// latched; later writes become no-ops and Err reports it.
type Writer struct {
	w       io.Writer
	err     error
	scratch [MaxVarintLen]byte
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered by the writer.
func (w *Writer) Err() error {
	return w.err
}

// Fail latches err unless an earlier error is already recorded.
func (w *Writer) Fail(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

func (w *Writer) write(p []byte) {
	if w.err != nil {
		return
	}
	if _, err := w.w.Write(p); err != nil {
		w.err = err
	}
}

// Byte writes a single unsigned byte.
func (w *Writer) Byte(v uint8) {
	w.scratch[0] = v
	w.write(w.scratch[:1])
}

// SByte writes a single signed byte.
func (w *Writer) SByte(v int8) {
	w.Byte(uint8(v))
}

// Bool writes 1 for true and 0 for false.
func (w *Writer) Bool(v bool) {
	if v {
		w.Byte(1)
		return
	}
	w.Byte(0)
}

// Varint writes v with 7 payload bits per byte, least significant group first.
func (w *Writer) Varint(v uint64) {
	n := PutVarint(w.scratch[:], v)
	w.write(w.scratch[:n])
}

// VarintSigned zig-zag encodes v before writing it as a varint.
func (w *Writer) VarintSigned(v int64) {
	w.Varint(ZigZag(v))
}

// Int writes a 4-byte big-endian integer.
func (w *Writer) Int(v int32) {
	binary.BigEndian.PutUint32(w.scratch[:4], uint32(v))
	w.write(w.scratch[:4])
}

// Long writes an 8-byte big-endian two's complement integer.
func (w *Writer) Long(v int64) {
	binary.BigEndian.PutUint64(w.scratch[:8], uint64(v))
	w.write(w.scratch[:8])
}

// Float writes a 4-byte big-endian IEEE-754 value.
func (w *Writer) Float(v float32) {
	binary.BigEndian.PutUint32(w.scratch[:4], math.Float32bits(v))
	w.write(w.scratch[:4])
}

// String writes len+1 as a varint followed by the UTF-8 bytes. A nil
// pointer is written as 0 and the empty string as 1.
func (w *Writer) String(s *string) {
	if s == nil {
		w.Varint(0)
		return
	}
	w.Varint(uint64(len(*s)) + 1)
	if len(*s) > 0 {
		w.write([]byte(*s))
	}
}

// Str is String for a value that is always present.
func (w *Writer) Str(s string) {
	w.String(&s)
}

// ShortArray writes the length as a varint and each value as a 2-byte
// big-endian short.
func (w *Writer) ShortArray(values []int) {
	for _, v := range values {
		if v < math.MinInt16 || v > math.MaxInt16 {
			w.Fail(fmt.Errorf("%w: %d", ErrShortOutOfRange, v))
			return
		}
	}
	w.Varint(uint64(len(values)))
	for _, v := range values {
		binary.BigEndian.PutUint16(w.scratch[:2], uint16(int16(v)))
		w.write(w.scratch[:2])
	}
}

// RGBA writes four bytes parsed from an 8-digit hex string. The empty
// string stands for opaque white.
func (w *Writer) RGBA(hex string) {
	c, err := ParseRGBA(hex)
	if err != nil {
		w.Fail(err)
		return
	}
	w.write(c[:])
}

// RGB writes three bytes parsed from a 6-digit hex string. The empty string
// stands for white.
func (w *Writer) RGB(hex string) {
	c, err := ParseRGB(hex)
	if err != nil {
		w.Fail(err)
		return
	}
	w.write(c[:])
}

// PutVarint encodes v into buf and returns the number of bytes used. buf
// must hold at least MaxVarintLen bytes.
func PutVarint(buf []byte, v uint64) int {
	i := 0
	for v >= 0x80 {
		buf[i] = byte(v) | 0x80
		v >>= 7
		i++
	}
	buf[i] = byte(v)
	return i + 1
}

// ZigZag maps signed integers onto unsigned ones so small magnitudes stay short.
func ZigZag(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// UnZigZag reverses ZigZag.
func UnZigZag(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}
