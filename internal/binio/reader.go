package binio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Reader decodes the primitives produced by Writer.
type Reader struct {
	r       io.Reader
	scratch [8]byte
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (r *Reader) fill(n int) ([]byte, error) {
	if _, err := io.ReadFull(r.r, r.scratch[:n]); err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return r.scratch[:n], nil
}

// Byte reads one unsigned byte.
func (r *Reader) Byte() (uint8, error) {
	b, err := r.fill(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// SByte reads one signed byte.
func (r *Reader) SByte() (int8, error) {
	b, err := r.Byte()
	return int8(b), err
}

// Bool reads one byte and reports whether it is non-zero.
func (r *Reader) Bool() (bool, error) {
	b, err := r.Byte()
	return b != 0, err
}

// Varint reads a 7-bit group varint of at most MaxVarintLen bytes.
func (r *Reader) Varint() (uint64, error) {
	var v uint64
	for i := 0; i < MaxVarintLen; i++ {
		b, err := r.Byte()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, ErrVarintOverflow
}

// VarintSigned reads a zig-zag encoded varint.
func (r *Reader) VarintSigned() (int64, error) {
	v, err := r.Varint()
	return UnZigZag(v), err
}

// Int reads a 4-byte big-endian integer.
func (r *Reader) Int() (int32, error) {
	b, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

// Long reads an 8-byte big-endian integer.
func (r *Reader) Long() (int64, error) {
	b, err := r.fill(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

// Float reads a 4-byte big-endian IEEE-754 value.
func (r *Reader) Float() (float32, error) {
	b, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
}

// String reads a length+1 prefixed string. A zero prefix yields nil.
func (r *Reader) String() (*string, error) {
	n, err := r.Varint()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	if n-1 > MaxStringLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrStringTooLong, n-1)
	}
	buf := make([]byte, n-1)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	s := string(buf)
	return &s, nil
}

// RGBA reads four color bytes.
func (r *Reader) RGBA() ([4]byte, error) {
	var c [4]byte
	b, err := r.fill(4)
	if err != nil {
		return c, err
	}
	copy(c[:], b)
	return c, nil
}

// RGB reads three color bytes.
func (r *Reader) RGB() ([3]byte, error) {
	var c [3]byte
	b, err := r.fill(3)
	if err != nil {
		return c, err
	}
	copy(c[:], b)
	return c, nil
}

// ShortArray reads a varint length followed by big-endian shorts.
func (r *Reader) ShortArray() ([]int, error) {
	n, err := r.Varint()
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, n)
	for i := uint64(0); i < n; i++ {
		b, err := r.fill(2)
		if err != nil {
			return nil, err
		}
		out = append(out, int(int16(binary.BigEndian.Uint16(b))))
	}
	return out, nil
}
