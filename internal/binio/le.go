package binio

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrShortBuffer is returned when a read runs past the end of an LE blob.
var ErrShortBuffer = errors.New("short buffer")

// LE is a bounds-checked little-endian cursor over a byte slice.
type LE struct {
	buf []byte
	off int
}

// NewLE returns a cursor positioned at the start of buf.
func NewLE(buf []byte) *LE {
	return &LE{buf: buf}
}

// Len returns the size of the underlying blob.
func (c *LE) Len() int {
	return len(c.buf)
}

// Offset returns the current read position.
func (c *LE) Offset() int {
	return c.off
}

// Seek moves the cursor to an absolute offset.
func (c *LE) Seek(off int) error {
	if off < 0 || off > len(c.buf) {
		return fmt.Errorf("%w: seek %d in %d bytes", ErrShortBuffer, off, len(c.buf))
	}
	c.off = off
	return nil
}

func (c *LE) take(n int) ([]byte, error) {
	if n < 0 || c.off+n > len(c.buf) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d of %d", ErrShortBuffer, n, c.off, len(c.buf))
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

// Byte reads one byte.
func (c *LE) Byte() (byte, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Int32 reads a little-endian signed 32-bit integer.
func (c *LE) Int32() (int32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// Uint16 reads a little-endian unsigned 16-bit integer.
func (c *LE) Uint16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Uint32 reads a little-endian unsigned 32-bit integer.
func (c *LE) Uint32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Bytes returns the next n bytes without copying.
func (c *LE) Bytes(n int) ([]byte, error) {
	return c.take(n)
}
