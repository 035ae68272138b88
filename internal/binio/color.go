package binio

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultRGBA is used when a color field is absent.
	DefaultRGBA = "ffffffff"
	// DefaultRGB is used when a tint-black color field is absent.
	DefaultRGB = "ffffff"
)

// ParseRGBA parses a hex color into r, g, b, a bytes. Shorter strings are
// treated as numbers, so "ff" yields 00 00 00 ff.
func ParseRGBA(hex string) ([4]byte, error) {
	v, err := parseHex(hex, DefaultRGBA)
	if err != nil {
		return [4]byte{}, err
	}
	return [4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}, nil
}

// ParseRGB parses a hex color into r, g, b bytes.
func ParseRGB(hex string) ([3]byte, error) {
	v, err := parseHex(hex, DefaultRGB)
	if err != nil {
		return [3]byte{}, err
	}
	return [3]byte{byte(v >> 16), byte(v >> 8), byte(v)}, nil
}

// FormatRGBA renders four color bytes as lowercase hex.
func FormatRGBA(c [4]byte) string {
	return fmt.Sprintf("%02x%02x%02x%02x", c[0], c[1], c[2], c[3])
}

func parseHex(hex, fallback string) (uint64, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		hex = fallback
	}
	v, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse color %q: %w", hex, err)
	}
	return v, nil
}
