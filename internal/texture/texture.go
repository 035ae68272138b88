// Package texture prepares replacement images for Texture2D assets.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	// Decoders for the mod image formats seen in the wild.
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// FormatRGBA32 is the uncompressed 8-bit-per-channel texture format.
const FormatRGBA32 = "RGBA32"

// ErrDecode marks a file that is not a readable image.
var ErrDecode = errors.New("texture: cannot decode image")

// Image is texture data ready to be written into a bundle. For RGBA32 Pix
// holds Width*Height*4 bytes of straight-alpha pixels, rows top to bottom.
// Compressed formats carry the compressor's output verbatim.
type Image struct {
	Width  int
	Height int
	Format string
	Pix    []byte
}

// Load decodes a PNG or JPEG file and converts it to RGBA32.
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	return FromImage(src), nil
}

// FromImage converts any decoded image to RGBA32.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	dst, ok := src.(*image.NRGBA)
	if !ok || dst.Rect.Min != (image.Point{}) || dst.Stride != 4*b.Dx() {
		dst = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	}
	return &Image{Width: b.Dx(), Height: b.Dy(), Format: FormatRGBA32, Pix: dst.Pix}
}
