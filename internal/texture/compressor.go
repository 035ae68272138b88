package texture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Compressor runs an external block-compression executable. The helper
// reads RGBA32 pixels on stdin and writes the encoded texture to stdout:
//
//	<binary> --format <format> --width <w> --height <h>
type Compressor struct {
	Binary string
}

// NewCompressor returns a compressor, or nil when binary is empty.
func NewCompressor(binary string) *Compressor {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil
	}
	return &Compressor{Binary: binary}
}

// Compress encodes img into format. RGBA32 and a nil compressor return img
// unchanged.
func (c *Compressor) Compress(ctx context.Context, img *Image, format string) (*Image, error) {
	if img == nil {
		return nil, errors.New("texture compress: nil image")
	}
	if c == nil || format == "" || format == FormatRGBA32 || img.Format == format {
		return img, nil
	}
	if img.Format != FormatRGBA32 {
		return nil, fmt.Errorf("texture compress: source format %s, want %s", img.Format, FormatRGBA32)
	}

	cmd := exec.CommandContext(ctx, c.Binary,
		"--format", format,
		"--width", strconv.Itoa(img.Width),
		"--height", strconv.Itoa(img.Height),
	)
	cmd.Stdin = bytes.NewReader(img.Pix)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("texture compress: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, errors.New("texture compress: compressor produced no output")
	}
	return &Image{Width: img.Width, Height: img.Height, Format: format, Pix: stdout.Bytes()}, nil
}
