package texture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}
}

func TestLoadConvertsToRGBA32(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 1))
	src.SetGray(0, 0, color.Gray{Y: 0x10})
	src.SetGray(1, 0, color.Gray{Y: 0xF0})
	path := filepath.Join(t.TempDir(), "gray.png")
	writePNG(t, path, src)

	img, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if img.Width != 2 || img.Height != 1 || img.Format != FormatRGBA32 {
		t.Fatalf("unexpected image header: %+v", img)
	}
	want := []byte{0x10, 0x10, 0x10, 0xFF, 0xF0, 0xF0, 0xF0, 0xFF}
	if !bytes.Equal(img.Pix, want) {
		t.Fatalf("pix = %x, want %x", img.Pix, want)
	}
}

func TestLoadKeepsStraightAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 128})
	path := filepath.Join(t.TempDir(), "alpha.png")
	writePNG(t, path, src)

	img, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(img.Pix, []byte{200, 100, 50, 128}) {
		t.Fatalf("pix = %v", img.Pix)
	}
}

func TestFromImageOffsetBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	src.SetNRGBA(5, 5, color.NRGBA{R: 1, A: 255})
	src.SetNRGBA(6, 5, color.NRGBA{G: 2, A: 255})
	img := FromImage(src)
	if img.Width != 2 || img.Height != 1 {
		t.Fatalf("size = %dx%d", img.Width, img.Height)
	}
	if !bytes.Equal(img.Pix, []byte{1, 0, 0, 255, 0, 2, 0, 255}) {
		t.Fatalf("pix = %v", img.Pix)
	}
}

func TestLoadRejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode for missing file, got %v", err)
	}
}

func TestCompressorPassthrough(t *testing.T) {
	img := &Image{Width: 1, Height: 1, Format: FormatRGBA32, Pix: []byte{1, 2, 3, 4}}
	var nilCompressor *Compressor
	out, err := nilCompressor.Compress(context.Background(), img, "ASTC_RGBA_4x4")
	if err != nil || out != img {
		t.Fatalf("nil compressor should pass through: %v", err)
	}
	if NewCompressor("  ") != nil {
		t.Fatal("blank binary should disable compression")
	}
	out, err = NewCompressor("unused").Compress(context.Background(), img, FormatRGBA32)
	if err != nil || out != img {
		t.Fatalf("RGBA32 should pass through: %v", err)
	}
}

func TestCompressorRunsHelper(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "compress")
	// Echo the arguments, then the pixel payload, so the test can check both.
	body := "#!/bin/sh\necho \"$@\"\ncat\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}

	img := &Image{Width: 3, Height: 2, Format: FormatRGBA32, Pix: []byte("PIXELS")}
	out, err := NewCompressor(script).Compress(context.Background(), img, "ETC2_RGBA8")
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	want := "--format ETC2_RGBA8 --width 3 --height 2\nPIXELS"
	if string(out.Pix) != want || out.Format != "ETC2_RGBA8" || out.Width != 3 {
		t.Fatalf("unexpected output %+v (%q)", out, out.Pix)
	}
}

func TestCompressorFailure(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "compress")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho bad format >&2\nexit 3\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	img := &Image{Width: 1, Height: 1, Format: FormatRGBA32, Pix: []byte{0, 0, 0, 0}}
	_, err := NewCompressor(script).Compress(context.Background(), img, "ASTC_RGBA_4x4")
	if err == nil || !bytes.Contains([]byte(err.Error()), []byte("bad format")) {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}
