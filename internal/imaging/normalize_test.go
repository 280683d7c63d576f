package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode(nil); err == nil {
		t.Fatalf("expected error for empty input")
	}
	if _, err := Decode([]byte("not an image")); err == nil {
		t.Fatalf("expected error for corrupt input")
	}
}

func TestNormalizeStretchesToSquare(t *testing.T) {
	img, err := Decode(pngBytes(t, 640, 200))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	dst, err := Normalize(img, 512)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got := dst.Bounds(); got.Dx() != 512 || got.Dy() != 512 {
		t.Fatalf("bounds=%v, want 512x512", got)
	}
}

func TestNormalizeInvalidSize(t *testing.T) {
	if _, err := Normalize(image.NewRGBA(image.Rect(0, 0, 4, 4)), 0); err == nil {
		t.Fatalf("expected error for size 0")
	}
}

func TestNormalizePNGRoundTrip(t *testing.T) {
	out, err := NormalizePNG(pngBytes(t, 100, 300), 256)
	if err != nil {
		t.Fatalf("normalize png: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if format != "png" || cfg.Width != 256 || cfg.Height != 256 {
		t.Fatalf("format=%s size=%dx%d, want png 256x256", format, cfg.Width, cfg.Height)
	}
}

func TestNormalizePNGAcceptsJPEG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 32, 32))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}
	out, err := NormalizePNG(buf.Bytes(), 64)
	if err != nil {
		t.Fatalf("normalize jpeg: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(out)); err != nil {
		t.Fatalf("result is not png: %v", err)
	}
}
