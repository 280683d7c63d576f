// Package imaging decodes uploaded raster images, normalizes them to the
// square working resolution of the diffusion pipeline, and encodes results
// back to PNG.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode parses raw image bytes in any of the registered raster formats.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("decode image: empty input")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Normalize resizes img to an exact size x size square RGBA image.
// Aspect ratio is not preserved; the diffusion runtime expects a fixed
// square canvas and the source system stretched inputs the same way.
func Normalize(img image.Image, size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("normalize: invalid target size %d", size)
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst, nil
}

// EncodePNG serializes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(img.Bounds().Dx() * img.Bounds().Dy())
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// NormalizePNG is the decode → resize → encode path used on both the
// uploaded input and the runtime's result.
func NormalizePNG(data []byte, size int) ([]byte, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	dst, err := Normalize(img, size)
	if err != nil {
		return nil, err
	}
	return EncodePNG(dst)
}
