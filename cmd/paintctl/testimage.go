package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// testPainting renders a simple painted-style image: a light blue square with
// a coral disc on a white canvas. Enough structure for img2img to latch onto.
func testPainting(size int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	white := color.RGBA{255, 255, 255, 255}
	blue := color.RGBA{173, 216, 230, 255}
	coral := color.RGBA{240, 128, 128, 255}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, white)
		}
	}
	// square roughly centered
	lo, hi := size/5, size*4/5
	for y := lo; y < hi; y++ {
		for x := lo; x < hi; x++ {
			img.SetRGBA(x, y, blue)
		}
	}
	// disc inside the square
	cx, cy := size/2, size/2
	r := size * 3 / 16
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(x, y, coral)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
