// Package render turns an NDVI composite into displayable artifacts.
package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/eugene-tulu/ndvi-explorer/ndvi"
)

// ylGnStops is the ColorBrewer YlGn scale used by the heatmap,
// low NDVI first
var ylGnStops = []color.NRGBA{
	{R: 0xff, G: 0xff, B: 0xe5, A: 0xff},
	{R: 0xf7, G: 0xfc, B: 0xb9, A: 0xff},
	{R: 0xd9, G: 0xf0, B: 0xa3, A: 0xff},
	{R: 0xad, G: 0xdd, B: 0x8e, A: 0xff},
	{R: 0x78, G: 0xc6, B: 0x79, A: 0xff},
	{R: 0x41, G: 0xab, B: 0x5d, A: 0xff},
	{R: 0x23, G: 0x84, B: 0x43, A: 0xff},
	{R: 0x00, G: 0x68, B: 0x37, A: 0xff},
	{R: 0x00, G: 0x45, B: 0x29, A: 0xff},
}

// Heatmap renders the composite as a color-mapped image, row origin at the
// top. No-data pixels are fully transparent.
func Heatmap(composite *ndvi.Composite) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, composite.Grid.Width, composite.Grid.Height))
	for row := 0; row < composite.Grid.Height; row++ {
		for col := 0; col < composite.Grid.Width; col++ {
			img.SetNRGBA(col, row, colorFor(composite.At(col, row)))
		}
	}
	return img
}

// EncodePNG writes the image as PNG
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// colorFor maps an NDVI value in [-1, 1] onto the YlGn scale
func colorFor(value float64) color.NRGBA {
	if math.IsNaN(value) {
		return color.NRGBA{}
	}
	t := (value + 1) / 2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	scaled := t * float64(len(ylGnStops)-1)
	lower := int(scaled)
	if lower >= len(ylGnStops)-1 {
		return ylGnStops[len(ylGnStops)-1]
	}
	frac := scaled - float64(lower)
	a, b := ylGnStops[lower], ylGnStops[lower+1]

	return color.NRGBA{
		R: lerp(a.R, b.R, frac),
		G: lerp(a.G, b.G, frac),
		B: lerp(a.B, b.B, frac),
		A: 0xff,
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}
