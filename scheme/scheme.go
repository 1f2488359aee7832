/*
Package scheme implements the color mapping schemes used to reduce a
truecolor pixel to a palette index.

A scheme pairs the reduction with the palette that undoes it so the two can
never drift apart; for every scheme Palette()[Index(c)] approximates c.
*/
package scheme

import "image/color"

// Scheme maps truecolor pixels onto a fixed palette.
type Scheme interface {
	Index(color.NRGBA) uint8
	Palette() color.Palette
}

// Average returns the integer mean of the red, green and blue channels of c.
func Average(c color.NRGBA) uint8 {
	return uint8((int(c.R) + int(c.G) + int(c.B)) / 3)
}

type rgb332 struct{}

// RGB332 packs the top three bits of red, the top three bits of green and
// the top two bits of blue into a single byte, RRRGGGBB.
var RGB332 Scheme = rgb332{}

func (rgb332) Index(c color.NRGBA) uint8 {
	return c.R&0xe0 | (c.G&0xe0)>>3 | (c.B&0xc0)>>6
}

func (rgb332) Palette() color.Palette {
	p := make(color.Palette, 256)
	for i := range p {
		p[i] = color.RGBA{
			uint8(i & 0xe0),
			uint8(i&0x1c) << 3,
			uint8(i&0x03) << 6,
			0xff,
		}
	}
	return p
}

type grayscale struct{}

// Grayscale maps each pixel onto a 256 level gray ramp using the channel
// average.
var Grayscale Scheme = grayscale{}

func (grayscale) Index(c color.NRGBA) uint8 {
	return Average(c)
}

func (grayscale) Palette() color.Palette {
	p := make(color.Palette, 256)
	for i := range p {
		p[i] = color.RGBA{uint8(i), uint8(i), uint8(i), 0xff}
	}
	return p
}

// DefaultThreshold is the channel average at or below which a pixel is black.
const DefaultThreshold = 127

// Monochrome maps each pixel to black or white by comparing the channel
// average against Threshold.
type Monochrome struct {
	Threshold uint8
}

// Index returns 1, white, if the channel average of c exceeds the threshold,
// otherwise 0, black.
func (m Monochrome) Index(c color.NRGBA) uint8 {
	if Average(c) > m.Threshold {
		return 1
	}
	return 0
}

// Palette returns black followed by white.
func (Monochrome) Palette() color.Palette {
	return color.Palette{
		color.RGBA{0x00, 0x00, 0x00, 0xff},
		color.RGBA{0xff, 0xff, 0xff, 0xff},
	}
}
