package scheme

import (
	"errors"
	"image"
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"
)

var errColors = errors.New("scheme: adaptive palette needs between 3 and 256 colors")

// Adaptive maps pixels onto a palette generated from a particular image by
// median cut.
type Adaptive struct {
	palette color.Palette
	cache   map[color.NRGBA]uint8
}

// NewAdaptive returns a scheme with a palette of at most n colors chosen to
// suit m. Fewer than 3 colors would produce a 1 bit per pixel bitmap so is
// rejected; use Monochrome for that.
func NewAdaptive(m image.Image, n int) (*Adaptive, error) {
	if n < 3 || n > 256 {
		return nil, errColors
	}

	q := quantize.MedianCutQuantizer{}
	p := q.Quantize(make(color.Palette, 0, n), m)

	// Pad so the encoder always sees more than two entries
	for len(p) < 3 {
		p = append(p, color.RGBA{0x00, 0x00, 0x00, 0xff})
	}

	return &Adaptive{
		palette: p,
		cache:   make(map[color.NRGBA]uint8),
	}, nil
}

// Index returns the index of the palette entry closest to c.
func (a *Adaptive) Index(c color.NRGBA) uint8 {
	if i, ok := a.cache[c]; ok {
		return i
	}
	i := uint8(a.palette.Index(c))
	a.cache[c] = i
	return i
}

// Palette returns the generated palette.
func (a *Adaptive) Palette() color.Palette {
	return a.palette
}
