package bmp

import (
	"errors"
	"image"
	"image/color"
	"io"
)

var (
	errTooManyColors = errors.New("bmp: more than 256 palette entries")
	errEmptyImage    = errors.New("bmp: image has no pixels")
	errImportant     = errors.New("bmp: important colors exceed palette size")
)

// Options are the encoding parameters.
type Options struct {
	// ImportantColors is written as the number of important colors in the
	// info header. Zero means all of them.
	ImportantColors int
}

type encoder struct {
	w io.Writer
}

func (e *encoder) writeHeaders(d Dimensions, bitCount, colors, important int) error {
	fh, ih := newHeaders(d, bitCount, colors, important)

	b, err := fh.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := e.w.Write(b); err != nil {
		return err
	}

	if b, err = ih.MarshalBinary(); err != nil {
		return err
	}
	_, err = e.w.Write(b)
	return err
}

func (e *encoder) writePalette(p color.Palette, colors int) error {
	b := make([]byte, colors*paletteEntry)
	for i, c := range p {
		r, g, bl, _ := c.RGBA()
		b[i*paletteEntry+0] = byte(bl >> 8)
		b[i*paletteEntry+1] = byte(g >> 8)
		b[i*paletteEntry+2] = byte(r >> 8)
	}
	_, err := e.w.Write(b)
	return err
}

func (e *encoder) writeRows(m *image.Paletted, bitCount int) error {
	b := m.Bounds()
	row := make([]byte, Stride(b.Dx(), bitCount))

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for i := range row {
			row[i] = 0
		}

		pix := m.Pix[m.PixOffset(b.Min.X, y) : m.PixOffset(b.Min.X, y)+b.Dx()]
		switch bitCount {
		case 1:
			// Eight pixels per byte, leftmost pixel in the most
			// significant bit
			for x, p := range pix {
				if p&0x01 != 0 {
					row[x>>3] |= 0x80 >> uint(x&7)
				}
			}
		default:
			copy(row, pix)
		}

		if _, err := e.w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

// Encode writes the paletted image m to w. A palette of 2 or fewer colors
// produces a 1 bit per pixel bitmap with a 2 entry palette, anything else an
// 8 bits per pixel bitmap with a 256 entry palette. Unused palette entries
// are written as black. Options may be nil.
func Encode(w io.Writer, m *image.Paletted, o *Options) error {
	b := m.Bounds()
	if b.Empty() {
		return errEmptyImage
	}

	bitCount, colors := 8, 256
	switch n := len(m.Palette); {
	case n > colors:
		return errTooManyColors
	case n <= 2:
		bitCount, colors = 1, 2
	}

	var important int
	if o != nil {
		important = o.ImportantColors
	}
	if important < 0 || important > colors {
		return errImportant
	}

	e := encoder{w: w}

	if err := e.writeHeaders(Dimensions{Width: b.Dx(), Height: b.Dy()}, bitCount, colors, important); err != nil {
		return err
	}

	if err := e.writePalette(m.Palette, colors); err != nil {
		return err
	}

	return e.writeRows(m, bitCount)
}

// EncodeTruecolor writes m to w as a 32 bits per pixel bitmap. Rows are
// written bottom-up so the result displays the right way up in other
// software.
func EncodeTruecolor(w io.Writer, m image.Image) error {
	b := m.Bounds()
	if b.Empty() {
		return errEmptyImage
	}

	e := encoder{w: w}

	if err := e.writeHeaders(Dimensions{Width: b.Dx(), Height: b.Dy()}, 32, 0, 0); err != nil {
		return err
	}

	row := make([]byte, Stride(b.Dx(), 32))
	for y := b.Max.Y - 1; y >= b.Min.Y; y-- {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
			i := (x - b.Min.X) * 4
			row[i+0], row[i+1], row[i+2], row[i+3] = c.B, c.G, c.R, c.A
		}
		if _, err := e.w.Write(row); err != nil {
			return err
		}
	}

	return nil
}
