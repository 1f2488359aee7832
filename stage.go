package bmpreduce

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/bodgit/bmpreduce/bmp"
	"github.com/bodgit/bmpreduce/hexdump"
	"github.com/bodgit/bmpreduce/scheme"
)

var errIndexRange = errors.New("index outside palette")

// writeDump creates the named pixel dump and hands a writer to fn. Whatever
// fn managed to write is flushed even if it fails.
func writeDump(name string, fn func(*hexdump.Writer) error) (err error) {
	f, err := hexdump.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := hexdump.NewWriter(f)
	err = fn(w)
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	return err
}

// readDump opens the named pixel dump and hands a reader to fn.
func readDump(name string, fn func(*hexdump.Reader) error) error {
	f, err := hexdump.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	return fn(hexdump.NewReader(f))
}

// unexpectedEOF turns running out of lines into a parse error against the
// line that should have been there.
func unexpectedEOF(r *hexdump.Reader, err error) error {
	if err == io.EOF {
		return &hexdump.ParseError{Line: r.Line() + 1, Err: io.ErrUnexpectedEOF}
	}
	return err
}

func writeBitmap(name string, m *image.Paletted, o *bmp.Options) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	if err = bmp.Encode(w, m, o); err != nil {
		return err
	}
	return w.Flush()
}

func readImage(name string, d bmp.Dimensions) (*image.NRGBA, error) {
	m := image.NewNRGBA(image.Rect(0, 0, d.Width, d.Height))
	if err := readDump(name, func(r *hexdump.Reader) error {
		for y := 0; y < d.Height; y++ {
			for x := 0; x < d.Width; x++ {
				c, err := r.ReadPixel()
				if err != nil {
					return unexpectedEOF(r, err)
				}
				m.SetNRGBA(x, y, c)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return m, nil
}

func paletted(m *image.NRGBA, s scheme.Scheme) *image.Paletted {
	b := m.Bounds()
	pm := image.NewPaletted(b, s.Palette())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			pm.SetColorIndex(x, y, s.Index(m.NRGBAAt(x, y)))
		}
	}
	return pm
}

func checkDimensions(d bmp.Dimensions) error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", d.Width, d.Height)
	}
	return nil
}

// DecodeToHex decodes the 32 bits per pixel bitmap in and writes one line
// per pixel to the pixel dump out, returning the dimensions declared by the
// bitmap. Nothing is written unless the bitmap decodes.
func (c *Converter) DecodeToHex(in, out string) (bmp.Dimensions, error) {
	f, err := os.Open(in)
	if err != nil {
		return bmp.Dimensions{}, stageError(StageDecode, err)
	}
	defer f.Close()

	m, err := bmp.Decode(bufio.NewReader(f))
	if err != nil {
		return bmp.Dimensions{}, stageError(StageDecode, fmt.Errorf("%s: %w", in, err))
	}

	b := m.Bounds()
	if err := writeDump(out, func(w *hexdump.Writer) error {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if err := w.WritePixel(m.NRGBAAt(x, y)); err != nil {
					return err
				}
			}
		}
		return nil
	}); err != nil {
		return bmp.Dimensions{}, stageError(StageDecode, err)
	}

	return bmp.Dimensions{Width: b.Dx(), Height: b.Dy()}, nil
}

// Quantize reads d.Pixels() pixels from the pixel dump in and writes the
// index chosen by s for each one to the index dump out. A malformed line
// stops the stage, leaving out holding the lines before it.
func (c *Converter) Quantize(in, out string, d bmp.Dimensions, s scheme.Scheme) error {
	if err := checkDimensions(d); err != nil {
		return stageError(StageQuantize, err)
	}

	return stageError(StageQuantize, readDump(in, func(r *hexdump.Reader) error {
		return writeDump(out, func(w *hexdump.Writer) error {
			for i := 0; i < d.Pixels(); i++ {
				p, err := r.ReadPixel()
				if err != nil {
					return unexpectedEOF(r, err)
				}
				if err := w.WriteIndex(s.Index(p)); err != nil {
					return err
				}
			}
			return nil
		})
	}))
}

// EncodeIndexed reads d.Pixels() indices from the index dump in and writes
// them to the bitmap out using the palette of s, which must be the scheme
// that produced the indices.
func (c *Converter) EncodeIndexed(in, out string, d bmp.Dimensions, s scheme.Scheme) error {
	if err := checkDimensions(d); err != nil {
		return stageError(StagePalettized, err)
	}

	pm := image.NewPaletted(image.Rect(0, 0, d.Width, d.Height), s.Palette())
	if err := readDump(in, func(r *hexdump.Reader) error {
		for i := range pm.Pix {
			b, err := r.ReadIndex()
			if err != nil {
				return unexpectedEOF(r, err)
			}
			if int(b) >= len(pm.Palette) {
				return &hexdump.ParseError{Line: r.Line(), Text: fmt.Sprintf("%02X", b), Err: errIndexRange}
			}
			pm.Pix[i] = b
		}
		return nil
	}); err != nil {
		return stageError(StagePalettized, err)
	}

	// Every entry of a fixed palette is marked important
	return stageError(StagePalettized, writeBitmap(out, pm, &bmp.Options{ImportantColors: len(pm.Palette)}))
}

// EncodeGrayscale reads d.Pixels() pixels from the pixel dump in and writes
// an 8 bit bitmap to out with each pixel replaced by its channel average.
func (c *Converter) EncodeGrayscale(in, out string, d bmp.Dimensions) error {
	return c.encode(StageGrayscale, in, out, d, scheme.Grayscale)
}

// EncodeMonochrome reads d.Pixels() pixels from the pixel dump in and writes
// a 1 bit bitmap to out with each pixel thresholded to black or white.
func (c *Converter) EncodeMonochrome(in, out string, d bmp.Dimensions) error {
	return c.encode(StageMonochrome, in, out, d, scheme.Monochrome{Threshold: scheme.DefaultThreshold})
}

func (c *Converter) encode(stage, in, out string, d bmp.Dimensions, s scheme.Scheme) error {
	if err := checkDimensions(d); err != nil {
		return stageError(stage, err)
	}

	m, err := readImage(in, d)
	if err != nil {
		return stageError(stage, err)
	}

	return stageError(stage, writeBitmap(out, paletted(m, s), nil))
}

// EncodeAdaptive reads d.Pixels() pixels from the pixel dump in and writes
// an 8 bit bitmap to out using a median cut palette of up to n colors
// generated from the image itself.
func (c *Converter) EncodeAdaptive(in, out string, d bmp.Dimensions, n int) error {
	if err := checkDimensions(d); err != nil {
		return stageError(StageAdaptive, err)
	}

	m, err := readImage(in, d)
	if err != nil {
		return stageError(StageAdaptive, err)
	}

	s, err := scheme.NewAdaptive(m, n)
	if err != nil {
		return stageError(StageAdaptive, err)
	}

	return stageError(StageAdaptive, writeBitmap(out, paletted(m, s), nil))
}
