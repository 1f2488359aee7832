package bmpreduce

import (
	"bufio"
	"image"
	_ "image/gif"  // gif decoder
	_ "image/jpeg" // jpeg decoder
	_ "image/png"  // png decoder
	"os"

	"github.com/bodgit/bmpreduce/bmp"
	_ "golang.org/x/image/bmp" // bmp decoder for depths other than 32
	"golang.org/x/image/draw"
)

// Prepare decodes any registered image format from in, resamples it to d and
// writes it to out as a 32 bits per pixel bitmap suitable as the input of
// Run.
func (c *Converter) Prepare(in, out string, d bmp.Dimensions) (err error) {
	if err := checkDimensions(d); err != nil {
		return err
	}

	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	src, format, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return err
	}

	sb := src.Bounds()
	c.logger.Printf("Resampling %s image \"%s\" from %dx%d to %dx%d\n", format, in, sb.Dx(), sb.Dy(), d.Width, d.Height)

	dst := image.NewNRGBA(image.Rect(0, 0, d.Width, d.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)

	o, err := os.Create(out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := o.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(o)
	if err = bmp.EncodeTruecolor(w, dst); err != nil {
		return err
	}
	return w.Flush()
}
