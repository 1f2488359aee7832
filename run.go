package bmpreduce

import (
	"errors"

	"github.com/bodgit/bmpreduce/bmp"
	"github.com/bodgit/bmpreduce/catalog"
	"github.com/bodgit/bmpreduce/scheme"
)

type stage struct {
	name string
	out  string
	run  func() error
}

// Run converts files.Input into every output named by files, one stage after
// another. Unless opts.Halt is set a failed stage does not stop the run; each
// later stage tries its own input regardless. The returned error joins the
// *StageError of every stage that failed.
func (c *Converter) Run(files Files, opts Options) error {
	d := opts.Dimensions
	if d == (bmp.Dimensions{}) {
		d = DefaultDimensions
	}

	// Only dimensions read from the source are catalogued
	var source string
	var known bmp.Dimensions
	if c.catalog != nil {
		sha, _, err := hashFile(files.Input)
		if err != nil {
			c.logger.Printf("Unable to catalog \"%s\": %v\n", files.Input, err)
		} else {
			source = sha
		}
	}

	stages := []stage{
		{StageDecode, files.Pixels, func() error {
			decoded, err := c.DecodeToHex(files.Input, files.Pixels)
			if err != nil {
				return err
			}
			known = decoded
			if decoded != d {
				c.logger.Printf("Using decoded size %dx%d instead of %dx%d\n", decoded.Width, decoded.Height, d.Width, d.Height)
				d = decoded
			}
			return nil
		}},
		{StageQuantize, files.Reduced, func() error {
			return c.Quantize(files.Pixels, files.Reduced, d, scheme.RGB332)
		}},
		{StagePalettized, files.Palettized, func() error {
			return c.EncodeIndexed(files.Reduced, files.Palettized, d, scheme.RGB332)
		}},
		{StageGrayscale, files.Grayscale, func() error {
			return c.EncodeGrayscale(files.Pixels, files.Grayscale, d)
		}},
		{StageMonochrome, files.Monochrome, func() error {
			return c.EncodeMonochrome(files.Pixels, files.Monochrome, d)
		}},
	}
	if opts.AdaptiveColors > 0 {
		stages = append(stages, stage{StageAdaptive, files.Adaptive, func() error {
			return c.EncodeAdaptive(files.Pixels, files.Adaptive, d, opts.AdaptiveColors)
		}})
	}

	var errs []error
	for _, s := range stages {
		c.logger.Printf("Running %s stage\n", s.name)

		err := s.run()
		if err != nil {
			c.logger.Println(err)
			errs = append(errs, err)
		}

		if source != "" {
			c.record(source, known, s, err)
		}

		if err != nil && opts.Halt {
			break
		}
	}

	return errors.Join(errs...)
}

func (c *Converter) record(source string, d bmp.Dimensions, s stage, stageErr error) {
	id, err := c.catalog.AddSource(source, d)
	if err != nil {
		c.logger.Printf("Unable to catalog \"%s\": %v\n", s.out, err)
		return
	}

	o := catalog.Output{
		Stage: s.name,
		Path:  s.out,
	}
	if stageErr != nil {
		o.Error = stageErr.Error()
	} else if o.SHA1, o.Size, err = hashFile(s.out); err != nil {
		o.Error = err.Error()
	}

	if err := c.catalog.AddOutput(id, o); err != nil {
		c.logger.Printf("Unable to catalog \"%s\": %v\n", s.out, err)
	}
}
