package bmpreduce

import (
	"path/filepath"

	"github.com/bodgit/bmpreduce/bmp"
	"github.com/bodgit/bmpreduce/catalog"
	"github.com/bodgit/bmpreduce/hexdump"
)

// Stage names.
const (
	StageDecode     = "decode"
	StageQuantize   = "quantize"
	StagePalettized = "palettized"
	StageGrayscale  = "grayscale"
	StageMonochrome = "monochrome"
	StageAdaptive   = "adaptive"
)

// DefaultDimensions is the working size assumed by every stage after the
// decode.
var DefaultDimensions = bmp.Dimensions{Width: 960, Height: 640}

// Files names the input, the intermediate pixel dumps and the outputs of a
// conversion.
type Files struct {
	Input      string // 32 bits per pixel source bitmap
	Pixels     string // Full pixel dump
	Reduced    string // RGB 3-3-2 index dump
	Palettized string
	Grayscale  string
	Monochrome string
	Adaptive   string
}

// DefaultFiles returns the fixed file names used by the pipeline, rooted in
// dir.
func DefaultFiles(dir string) Files {
	return Files{
		Input:      filepath.Join(dir, "input.bmp"),
		Pixels:     filepath.Join(dir, "temp_output.hex"),
		Reduced:    filepath.Join(dir, "reduced_output.hex"),
		Palettized: filepath.Join(dir, "final_image.bmp"),
		Grayscale:  filepath.Join(dir, "grayscale8.bmp"),
		Monochrome: filepath.Join(dir, "binary1.bmp"),
		Adaptive:   filepath.Join(dir, "adaptive8.bmp"),
	}
}

// Compressed returns a copy of f with both pixel dumps Zstandard compressed.
func (f Files) Compressed() Files {
	f.Pixels += hexdump.Compressed
	f.Reduced += hexdump.Compressed
	return f
}

// Options control a conversion run.
type Options struct {
	// Dimensions is used by every stage after the decode if the decode
	// fails, otherwise the decoded dimensions are used.
	Dimensions bmp.Dimensions
	// Halt stops the run at the first failed stage, otherwise every stage
	// runs regardless and works with whatever its predecessors left.
	Halt bool
	// AdaptiveColors enables an extra stage producing an 8 bit bitmap with
	// a median cut palette of up to this many colors.
	AdaptiveColors int
}

// DefaultOptions returns the options matching the fixed pipeline.
func DefaultOptions() Options {
	return Options{
		Dimensions: DefaultDimensions,
	}
}

// outputs lists the file each stage enabled by opts writes.
func (f Files) outputs(opts Options) []catalog.Output {
	o := []catalog.Output{
		{Stage: StageDecode, Path: f.Pixels},
		{Stage: StageQuantize, Path: f.Reduced},
		{Stage: StagePalettized, Path: f.Palettized},
		{Stage: StageGrayscale, Path: f.Grayscale},
		{Stage: StageMonochrome, Path: f.Monochrome},
	}
	if opts.AdaptiveColors > 0 {
		o = append(o, catalog.Output{Stage: StageAdaptive, Path: f.Adaptive})
	}
	return o
}
