package bmpreduce

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/bmpreduce/bmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepare(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "source.png")

	src := image.NewRGBA(image.Rect(0, 0, 32, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 32; x++ {
			src.SetRGBA(x, y, color.RGBA{0x20, 0x40, 0x60, 0xff})
		}
	}

	f, err := os.Create(in)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, src))
	require.NoError(t, f.Close())

	files := DefaultFiles(dir)
	c := newConverter(nil)

	require.NoError(t, c.Prepare(in, files.Input, bmp.Dimensions{Width: 8, Height: 4}))

	d, err := c.DecodeToHex(files.Input, files.Pixels)
	require.NoError(t, err)
	assert.Equal(t, bmp.Dimensions{Width: 8, Height: 4}, d)

	m, err := readImage(files.Pixels, d)
	require.NoError(t, err)
	// Resampling a flat image may be off by a rounding error at most
	got := m.NRGBAAt(3, 2)
	assert.InDelta(t, 0x20, got.R, 1)
	assert.InDelta(t, 0x40, got.G, 1)
	assert.InDelta(t, 0x60, got.B, 1)
	assert.InDelta(t, 0xff, got.A, 1)
}

func TestPrepareErrors(t *testing.T) {
	dir := t.TempDir()
	c := newConverter(nil)

	assert.Error(t, c.Prepare(filepath.Join(dir, "missing.png"), filepath.Join(dir, "out.bmp"), DefaultDimensions))
	assert.Error(t, c.Prepare(filepath.Join(dir, "missing.png"), filepath.Join(dir, "out.bmp"), bmp.Dimensions{}))
}
