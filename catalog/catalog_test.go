package catalog

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bodgit/bmpreduce/bmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sha = "DA39A3EE5E6B4B0D3255BFEF95601890AFD80709"

func newCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestAddSource(t *testing.T) {
	c := newCatalog(t)

	id, err := c.AddSource(sha, bmp.Dimensions{})
	require.NoError(t, err)

	_, ok, err := c.Dimensions(sha)
	require.NoError(t, err)
	assert.False(t, ok)

	again, err := c.AddSource(sha, bmp.Dimensions{Width: 960, Height: 640})
	require.NoError(t, err)
	assert.Equal(t, id, again)

	d, ok, err := c.Dimensions(sha)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, bmp.Dimensions{Width: 960, Height: 640}, d)

	_, ok, err = c.Dimensions("unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddSourceConcurrent(t *testing.T) {
	c := newCatalog(t)

	const workers = 8

	var wg sync.WaitGroup
	ids := make([]int64, workers)
	errs := make([]error, workers)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = c.AddSource(sha, bmp.Dimensions{Width: 4, Height: 4})
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
}

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	file := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(file, make([]byte, size), 0o644))
	return file
}

func TestOutputs(t *testing.T) {
	c := newCatalog(t)
	dir := t.TempDir()

	grayscale := writeFile(t, dir, "grayscale8.bmp", 1094)
	pixels := writeFile(t, dir, "temp_output.hex", 36)
	monochrome := filepath.Join(dir, "binary1.bmp")

	id, err := c.AddSource(sha, bmp.Dimensions{Width: 2, Height: 2})
	require.NoError(t, err)

	require.NoError(t, c.AddOutput(id, Output{Stage: "grayscale", Path: grayscale, SHA1: "AB", Size: 1094}))
	require.NoError(t, c.AddOutput(id, Output{Stage: "decode", Path: pixels, Error: "bmp: unsupported format"}))

	want := []Output{{Stage: "decode", Path: pixels}, {Stage: "grayscale", Path: grayscale}}

	complete, err := c.Complete(sha, want)
	require.NoError(t, err)
	assert.False(t, complete)

	// A later successful run replaces the failure
	require.NoError(t, c.AddOutput(id, Output{Stage: "decode", Path: pixels, SHA1: "CD", Size: 36}))

	outputs, err := c.Outputs(sha)
	require.NoError(t, err)
	assert.Equal(t, []Output{
		{Stage: "decode", Path: pixels, SHA1: "CD", Size: 36},
		{Stage: "grayscale", Path: grayscale, SHA1: "AB", Size: 1094},
	}, outputs)

	complete, err = c.Complete(sha, want)
	require.NoError(t, err)
	assert.True(t, complete)

	complete, err = c.Complete(sha, []Output{{Stage: "decode", Path: pixels}, {Stage: "monochrome", Path: monochrome}})
	require.NoError(t, err)
	assert.False(t, complete)
}

func TestCompleteChecksPaths(t *testing.T) {
	c := newCatalog(t)
	first, second := t.TempDir(), t.TempDir()

	grayscale := writeFile(t, first, "grayscale8.bmp", 1094)

	id, err := c.AddSource(sha, bmp.Dimensions{Width: 2, Height: 2})
	require.NoError(t, err)
	require.NoError(t, c.AddOutput(id, Output{Stage: "grayscale", Path: grayscale, SHA1: "AB", Size: 1094}))

	complete, err := c.Complete(sha, []Output{{Stage: "grayscale", Path: grayscale}})
	require.NoError(t, err)
	assert.True(t, complete)

	// Same content converted somewhere else
	complete, err = c.Complete(sha, []Output{{Stage: "grayscale", Path: filepath.Join(second, "grayscale8.bmp")}})
	require.NoError(t, err)
	assert.False(t, complete)

	// Truncated since it was recorded
	require.NoError(t, os.WriteFile(grayscale, make([]byte, 10), 0o644))
	complete, err = c.Complete(sha, []Output{{Stage: "grayscale", Path: grayscale}})
	require.NoError(t, err)
	assert.False(t, complete)

	require.NoError(t, os.Remove(grayscale))
	complete, err = c.Complete(sha, []Output{{Stage: "grayscale", Path: grayscale}})
	require.NoError(t, err)
	assert.False(t, complete)
}
