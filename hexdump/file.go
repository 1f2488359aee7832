package hexdump

import (
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Compressed is the file extension that enables Zstandard compression.
const Compressed = ".zst"

type compressedWriter struct {
	*zstd.Encoder
	f *os.File
}

func (w *compressedWriter) Close() error {
	if err := w.Encoder.Close(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

type compressedReader struct {
	*zstd.Decoder
	f *os.File
}

func (r *compressedReader) Close() error {
	r.Decoder.Close()
	return r.f.Close()
}

// Create creates or truncates the named file for writing.
func Create(name string) (io.WriteCloser, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}

	if filepath.Ext(name) != Compressed {
		return f, nil
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &compressedWriter{enc, f}, nil
}

// Open opens the named file for reading.
func Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	if filepath.Ext(name) != Compressed {
		return f, nil
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &compressedReader{dec, f}, nil
}
