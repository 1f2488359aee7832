package bmp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// truecolor builds a raw 32 bits per pixel bitmap from pixels already in
// blue, green, red, alpha order, with extra bytes between the headers and
// the pixel data.
func truecolor(t *testing.T, w, h int32, gap int, bgra []byte) []byte {
	t.Helper()

	fh := FileHeader{
		Signature:  signature,
		FileSize:   uint32(headerLen + gap + len(bgra)),
		DataOffset: uint32(headerLen + gap),
	}
	ih := InfoHeader{
		Size:      infoHeaderLen,
		Width:     w,
		Height:    h,
		Planes:    1,
		BitCount:  32,
		ImageSize: uint32(len(bgra)),
	}

	b := new(bytes.Buffer)
	fb, err := fh.MarshalBinary()
	require.NoError(t, err)
	b.Write(fb)
	ib, err := ih.MarshalBinary()
	require.NoError(t, err)
	b.Write(ib)
	b.Write(make([]byte, gap))
	b.Write(bgra)

	return b.Bytes()
}

func TestDecodeReordersChannels(t *testing.T) {
	raw := truecolor(t, 2, 1, 12, []byte{
		0x30, 0x20, 0x10, 0x40, // blue, green, red, alpha
		0xcc, 0xbb, 0xaa, 0xff,
	})

	m, err := Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 2, 1), m.Bounds())
	assert.Equal(t, color.NRGBA{0x10, 0x20, 0x30, 0x40}, m.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{0xaa, 0xbb, 0xcc, 0xff}, m.NRGBAAt(1, 0))
}

func TestDecodeKeepsRowOrder(t *testing.T) {
	raw := truecolor(t, 1, 2, 0, []byte{
		0x00, 0x00, 0x01, 0xff,
		0x00, 0x00, 0x02, 0xff,
	})

	m, err := Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, uint8(1), m.NRGBAAt(0, 0).R)
	assert.Equal(t, uint8(2), m.NRGBAAt(0, 1).R)
}

func TestDecodeTopDown(t *testing.T) {
	raw := truecolor(t, 1, -2, 0, make([]byte, 8))

	cfg, err := DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Width)
	assert.Equal(t, 2, cfg.Height)
}

func TestDecodeErrors(t *testing.T) {
	good := truecolor(t, 2, 2, 0, make([]byte, 16))

	tables := []struct {
		name   string
		mangle func([]byte) []byte
		err    error
	}{
		{
			name: "24 bits per pixel",
			mangle: func(b []byte) []byte {
				binary.LittleEndian.PutUint16(b[28:30], 24)
				return b
			},
			err: ErrUnsupportedFormat,
		},
		{
			name: "bad signature",
			mangle: func(b []byte) []byte {
				b[0] = 'X'
				return b
			},
			err: ErrUnsupportedFormat,
		},
		{
			name: "run length encoded",
			mangle: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[30:34], 1)
				return b
			},
			err: ErrUnsupportedFormat,
		},
		{
			name: "zero width",
			mangle: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[18:22], 0)
				return b
			},
			err: ErrUnsupportedFormat,
		},
		{
			name: "huge dimensions",
			mangle: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[18:22], 0x7fffffff)
				binary.LittleEndian.PutUint32(b[22:26], 0x7fffffff)
				return b
			},
			err: ErrUnsupportedFormat,
		},
		{
			name: "too many pixels",
			mangle: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[18:22], 50000)
				binary.LittleEndian.PutUint32(b[22:26], 50000)
				return b
			},
			err: ErrUnsupportedFormat,
		},
		{
			name: "dimensions larger than data",
			mangle: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[18:22], 8000)
				binary.LittleEndian.PutUint32(b[22:26], 8000)
				return b
			},
			err: errNotEnough,
		},
		{
			name: "truncated header",
			mangle: func(b []byte) []byte {
				return b[:20]
			},
			err: errNotEnough,
		},
		{
			name: "truncated pixels",
			mangle: func(b []byte) []byte {
				return b[:len(b)-1]
			},
			err: errNotEnough,
		},
		{
			name: "offset inside headers",
			mangle: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[10:14], 20)
				return b
			},
			err: errBadOffset,
		},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			raw := table.mangle(append([]byte(nil), good...))
			_, err := Decode(bytes.NewReader(raw))
			assert.Equal(t, table.err, err)
		})
	}
}

func TestIsFormatError(t *testing.T) {
	for _, err := range []error{ErrUnsupportedFormat, errNotEnough, errBadOffset, errHeaderLength} {
		assert.True(t, IsFormatError(fmt.Errorf("input.bmp: %w", err)), err.Error())
	}
	assert.False(t, IsFormatError(io.ErrClosedPipe))
}
