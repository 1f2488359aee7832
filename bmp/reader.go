package bmp

import (
	"errors"
	"image"
	"image/color"
	"io"
)

var (
	// ErrUnsupportedFormat is returned for anything other than an
	// uncompressed 32 bits per pixel bitmap.
	ErrUnsupportedFormat = errors.New("bmp: unsupported format")

	errNotEnough = errors.New("bmp: not enough image data")
	errBadOffset = errors.New("bmp: invalid pixel data offset")
)

// MaxPixels caps the width times height a header may declare, the pixel
// data would need 4 bytes per pixel.
const MaxPixels = 1 << 26

// IsFormatError reports whether err is due to the contents of a bitmap
// rather than a failure to read it.
func IsFormatError(err error) bool {
	for _, e := range []error{ErrUnsupportedFormat, errNotEnough, errBadOffset, errHeaderLength} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

type decoder struct {
	r io.Reader

	file FileHeader
	info InfoHeader

	dims  Dimensions
	image *image.NRGBA
}

func (d *decoder) readHeaders() error {
	var b [headerLen]byte
	if err := readFull(d.r, b[:]); err != nil {
		return err
	}

	if err := d.file.UnmarshalBinary(b[:fileHeaderLen]); err != nil {
		return err
	}
	if err := d.info.UnmarshalBinary(b[fileHeaderLen:]); err != nil {
		return err
	}

	if d.file.Signature != signature || d.info.BitCount != 32 {
		return ErrUnsupportedFormat
	}

	switch d.info.Compression {
	case compressionNone, compressionBitfields:
	default:
		return ErrUnsupportedFormat
	}

	// A negative height marks a top-down bitmap, rows are read as stored
	// either way so only the magnitude matters
	height := int(d.info.Height)
	if height < 0 {
		height = -height
	}
	if d.info.Width <= 0 || height == 0 {
		return ErrUnsupportedFormat
	}
	if int64(d.info.Width)*int64(height) > MaxPixels {
		return ErrUnsupportedFormat
	}

	d.dims = Dimensions{Width: int(d.info.Width), Height: height}

	return nil
}

func (d *decoder) readPixels() error {
	if d.file.DataOffset < headerLen {
		return errBadOffset
	}

	// Skip anything between the headers and the pixel data, such as
	// bitfield masks or a larger info header
	if _, err := io.CopyN(io.Discard, d.r, int64(d.file.DataOffset-headerLen)); err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}

	// Grow the pixel buffer a row at a time so a header claiming far more
	// data than the file holds fails without allocating it all up front
	stride := d.dims.Width * 4
	row := make([]byte, stride)
	var pix []byte
	for y := 0; y < d.dims.Height; y++ {
		if err := readFull(d.r, row); err != nil {
			return err
		}

		// Pixels are stored blue, green, red, alpha
		for i := 0; i < stride; i += 4 {
			pix = append(pix, row[i+2], row[i+1], row[i+0], row[i+3])
		}
	}

	d.image = &image.NRGBA{
		Pix:    pix,
		Stride: stride,
		Rect:   image.Rect(0, 0, d.dims.Width, d.dims.Height),
	}

	return nil
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	d.r = r

	if err := d.readHeaders(); err != nil {
		if err != io.ErrUnexpectedEOF {
			return err
		}
		return errNotEnough
	}

	if configOnly {
		return nil
	}

	if err := d.readPixels(); err != nil {
		if err != io.ErrUnexpectedEOF {
			return err
		}
		return errNotEnough
	}

	return nil
}

// Decode reads a 32 bits per pixel bitmap from r and returns it as an
// *image.NRGBA with the rows in the order they are stored in the file.
func Decode(r io.Reader) (*image.NRGBA, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}
	return d.image, nil
}

// DecodeConfig returns the color model and dimensions of a 32 bits per pixel
// bitmap without decoding the pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      d.dims.Width,
		Height:     d.dims.Height,
	}, nil
}
