/*
Package bmp implements the subset of the Windows bitmap format used by the
conversion pipeline.

Only uncompressed images are handled. The decoder accepts 32 bits per pixel
truecolor images, the encoder writes 8 bits per pixel images with a 256 entry
palette or 1 bit per pixel images with a 2 entry palette, as well as 32 bits
per pixel truecolor images.

The file starts with a 14 byte file header followed by a 40 byte info header,
the palette, if any, as 4 bytes per entry stored blue, green, red, reserved,
and finally the pixel rows each padded with zeroes to a multiple of 4 bytes.
Pixel rows are decoded and encoded in the order they are stored, there is no
vertical flip.
*/
package bmp

const (
	fileHeaderLen = 14
	infoHeaderLen = 40
	headerLen     = fileHeaderLen + infoHeaderLen
	paletteEntry  = 4

	compressionNone      = 0
	compressionBitfields = 3
)

var signature = [2]byte{'B', 'M'}

// Dimensions is the width and height of an image in pixels.
type Dimensions struct {
	Width  int
	Height int
}

// Pixels returns the number of pixels covered by d.
func (d Dimensions) Pixels() int {
	return d.Width * d.Height
}

// Stride returns the number of bytes occupied by a row of width pixels at the
// given bit depth, rounded up to the next multiple of 4.
func Stride(width, bitCount int) int {
	return ((width*bitCount+7)/8 + 3) &^ 3
}
