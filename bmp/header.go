package bmp

import (
	"encoding/binary"
	"errors"
)

var errHeaderLength = errors.New("bmp: incorrect header length")

// FileHeader is the 14 byte BITMAPFILEHEADER structure.
type FileHeader struct {
	Signature  [2]byte
	FileSize   uint32
	Reserved   uint32
	DataOffset uint32 // Offset from the start of the file to the pixel rows
}

// MarshalBinary encodes the header into its 14 byte little-endian form.
func (h *FileHeader) MarshalBinary() ([]byte, error) {
	b := make([]byte, fileHeaderLen)
	b[0], b[1] = h.Signature[0], h.Signature[1]
	binary.LittleEndian.PutUint32(b[2:6], h.FileSize)
	binary.LittleEndian.PutUint32(b[6:10], h.Reserved)
	binary.LittleEndian.PutUint32(b[10:14], h.DataOffset)
	return b, nil
}

// UnmarshalBinary decodes the header from exactly 14 bytes.
func (h *FileHeader) UnmarshalBinary(b []byte) error {
	if len(b) != fileHeaderLen {
		return errHeaderLength
	}
	h.Signature = [2]byte{b[0], b[1]}
	h.FileSize = binary.LittleEndian.Uint32(b[2:6])
	h.Reserved = binary.LittleEndian.Uint32(b[6:10])
	h.DataOffset = binary.LittleEndian.Uint32(b[10:14])
	return nil
}

// InfoHeader is the 40 byte BITMAPINFOHEADER structure.
type InfoHeader struct {
	Size            uint32
	Width           int32
	Height          int32
	Planes          uint16
	BitCount        uint16
	Compression     uint32
	ImageSize       uint32
	XPelsPerMeter   int32
	YPelsPerMeter   int32
	ColorsUsed      uint32
	ColorsImportant uint32
}

// MarshalBinary encodes the header into its 40 byte little-endian form.
func (h *InfoHeader) MarshalBinary() ([]byte, error) {
	b := make([]byte, infoHeaderLen)
	binary.LittleEndian.PutUint32(b[0:4], h.Size)
	binary.LittleEndian.PutUint32(b[4:8], uint32(h.Width))
	binary.LittleEndian.PutUint32(b[8:12], uint32(h.Height))
	binary.LittleEndian.PutUint16(b[12:14], h.Planes)
	binary.LittleEndian.PutUint16(b[14:16], h.BitCount)
	binary.LittleEndian.PutUint32(b[16:20], h.Compression)
	binary.LittleEndian.PutUint32(b[20:24], h.ImageSize)
	binary.LittleEndian.PutUint32(b[24:28], uint32(h.XPelsPerMeter))
	binary.LittleEndian.PutUint32(b[28:32], uint32(h.YPelsPerMeter))
	binary.LittleEndian.PutUint32(b[32:36], h.ColorsUsed)
	binary.LittleEndian.PutUint32(b[36:40], h.ColorsImportant)
	return b, nil
}

// UnmarshalBinary decodes the header from exactly 40 bytes.
func (h *InfoHeader) UnmarshalBinary(b []byte) error {
	if len(b) != infoHeaderLen {
		return errHeaderLength
	}
	h.Size = binary.LittleEndian.Uint32(b[0:4])
	h.Width = int32(binary.LittleEndian.Uint32(b[4:8]))
	h.Height = int32(binary.LittleEndian.Uint32(b[8:12]))
	h.Planes = binary.LittleEndian.Uint16(b[12:14])
	h.BitCount = binary.LittleEndian.Uint16(b[14:16])
	h.Compression = binary.LittleEndian.Uint32(b[16:20])
	h.ImageSize = binary.LittleEndian.Uint32(b[20:24])
	h.XPelsPerMeter = int32(binary.LittleEndian.Uint32(b[24:28]))
	h.YPelsPerMeter = int32(binary.LittleEndian.Uint32(b[28:32]))
	h.ColorsUsed = binary.LittleEndian.Uint32(b[32:36])
	h.ColorsImportant = binary.LittleEndian.Uint32(b[36:40])
	return nil
}

func newHeaders(d Dimensions, bitCount, colors, important int) (FileHeader, InfoHeader) {
	imageSize := Stride(d.Width, bitCount) * d.Height
	offset := headerLen + colors*paletteEntry

	fh := FileHeader{
		Signature:  signature,
		FileSize:   uint32(offset + imageSize),
		DataOffset: uint32(offset),
	}

	ih := InfoHeader{
		Size:            infoHeaderLen,
		Width:           int32(d.Width),
		Height:          int32(d.Height),
		Planes:          1,
		BitCount:        uint16(bitCount),
		Compression:     compressionNone,
		ImageSize:       uint32(imageSize),
		ColorsUsed:      uint32(colors),
		ColorsImportant: uint32(important),
	}

	return fh, ih
}
