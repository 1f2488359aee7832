/*
Package hexdump implements the plain text pixel interchange format shared by
the conversion stages.

Each line holds either one pixel as eight hexadecimal digits, two each for
red, green, blue and alpha in that order, or one quantized palette index as
two hexadecimal digits. Lines are terminated with a single newline.

Files whose name ends in ".zst" are transparently compressed with Zstandard.
*/
package hexdump

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"
)

const (
	pixelDigits = 8
	indexDigits = 2
)

// ParseError records a line that does not hold exactly the expected number of
// hexadecimal digits, or that could not be read at all.
type ParseError struct {
	Line int // 1-based
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("hexdump: line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	errFieldCount = errors.New("wrong number of fields")
	errBadDigit   = errors.New("invalid hexadecimal digit")
)

// Writer writes pixels or indices to an underlying io.Writer. Call Flush
// once done, including after an error, to push out every complete line.
type Writer struct {
	w   *bufio.Writer
	tmp [pixelDigits + 1]byte
}

// NewWriter returns a new Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WritePixel writes c as a single red, green, blue, alpha line.
func (w *Writer) WritePixel(c color.NRGBA) error {
	hex.Encode(w.tmp[:pixelDigits], []byte{c.R, c.G, c.B, c.A})
	upper(w.tmp[:pixelDigits])
	w.tmp[pixelDigits] = '\n'
	_, err := w.w.Write(w.tmp[:])
	return err
}

// WriteIndex writes b as a single two digit line.
func (w *Writer) WriteIndex(b uint8) error {
	hex.Encode(w.tmp[:indexDigits], []byte{b})
	upper(w.tmp[:indexDigits])
	w.tmp[indexDigits] = '\n'
	_, err := w.w.Write(w.tmp[:indexDigits+1])
	return err
}

// Flush writes any buffered lines to the underlying io.Writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

func upper(b []byte) {
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 'a' + 'A'
		}
	}
}

// Reader reads pixels or indices from an underlying io.Reader.
type Reader struct {
	s    *bufio.Scanner
	line int
	tmp  [pixelDigits / 2]byte
}

// NewReader returns a new Reader reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{s: bufio.NewScanner(r)}
}

// Line returns the number of the line most recently read.
func (r *Reader) Line() int {
	return r.line
}

// next returns the next non-blank line, or io.EOF
func (r *Reader) next() (string, error) {
	for r.s.Scan() {
		r.line++
		if text := strings.TrimSpace(r.s.Text()); text != "" {
			return text, nil
		}
	}
	if err := r.s.Err(); err != nil {
		return "", &ParseError{Line: r.line + 1, Err: err}
	}
	return "", io.EOF
}

func (r *Reader) parse(digits int) ([]byte, error) {
	text, err := r.next()
	if err != nil {
		return nil, err
	}

	if len(text) != digits {
		return nil, &ParseError{Line: r.line, Text: text, Err: errFieldCount}
	}
	b := r.tmp[:digits/2]
	if _, err := hex.Decode(b, []byte(text)); err != nil {
		return nil, &ParseError{Line: r.line, Text: text, Err: errBadDigit}
	}
	return b, nil
}

// ReadPixel reads the next red, green, blue, alpha line. It returns io.EOF
// once there are no more lines.
func (r *Reader) ReadPixel() (color.NRGBA, error) {
	b, err := r.parse(pixelDigits)
	if err != nil {
		return color.NRGBA{}, err
	}
	return color.NRGBA{R: b[0], G: b[1], B: b[2], A: b[3]}, nil
}

// ReadIndex reads the next two digit line. It returns io.EOF once there are
// no more lines.
func (r *Reader) ReadIndex() (uint8, error) {
	b, err := r.parse(indexDigits)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}
