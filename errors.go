package bmpreduce

import (
	"errors"
	"fmt"

	"github.com/bodgit/bmpreduce/bmp"
	"github.com/bodgit/bmpreduce/hexdump"
)

// Kind classifies why a stage failed.
type Kind int

const (
	// KindIO is a file that could not be opened, read or written.
	KindIO Kind = iota + 1
	// KindUnsupportedFormat is a source bitmap that is not an uncompressed
	// 32 bits per pixel image, or is corrupt.
	KindUnsupportedFormat
	// KindParse is a pixel dump line without the expected hexadecimal
	// fields, or a pixel dump that ends early.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "i/o error"
	case KindUnsupportedFormat:
		return "unsupported format"
	case KindParse:
		return "parse error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// StageError is returned by every stage that fails.
type StageError struct {
	Stage string
	Kind  Kind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func kindOf(err error) Kind {
	var pe *hexdump.ParseError
	switch {
	case errors.As(err, &pe):
		return KindParse
	case bmp.IsFormatError(err):
		return KindUnsupportedFormat
	default:
		return KindIO
	}
}

func stageError(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{
		Stage: stage,
		Kind:  kindOf(err),
		Err:   err,
	}
}

// IsKind reports whether any stage error in err's tree is of kind k.
func IsKind(err error, k Kind) bool {
	switch e := err.(type) {
	case *StageError:
		return e.Kind == k
	case interface{ Unwrap() []error }:
		for _, err := range e.Unwrap() {
			if IsKind(err, k) {
				return true
			}
		}
	case interface{ Unwrap() error }:
		return IsKind(e.Unwrap(), k)
	}
	return false
}
