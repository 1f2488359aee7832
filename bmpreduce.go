/*
Package bmpreduce converts a 32 bits per pixel bitmap into reduced fidelity
bitmaps: an 8 bit RGB 3-3-2 palettized image, an 8 bit grayscale image and a
1 bit monochrome image.

Every conversion goes through a plain text pixel dump written by the first
stage and read independently by the later ones, see package hexdump.
*/
package bmpreduce

import (
	"log"

	"github.com/bodgit/bmpreduce/catalog"
)

// Converter runs the conversion stages, optionally recording each result in
// a catalog.
type Converter struct {
	catalog *catalog.Catalog
	logger  *log.Logger
}

// New returns a Converter. cat may be nil.
func New(cat *catalog.Catalog, logger *log.Logger) *Converter {
	return &Converter{
		catalog: cat,
		logger:  logger,
	}
}
