/*
Package swatch exports a palette as a color table for image editors so the
same terrain colors can be used when drawing maps.

Two formats are supported; Adobe Swatch Exchange (.ase), understood by
Photoshop, Illustrator, Krita, Aseprite and others, and GIMP palettes (.gpl).
Swatches are written in palette declaration order and named after their
terrain. The output only depends on the palette so exporting an unchanged
palette always produces identical files.
*/
package swatch

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bodgit/wbox/palette"
)

// Format is a swatch file format.
type Format int

const (
	// ASE is Adobe Swatch Exchange
	ASE Format = iota
	// GPL is a GIMP palette
	GPL
)

func (f Format) String() string {
	switch f {
	case ASE:
		return "ase"
	case GPL:
		return "gpl"
	}
	return "unknown"
}

// FormatFromPath picks the format from the file extension, defaulting to ASE.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".gpl") {
		return GPL
	}
	return ASE
}

// Encode writes p to w in format f. name is used as the palette title where
// the format has one.
func Encode(w io.Writer, p *palette.Table, name string, f Format) error {
	switch f {
	case ASE:
		return EncodeASE(w, p)
	case GPL:
		return EncodeGPL(w, p, name)
	}
	return fmt.Errorf("swatch: unknown format %d", f)
}
