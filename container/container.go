/*
Package container implements the map document and its on-disk encoding.

A map file is a zlib stream holding a single JSON object. The keys are
written in sorted order with no insignificant whitespace so identical
documents always encode to identical bytes:

	$wbox            {"name":"wbox-map","version":1}
	height           map height in tiles
	laws             object of law name to boolean, every known law present
	tiles            array of {"terrain_id":string,"frozen":bool}, row-major
	width            map width in tiles

Every key from the map template is written alongside these. A template may
not declare width, height, tiles or laws, and the $wbox marker must not be
used either when writing this layout. Tile coordinates
are implied by their position in the array; tile i is at (i % width,
i / width) with the origin in the top-left corner.

Maps can also be written in the layout the WorldBox game itself loads, see
WorldBox.
*/
package container

import (
	"fmt"
	"math"
	"sort"

	"github.com/bodgit/wbox/laws"
	"github.com/bodgit/wbox/template"
)

const (
	// FormatName identifies map files written by this package
	FormatName = "wbox-map"
	// Version is the current format version
	Version = 1
)

// Keys owned by the document rather than the template.
const (
	KeyWidth  = "width"
	KeyHeight = "height"
	KeyTiles  = "tiles"
	KeyLaws   = "laws"
)

// KeyFormat holds the format marker in the native layout.
const KeyFormat = "$wbox"

// ReservedKeys lists the top level keys a template must not declare.
var ReservedKeys = []string{KeyWidth, KeyHeight, KeyTiles, KeyLaws}

// Tile is one map cell.
type Tile struct {
	X, Y    int
	Terrain string
	Frozen  bool
}

// Document is a complete map.
type Document struct {
	Width, Height int
	// Tiles are stored row-major, len(Tiles) == Width*Height
	Tiles    []Tile
	Laws     map[string]bool
	Template template.Template
}

func (d *Document) At(x, y int) Tile {
	return d.Tiles[y*d.Width+x]
}

// EncodingError is returned when a document breaks one of its invariants.
type EncodingError struct {
	Reason string
}

func (e *EncodingError) Error() string {
	return "container: invalid document: " + e.Reason
}

func invalid(format string, a ...interface{}) error {
	return &EncodingError{Reason: fmt.Sprintf(format, a...)}
}

// tileCount returns width*height, or false if either is less than one or the
// product doesn't fit in an int.
func tileCount(width, height int) (int, bool) {
	if width < 1 || height < 1 || width > math.MaxInt/height {
		return 0, false
	}
	return width * height, true
}

// Validate checks the structural invariants of d. Every law in table must be
// present and no other.
func (d *Document) Validate(table *laws.Table) error {
	n, ok := tileCount(d.Width, d.Height)
	if !ok {
		return invalid("dimensions %dx%d", d.Width, d.Height)
	}
	if len(d.Tiles) != n {
		return invalid("%d tiles for %dx%d map", len(d.Tiles), d.Width, d.Height)
	}
	for i, t := range d.Tiles {
		if t.X != i%d.Width || t.Y != i/d.Width {
			return invalid("tile %d has coordinate (%d,%d)", i, t.X, t.Y)
		}
		if t.Terrain == "" {
			return invalid("tile (%d,%d) has no terrain", t.X, t.Y)
		}
	}

	if table != nil {
		if len(d.Laws) != table.Len() {
			return invalid("%d laws, expected %d", len(d.Laws), table.Len())
		}
		for _, l := range table.Laws() {
			if _, ok := d.Laws[l.Name]; !ok {
				return invalid("law %q missing", l.Name)
			}
		}
	}

	for _, k := range ReservedKeys {
		if d.Template.Has(k) {
			return invalid("template declares reserved key %q", k)
		}
	}

	return nil
}

func (d *Document) Histogram() map[string]int {
	h := make(map[string]int)
	for _, t := range d.Tiles {
		h[t.Terrain]++
	}
	return h
}

// EnabledLaws returns the names of the enabled laws in sorted order.
func (d *Document) EnabledLaws() []string {
	var names []string
	for k, v := range d.Laws {
		if v {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}
