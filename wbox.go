/*
Package wbox is a library for converting images into WorldBox map files.

Every pixel of the source image becomes one tile. The pixel color is looked
up in a palette to find the terrain for the tile, an optional second image
marks tiles as frozen, and the world laws and map template supplied
alongside are merged in before the map is written out.
*/
package wbox

import (
	"log"
	"runtime"
)

// Converter runs map conversions.
type Converter struct {
	db      *PaletteDB
	logger  *log.Logger
	workers int
}

// New returns a Converter. db may be nil if palettes are only ever loaded
// from files.
func New(db *PaletteDB, logger *log.Logger) *Converter {
	return &Converter{
		db:      db,
		logger:  logger,
		workers: runtime.NumCPU(),
	}
}

// SetWorkers sets how many goroutines resolve pixels in parallel.
func (c *Converter) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	c.workers = n
}
