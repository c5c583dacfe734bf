/*
Package freeze implements the optional frozen tile mask.

A mask is built from a second image the same size as the map image. Any
pixel that is pure white marks the corresponding tile as frozen, every other
color leaves it unfrozen.
*/
package freeze

import (
	"fmt"
	"image"

	"github.com/bodgit/wbox/palette"
)

var white = palette.RGB{R: 0xff, G: 0xff, B: 0xff}

// DimensionMismatchError is returned when the mask image and the map image
// differ in size.
type DimensionMismatchError struct {
	Width, Height                 int
	ExpectedWidth, ExpectedHeight int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("freeze: mask is %dx%d, expected %dx%d", e.Width, e.Height, e.ExpectedWidth, e.ExpectedHeight)
}

// Mask is a read-only grid of frozen flags. A nil *Mask has no frozen tiles.
type Mask struct {
	width, height int
	frozen        []bool
	count         int
}

// New builds a mask from m which must be exactly width by height pixels.
func New(m image.Image, width, height int) (*Mask, error) {
	b := m.Bounds()
	if b.Dx() != width || b.Dy() != height {
		return nil, &DimensionMismatchError{
			Width:          b.Dx(),
			Height:         b.Dy(),
			ExpectedWidth:  width,
			ExpectedHeight: height,
		}
	}

	mask := &Mask{
		width:  width,
		height: height,
		frozen: make([]bool, width*height),
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if palette.FromColor(m.At(b.Min.X+x, b.Min.Y+y)) == white {
				mask.frozen[y*width+x] = true
				mask.count++
			}
		}
	}

	return mask, nil
}

// IsFrozen reports whether the tile at (x, y) is frozen. Coordinates outside
// the mask are never frozen.
func (m *Mask) IsFrozen(x, y int) bool {
	if m == nil || x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.frozen[y*m.width+x]
}

func (m *Mask) Count() int {
	if m == nil {
		return 0
	}
	return m.count
}

func (m *Mask) Size() (int, int) {
	if m == nil {
		return 0, 0
	}
	return m.width, m.height
}
