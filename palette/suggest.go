package palette

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"
)

// MaxSuggest is the largest palette Suggest will produce.
const MaxSuggest = 256

// Suggest reduces m to at most n colors and returns a palette using those
// colors with placeholder terrain identifiers, intended as a starting point
// for hand editing.
func Suggest(m image.Image, n int, policy Policy) (*Table, error) {
	if n < 1 || n > MaxSuggest {
		return nil, fmt.Errorf("palette: suggestion size must be between 1 and %d", MaxSuggest)
	}
	if m.Bounds().Empty() {
		return nil, errors.New("palette: empty image")
	}

	q := quantize.MedianCutQuantizer{}
	p := q.Quantize(make(color.Palette, 0, n), m)

	entries := make([]Entry, 0, len(p))
	seen := make(map[RGB]struct{}, len(p))
	for _, c := range p {
		rgb := FromColor(c)
		if _, ok := seen[rgb]; ok {
			continue
		}
		seen[rgb] = struct{}{}
		entries = append(entries, Entry{
			Color:   rgb,
			Terrain: fmt.Sprintf("terrain_%03d", len(entries)),
		})
	}

	return New(entries, policy)
}
