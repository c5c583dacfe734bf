package wbox

import (
	"fmt"
	"image"

	"github.com/bodgit/wbox/container"
	"github.com/bodgit/wbox/palette"
)

// Preview renders d back into an image, painting each tile with the first
// palette color declared for its terrain. Frozen tiles aren't marked.
func Preview(d *container.Document, p *palette.Table) (*image.NRGBA, error) {
	m := image.NewNRGBA(image.Rect(0, 0, d.Width, d.Height))

	colors := make(map[string]palette.RGB)
	for _, t := range d.Tiles {
		c, ok := colors[t.Terrain]
		if !ok {
			if c, ok = p.ColorOf(t.Terrain); !ok {
				return nil, fmt.Errorf("wbox: terrain %q not in palette", t.Terrain)
			}
			colors[t.Terrain] = c
		}

		i := m.PixOffset(t.X, t.Y)
		m.Pix[i+0] = c.R
		m.Pix[i+1] = c.G
		m.Pix[i+2] = c.B
		m.Pix[i+3] = 0xff
	}

	return m, nil
}
