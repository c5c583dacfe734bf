package wbox

import (
	"errors"
	"image"
	"sync"
	"time"

	"github.com/bodgit/wbox/container"
	"github.com/bodgit/wbox/freeze"
	"github.com/bodgit/wbox/laws"
	"github.com/bodgit/wbox/palette"
	"github.com/bodgit/wbox/template"
)

// rgbReader returns a function reading the pixel at (x, y) relative to the
// top-left corner of m.
func rgbReader(m image.Image) func(x, y int) palette.RGB {
	b := m.Bounds()
	switch m := m.(type) {
	case *image.NRGBA:
		return func(x, y int) palette.RGB {
			i := m.PixOffset(b.Min.X+x, b.Min.Y+y)
			return palette.RGB{R: m.Pix[i], G: m.Pix[i+1], B: m.Pix[i+2]}
		}
	case *image.RGBA:
		return func(x, y int) palette.RGB {
			return palette.FromColor(m.RGBAAt(b.Min.X+x, b.Min.Y+y))
		}
	}
	return func(x, y int) palette.RGB {
		return palette.FromColor(m.At(b.Min.X+x, b.Min.Y+y))
	}
}

type rowRange struct {
	min, max int
}

// splitRows divides height rows into at most n contiguous ranges.
func splitRows(height, n int) []rowRange {
	if n > height {
		n = height
	}
	if n < 1 {
		n = 1
	}
	ranges := make([]rowRange, 0, n)
	for i := 0; i < n; i++ {
		ranges = append(ranges, rowRange{height * i / n, height * (i + 1) / n})
	}
	return ranges
}

func (c *Converter) rowWorker(rows rowRange, width int, at func(x, y int) palette.RGB, p *palette.Table, mask *freeze.Mask, tiles []container.Tile) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)

		// Images tend to use few colors so remember what each resolved to
		cache := make(map[palette.RGB]string)

		for y := rows.min; y < rows.max; y++ {
			for x := 0; x < width; x++ {
				rgb := at(x, y)
				terrain, ok := cache[rgb]
				if !ok {
					var err error
					if terrain, err = p.Resolve(rgb); err != nil {
						errc <- &AssemblyError{Kind: UnmappedColor, X: x, Y: y, Color: rgb, Err: err}
						return
					}
					cache[rgb] = terrain
				}

				tiles[y*width+x] = container.Tile{
					X:       x,
					Y:       y,
					Terrain: terrain,
					Frozen:  mask.IsFrozen(x, y),
				}
			}
		}
	}()
	return errc
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// firstError drains every channel and returns the earliest pixel error in
// row-major order so the result doesn't depend on scheduling.
func firstError(errs ...<-chan error) error {
	var first *AssemblyError
	var other error
	for err := range mergeErrors(errs...) {
		var ae *AssemblyError
		switch {
		case err == nil:
		case errors.As(err, &ae):
			if first == nil || ae.before(first) {
				first = ae
			}
		case other == nil:
			other = err
		}
	}
	if first != nil {
		return first
	}
	return other
}

// Assemble builds a map document from m. mask may be nil for no frozen
// tiles, ls may be nil for the default laws and t may be nil for an empty
// template.
func (c *Converter) Assemble(m image.Image, p *palette.Table, mask *freeze.Mask, ls *laws.Set, t template.Template) (*container.Document, error) {
	start := time.Now()

	for _, k := range container.ReservedKeys {
		if t.Has(k) {
			return nil, &AssemblyError{Kind: ReservedKeyCollision, Key: k}
		}
	}

	b := m.Bounds()
	width, height := b.Dx(), b.Dy()
	if width < 1 || height < 1 {
		return nil, errEmptyImage
	}

	if mask != nil {
		if w, h := mask.Size(); w != width || h != height {
			return nil, &freeze.DimensionMismatchError{
				Width:          w,
				Height:         h,
				ExpectedWidth:  width,
				ExpectedHeight: height,
			}
		}
	}

	if ls == nil {
		ls = laws.Defaults(laws.DefaultTable)
	}

	tiles := make([]container.Tile, width*height)
	at := rgbReader(m)

	var errcList []<-chan error
	for _, rows := range splitRows(height, c.workers) {
		errcList = append(errcList, c.rowWorker(rows, width, at, p, mask, tiles))
	}
	if err := firstError(errcList...); err != nil {
		return nil, err
	}

	overlay := make(template.Template, len(t))
	for k, v := range t {
		overlay[k] = v
	}

	c.logger.Printf("Resolved %dx%d image in %v, %d frozen tiles\n", width, height, time.Since(start), mask.Count())

	return &container.Document{
		Width:    width,
		Height:   height,
		Tiles:    tiles,
		Laws:     ls.Map(),
		Template: overlay,
	}, nil
}
