package wbox

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bodgit/wbox/container"
	"github.com/bodgit/wbox/freeze"
	"github.com/bodgit/wbox/internal/atomicfile"
	"github.com/bodgit/wbox/laws"
	"github.com/bodgit/wbox/palette"
	"github.com/bodgit/wbox/swatch"
	"github.com/bodgit/wbox/template"
	"github.com/klauspost/compress/zlib"
)

// DBPrefix marks a palette source as the name of a palette stored in the
// palette database rather than a file.
const DBPrefix = "db:"

// Job describes a single conversion. Only Image, Palette and Output are
// required.
type Job struct {
	Image     string
	FreezeMap string
	Palette   string
	Policy    palette.Policy
	WorldLaws string
	Template  string
	Schema    string
	Output    string
	Layout    container.Layout
	Preview   string
	Swatch    string
}

func loadImage(file string) (image.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return m, nil
}

// LoadPalette loads a palette from a file or, if src starts with DBPrefix,
// from the palette database.
func (c *Converter) LoadPalette(src string, policy palette.Policy) (*palette.Table, error) {
	if strings.HasPrefix(src, DBPrefix) {
		if c.db == nil {
			return nil, errNoDB
		}
		return c.db.LoadPalette(strings.TrimPrefix(src, DBPrefix), policy)
	}
	return palette.LoadFile(src, policy)
}

func loadTemplate(file, schema string) (template.Template, error) {
	if file == "" {
		return template.Template{}, nil
	}
	t, err := template.LoadFile(file)
	if err != nil {
		return nil, err
	}
	if schema != "" {
		s, err := template.CompileSchema(schema)
		if err != nil {
			return nil, err
		}
		if err := t.Validate(s); err != nil {
			return nil, &template.LoadError{File: file, Err: err}
		}
	}
	return t, nil
}

// paletteName derives a display name from a palette source.
func paletteName(src string) string {
	if strings.HasPrefix(src, DBPrefix) {
		return strings.TrimPrefix(src, DBPrefix)
	}
	base := filepath.Base(src)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// load runs fn in its own goroutine.
func load(fn func() error) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		errc <- fn()
	}()
	return errc
}

// Convert runs job, writing the map and any optional outputs. Nothing is
// written unless every input loads and the map assembles cleanly.
func (c *Converter) Convert(job Job) error {
	start := time.Now()

	var (
		m, fm image.Image
		p     *palette.Table
		ls    *laws.Set
		t     template.Template
	)

	errcList := []<-chan error{
		load(func() (err error) {
			m, err = loadImage(job.Image)
			return
		}),
		load(func() (err error) {
			p, err = c.LoadPalette(job.Palette, job.Policy)
			return
		}),
		load(func() (err error) {
			if job.WorldLaws == "" {
				ls = laws.Defaults(laws.DefaultTable)
				return nil
			}
			ls, err = laws.LoadFile(job.WorldLaws, laws.DefaultTable)
			return
		}),
		load(func() (err error) {
			t, err = loadTemplate(job.Template, job.Schema)
			return
		}),
	}
	if job.FreezeMap != "" {
		errcList = append(errcList, load(func() (err error) {
			fm, err = loadImage(job.FreezeMap)
			return
		}))
	}
	if err := waitForPipeline(errcList...); err != nil {
		return err
	}
	c.logger.Printf("Inputs loaded in %v\n", time.Since(start))

	for _, w := range ls.Warnings() {
		c.logger.Printf("Ignoring world law: %s\n", w)
	}

	b := m.Bounds()
	if job.Layout == container.WorldBox {
		if err := container.CheckChunks(b.Dx(), b.Dy()); err != nil {
			return fmt.Errorf("%s: %w", job.Image, err)
		}
	}

	var mask *freeze.Mask
	if fm != nil {
		var err error
		if mask, err = freeze.New(fm, b.Dx(), b.Dy()); err != nil {
			return fmt.Errorf("%s: %w", job.FreezeMap, err)
		}
	}

	d, err := c.Assemble(m, p, mask, ls, t)
	if err != nil {
		return err
	}

	if err := WriteMap(job.Output, d, job.Layout); err != nil {
		return err
	}
	c.logger.Printf("Map written to %s in %v\n", job.Output, time.Since(start))

	if job.Preview != "" {
		if err := WritePreview(job.Preview, d, p); err != nil {
			return err
		}
		c.logger.Printf("Preview written to %s\n", job.Preview)
	}

	if job.Swatch != "" {
		if err := WriteSwatch(job.Swatch, p, paletteName(job.Palette)); err != nil {
			return err
		}
		c.logger.Printf("Swatches written to %s\n", job.Swatch)
	}

	return nil
}

// WriteMap encodes d to file using layout. The file is only replaced once the
// whole map has been written.
func WriteMap(file string, d *container.Document, layout container.Layout) error {
	e := container.Encoder{
		Laws:   laws.DefaultTable,
		Level:  zlib.BestSpeed,
		Layout: layout,
	}
	return atomicfile.Write(file, 0o644, func(w io.Writer) error {
		return e.Encode(w, d)
	})
}

// WriteSwatch exports p to file, choosing the format from the extension.
func WriteSwatch(file string, p *palette.Table, name string) error {
	return atomicfile.Write(file, 0o644, func(w io.Writer) error {
		return swatch.Encode(w, p, name, swatch.FormatFromPath(file))
	})
}

// WritePreview renders d using the colors in p and saves it as a PNG.
func WritePreview(file string, d *container.Document, p *palette.Table) error {
	m, err := Preview(d, p)
	if err != nil {
		return err
	}
	return atomicfile.Write(file, 0o644, func(w io.Writer) error {
		return png.Encode(w, m)
	})
}
