package container

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/bodgit/wbox/laws"
	"github.com/klauspost/compress/zlib"
)

type format struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

type tile struct {
	Terrain string `json:"terrain_id"`
	Frozen  bool   `json:"frozen"`
}

// Layout selects the structure of the encoded JSON.
type Layout int

const (
	// Native is the converter's own layout, readable by Decode
	Native Layout = iota
	// WorldBox is the layout the game loads directly
	WorldBox
)

var layoutNames = map[Layout]string{
	Native:   FormatName,
	WorldBox: "worldbox",
}

func (l Layout) String() string {
	if s, ok := layoutNames[l]; ok {
		return s
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// ParseLayout returns the Layout named by s, either "wbox-map" or "worldbox".
func ParseLayout(s string) (Layout, error) {
	for l, name := range layoutNames {
		if s == name {
			return l, nil
		}
	}
	return Native, fmt.Errorf("container: unknown layout %q", s)
}

// Encoder configures encoding of map documents.
type Encoder struct {
	// Laws is the table the document laws are checked against, nil skips
	// the check
	Laws *laws.Table
	// Level is the zlib compression level
	Level int
	// Layout is the JSON structure to write
	Layout Layout
	// ChunkSize overrides the WorldBox chunk edge, zero means ChunkSize
	ChunkSize int
}

func marshalJSON(v interface{}) ([]byte, error) {
	// encoding/json writes map keys in sorted order
	b := new(bytes.Buffer)
	je := json.NewEncoder(b)
	je.SetEscapeHTML(false)
	if err := je.Encode(v); err != nil {
		return nil, &EncodingError{Reason: err.Error()}
	}
	return b.Bytes(), nil
}

func marshal(d *Document) ([]byte, error) {
	if d.Template.Has(KeyFormat) {
		return nil, invalid("template declares format key %q", KeyFormat)
	}

	m := make(map[string]interface{}, len(d.Template)+len(ReservedKeys))
	for k, v := range d.Template {
		m[k] = v
	}

	tiles := make([]tile, len(d.Tiles))
	for i, t := range d.Tiles {
		tiles[i] = tile{Terrain: t.Terrain, Frozen: t.Frozen}
	}

	m[KeyFormat] = format{Name: FormatName, Version: Version}
	m[KeyWidth] = d.Width
	m[KeyHeight] = d.Height
	m[KeyTiles] = tiles
	m[KeyLaws] = d.Laws

	return marshalJSON(m)
}

// Encode writes d to w.
func (e *Encoder) Encode(w io.Writer, d *Document) error {
	if err := d.Validate(e.Laws); err != nil {
		return err
	}

	var (
		b   []byte
		err error
	)
	switch e.Layout {
	case Native:
		b, err = marshal(d)
	case WorldBox:
		chunk := e.ChunkSize
		if chunk == 0 {
			chunk = ChunkSize
		}
		b, err = marshalWorldBox(d, chunk)
	default:
		err = fmt.Errorf("container: unknown layout %d", int(e.Layout))
	}
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	zw, err := zlib.NewWriterLevel(bw, e.Level)
	if err != nil {
		return err
	}
	if _, err := zw.Write(b); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	return bw.Flush()
}

// Encode writes d to w using the default law table and the fastest
// compression level.
func Encode(w io.Writer, d *Document) error {
	e := Encoder{
		Laws:  laws.DefaultTable,
		Level: zlib.BestSpeed,
	}
	return e.Encode(w, d)
}

// EncodeWorldBox writes d to w in the WorldBox layout using the default law
// table and the fastest compression level.
func EncodeWorldBox(w io.Writer, d *Document) error {
	e := Encoder{
		Laws:   laws.DefaultTable,
		Level:  zlib.BestSpeed,
		Layout: WorldBox,
	}
	return e.Encode(w, d)
}
