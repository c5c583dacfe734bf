package container

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/bodgit/wbox/template"
	"github.com/klauspost/compress/zlib"
)

var (
	errNotMap      = errors.New("container: not a map file")
	errMissingKeys = errors.New("container: missing required keys")
)

// Config describes a map without its tiles.
type Config struct {
	Version       int
	Width, Height int
}

func checkFormat(f *format) error {
	if f == nil || f.Name != FormatName {
		return errNotMap
	}
	if f.Version != Version {
		return fmt.Errorf("container: unsupported version %d", f.Version)
	}
	return nil
}

func open(r io.Reader) (io.ReadCloser, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		if errors.Is(err, zlib.ErrHeader) {
			return nil, errNotMap
		}
		return nil, err
	}
	return zr, nil
}

// DecodeConfig returns the version and dimensions of a map without keeping
// its tiles.
func DecodeConfig(r io.Reader) (Config, error) {
	zr, err := open(r)
	if err != nil {
		return Config{}, err
	}
	defer zr.Close()

	var v struct {
		Format *format `json:"$wbox"`
		Width  *int    `json:"width"`
		Height *int    `json:"height"`
	}
	if err := json.NewDecoder(zr).Decode(&v); err != nil {
		return Config{}, err
	}
	if err := checkFormat(v.Format); err != nil {
		return Config{}, err
	}
	if v.Width == nil || v.Height == nil {
		return Config{}, errMissingKeys
	}
	if _, ok := tileCount(*v.Width, *v.Height); !ok {
		return Config{}, fmt.Errorf("container: invalid dimensions %dx%d", *v.Width, *v.Height)
	}

	return Config{
		Version: v.Format.Version,
		Width:   *v.Width,
		Height:  *v.Height,
	}, nil
}

// Decode reads a map from r.
func Decode(r io.Reader) (*Document, error) {
	zr, err := open(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(zr).Decode(&raw); err != nil {
		return nil, err
	}

	var f *format
	if b, ok := raw[KeyFormat]; ok {
		if err := json.Unmarshal(b, &f); err != nil {
			return nil, err
		}
	}
	if err := checkFormat(f); err != nil {
		return nil, err
	}

	for _, k := range ReservedKeys {
		if _, ok := raw[k]; !ok {
			return nil, errMissingKeys
		}
	}

	d := &Document{
		Template: make(template.Template, len(raw)-len(ReservedKeys)-1),
	}
	if err := json.Unmarshal(raw[KeyWidth], &d.Width); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw[KeyHeight], &d.Height); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw[KeyLaws], &d.Laws); err != nil {
		return nil, err
	}

	var tiles []tile
	if err := json.Unmarshal(raw[KeyTiles], &tiles); err != nil {
		return nil, err
	}
	if n, ok := tileCount(d.Width, d.Height); !ok || len(tiles) != n {
		return nil, fmt.Errorf("container: %d tiles for %dx%d map", len(tiles), d.Width, d.Height)
	}
	d.Tiles = make([]Tile, len(tiles))
	for i, t := range tiles {
		d.Tiles[i] = Tile{
			X:       i % d.Width,
			Y:       i / d.Width,
			Terrain: t.Terrain,
			Frozen:  t.Frozen,
		}
	}

	for k, b := range raw {
		if isReserved(k) {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		d.Template[k] = v
	}

	return d, nil
}

func isReserved(k string) bool {
	if k == KeyFormat {
		return true
	}
	for _, r := range ReservedKeys {
		if k == r {
			return true
		}
	}
	return false
}
