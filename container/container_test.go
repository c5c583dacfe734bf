package container

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/ioutil"
	"math"
	"testing"

	"github.com/bodgit/wbox/laws"
	"github.com/bodgit/wbox/template"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument() *Document {
	return &Document{
		Width:  2,
		Height: 2,
		Tiles: []Tile{
			{X: 0, Y: 0, Terrain: "grass"},
			{X: 1, Y: 0, Terrain: "water", Frozen: true},
			{X: 0, Y: 1, Terrain: "sand"},
			{X: 1, Y: 1, Terrain: "grass"},
		},
		Laws: laws.Defaults(laws.DefaultTable).Map(),
		Template: template.Template{
			"saveVersion": json.Number("14"),
			"mapStats":    map[string]interface{}{"name": "Pangaea <1>"},
		},
	}
}

func inflate(t *testing.T, b []byte) []byte {
	t.Helper()
	zr, err := zlib.NewReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer zr.Close()
	out, err := ioutil.ReadAll(zr)
	require.NoError(t, err)
	return out
}

func TestEncodeDeterministic(t *testing.T) {
	b1, b2 := new(bytes.Buffer), new(bytes.Buffer)
	require.NoError(t, Encode(b1, testDocument()))
	require.NoError(t, Encode(b2, testDocument()))

	assert.Equal(t, b1.Bytes(), b2.Bytes())
}

func TestEncodeLayout(t *testing.T) {
	d := testDocument()
	d.Laws = map[string]bool{"b": true, "a": false}
	d.Template = template.Template{"saveVersion": json.Number("14")}

	b := new(bytes.Buffer)
	require.NoError(t, (&Encoder{Level: zlib.BestSpeed}).Encode(b, d))

	want := `{"$wbox":{"name":"wbox-map","version":1},"height":2,"laws":{"a":false,"b":true},` +
		`"saveVersion":14,"tiles":[{"terrain_id":"grass","frozen":false},{"terrain_id":"water","frozen":true},` +
		`{"terrain_id":"sand","frozen":false},{"terrain_id":"grass","frozen":false}],"width":2}` + "\n"
	assert.Equal(t, want, string(inflate(t, b.Bytes())))
}

func TestRoundTrip(t *testing.T) {
	d := testDocument()

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, d))

	got, err := Decode(bytes.NewReader(b.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, d.Width, got.Width)
	assert.Equal(t, d.Height, got.Height)
	assert.Equal(t, d.Tiles, got.Tiles)
	assert.Equal(t, d.Laws, got.Laws)
	assert.Equal(t, d.Template, got.Template)

	again := new(bytes.Buffer)
	require.NoError(t, Encode(again, got))
	assert.Equal(t, b.Bytes(), again.Bytes())
}

func TestDecodeConfig(t *testing.T) {
	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, testDocument()))

	c, err := DecodeConfig(b)
	require.NoError(t, err)
	assert.Equal(t, Config{Version: Version, Width: 2, Height: 2}, c)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not zlib at all")))
	assert.Equal(t, errNotMap, err)

	compress := func(s string) *bytes.Reader {
		b := new(bytes.Buffer)
		zw := zlib.NewWriter(b)
		_, _ = zw.Write([]byte(s))
		_ = zw.Close()
		return bytes.NewReader(b.Bytes())
	}

	_, err = Decode(compress(`{"tileMap":[]}`))
	assert.Equal(t, errNotMap, err)

	_, err = Decode(compress(`{"$wbox":{"name":"wbox-map","version":2}}`))
	assert.Error(t, err)

	_, err = Decode(compress(`{"$wbox":{"name":"wbox-map","version":1},"width":1}`))
	assert.Equal(t, errMissingKeys, err)

	tables := []struct {
		name, json string
	}{
		{"tile count", `{"$wbox":{"name":"wbox-map","version":1},"width":2,"height":1,"laws":{},"tiles":[]}`},
		{"zero height", `{"$wbox":{"name":"wbox-map","version":1},"width":2,"height":0,"laws":{},"tiles":[]}`},
		{"negative", `{"$wbox":{"name":"wbox-map","version":1},"width":-1,"height":-1,"laws":{},"tiles":[{}]}`},
		{"overflow", `{"$wbox":{"name":"wbox-map","version":1},"width":4294967296,"height":4294967296,"laws":{},"tiles":[]}`},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, err := Decode(compress(table.json))
			assert.Error(t, err)

			_, err = DecodeConfig(compress(table.json))
			if table.name != "tile count" {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tables := []struct {
		name   string
		mutate func(*Document)
	}{
		{"zero width", func(d *Document) { d.Width = 0 }},
		{"zero height", func(d *Document) { d.Height = 0 }},
		{"overflow", func(d *Document) { d.Width, d.Height = math.MaxInt, 2 }},
		{"tile count", func(d *Document) { d.Tiles = d.Tiles[:3] }},
		{"coordinate", func(d *Document) { d.Tiles[1].X = 0 }},
		{"order", func(d *Document) { d.Tiles[1], d.Tiles[2] = d.Tiles[2], d.Tiles[1] }},
		{"no terrain", func(d *Document) { d.Tiles[3].Terrain = "" }},
		{"missing law", func(d *Document) { delete(d.Laws, "world_law_hunger") }},
		{"extra law", func(d *Document) { d.Laws["world_law_time_travel"] = true }},
		{"reserved key", func(d *Document) { d.Template["tiles"] = []interface{}{} }},
		{"format key", func(d *Document) { d.Template[KeyFormat] = "x" }},
	}

	require.NoError(t, testDocument().Validate(laws.DefaultTable))

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			d := testDocument()
			table.mutate(d)

			err := Encode(ioutil.Discard, d)

			var ee *EncodingError
			assert.True(t, errors.As(err, &ee))
		})
	}
}

func TestTemplateKeysKept(t *testing.T) {
	d := testDocument()
	d.Template["converterFormat"] = "mine"

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, d))

	got, err := Decode(bytes.NewReader(b.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, d.Template, got.Template)
}

func TestHistogram(t *testing.T) {
	d := testDocument()
	assert.Equal(t, map[string]int{"grass": 2, "water": 1, "sand": 1}, d.Histogram())
	assert.Equal(t, Tile{X: 1, Y: 0, Terrain: "water", Frozen: true}, d.At(1, 0))
}

func TestEncodeWorldBox(t *testing.T) {
	d := testDocument()
	d.Laws = map[string]bool{"b": true, "a": false}
	d.Template = template.Template{"saveVersion": json.Number("14")}

	b := new(bytes.Buffer)
	require.NoError(t, (&Encoder{Level: zlib.BestSpeed, Layout: WorldBox, ChunkSize: 1}).Encode(b, d))

	want := `{"frozen_tiles":[1],"height":2,"saveVersion":14,"tileAmounts":[[1,1],[1,1]],"tileArray":[[0,1],[1,2]],` +
		`"tileMap":["sand","grass","water"],"width":2,` +
		`"worldLaws":{"list":[{"name":"a","boolVal":false},{"name":"b"}]}}` + "\n"
	assert.Equal(t, want, string(inflate(t, b.Bytes())))
}

func TestEncodeWorldBoxTemplate(t *testing.T) {
	d := &Document{
		Width:  4,
		Height: 1,
		Tiles: []Tile{
			{X: 0, Y: 0, Terrain: "a"},
			{X: 1, Y: 0, Terrain: "a"},
			{X: 2, Y: 0, Terrain: "b"},
			{X: 3, Y: 0, Terrain: "a"},
		},
		Laws: map[string]bool{"a": false},
		Template: template.Template{
			"tileMap":      []interface{}{"water", json.Number("5")},
			"frozen_tiles": []interface{}{json.Number("0")},
			"worldLaws": map[string]interface{}{
				"extra": json.Number("1"),
				"list": []interface{}{
					map[string]interface{}{"name": "keep"},
					map[string]interface{}{"name": "a", "boolVal": true},
				},
			},
		},
	}

	b := new(bytes.Buffer)
	require.NoError(t, (&Encoder{Level: zlib.BestSpeed, Layout: WorldBox, ChunkSize: 1}).Encode(b, d))

	want := `{"height":1,"tileAmounts":[[2,1,1]],"tileArray":[[2,3,2]],"tileMap":["water",5,"a","b"],"width":4,` +
		`"worldLaws":{"extra":1,"list":[{"name":"keep"},{"name":"a","boolVal":false}]}}` + "\n"
	assert.Equal(t, want, string(inflate(t, b.Bytes())))
}

func TestEncodeWorldBoxSize(t *testing.T) {
	err := EncodeWorldBox(ioutil.Discard, testDocument())

	var se *SizeError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, SizeError{Width: 2, Height: 2, Chunk: ChunkSize}, *se)

	assert.NoError(t, CheckChunks(128, 64))
	assert.Error(t, CheckChunks(128, 65))
}

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout("worldbox")
	require.NoError(t, err)
	assert.Equal(t, WorldBox, l)
	assert.Equal(t, "wbox-map", Native.String())

	_, err = ParseLayout("wbox")
	assert.Error(t, err)
}
