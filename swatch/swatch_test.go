package swatch

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/bodgit/wbox/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, s string) *palette.Table {
	t.Helper()
	p, err := palette.Load(strings.NewReader(s), "test.txt", palette.Strict)
	require.NoError(t, err)
	return p
}

func TestEncodeASE(t *testing.T) {
	p := load(t, "grass #008000\n")

	b := new(bytes.Buffer)
	require.NoError(t, EncodeASE(b, p))

	g := math.Float32bits(float32(0x80) / 0xff)
	want := []byte{
		'A', 'S', 'E', 'F',
		0x00, 0x01, 0x00, 0x00, // version 1.0
		0x00, 0x00, 0x00, 0x01, // blocks
		0x00, 0x01, // color entry
		0x00, 0x00, 0x00, 0x20, // block length
		0x00, 0x06, // name length
		0x00, 'g', 0x00, 'r', 0x00, 'a', 0x00, 's', 0x00, 's', 0x00, 0x00,
		'R', 'G', 'B', ' ',
		0x00, 0x00, 0x00, 0x00,
		byte(g >> 24), byte(g >> 16), byte(g >> 8), byte(g),
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x02, // normal
	}
	assert.Equal(t, want, b.Bytes())
}

func readASE(t *testing.T, b []byte) ([]string, [][3]float32) {
	t.Helper()
	r := bytes.NewReader(b)

	var h aseHeader
	require.NoError(t, binary.Read(r, binary.BigEndian, &h))
	require.Equal(t, aseSignature, h.Signature)

	var names []string
	var values [][3]float32
	for i := uint32(0); i < h.Blocks; i++ {
		var kind, units uint16
		var length uint32
		require.NoError(t, binary.Read(r, binary.BigEndian, &kind))
		require.NoError(t, binary.Read(r, binary.BigEndian, &length))
		require.NoError(t, binary.Read(r, binary.BigEndian, &units))

		name := make([]uint16, units)
		require.NoError(t, binary.Read(r, binary.BigEndian, name))
		runes := make([]rune, 0, units-1)
		for _, u := range name[:units-1] {
			runes = append(runes, rune(u))
		}
		names = append(names, string(runes))

		var c aseColor
		require.NoError(t, binary.Read(r, binary.BigEndian, &c))
		assert.Equal(t, aseModelRGB, c.Model)
		assert.Equal(t, uint32(2+2*int(units)+binary.Size(&c)), length)
		values = append(values, c.Values)
	}
	assert.Equal(t, 0, r.Len())

	return names, values
}

func TestEncodeASEOrder(t *testing.T) {
	p := load(t, "zebra #ffffff\nalpha #000000 tag\nmiddle #ff0000\n")

	b := new(bytes.Buffer)
	require.NoError(t, EncodeASE(b, p))

	names, values := readASE(t, b.Bytes())
	assert.Equal(t, []string{"zebra", "alpha", "middle"}, names)
	assert.Equal(t, [][3]float32{{1, 1, 1}, {0, 0, 0}, {1, 0, 0}}, values)

	again := new(bytes.Buffer)
	require.NoError(t, Encode(again, p, "terrain", ASE))
	assert.Equal(t, b.Bytes(), again.Bytes())
}

func TestEncodeGPL(t *testing.T) {
	p := load(t, "grass #008000\nwater #0000ff\n")

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, p, "terrain", GPL))

	assert.Equal(t, "GIMP Palette\nName: terrain\nColumns: 0\n#\n  0 128   0\tgrass\n  0   0 255\twater\n", b.String())
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, GPL, FormatFromPath("colors.GPL"))
	assert.Equal(t, ASE, FormatFromPath("colors.ase"))
	assert.Equal(t, ASE, FormatFromPath("colors"))
}
