package swatch

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/bodgit/wbox/palette"
	"golang.org/x/text/encoding/unicode"
)

const (
	aseVersionMajor = 1
	aseVersionMinor = 0

	aseColorEntry = 0x0001

	// Global, spot and normal
	aseColorNormal = 2
)

var aseSignature = [4]byte{'A', 'S', 'E', 'F'}

var aseModelRGB = [4]byte{'R', 'G', 'B', ' '}

type aseHeader struct {
	Signature    [4]byte
	Major, Minor uint16
	Blocks       uint32
}

type aseColor struct {
	Model  [4]byte
	Values [3]float32
	Type   uint16
}

// utf16 encodes s as big-endian UTF-16 with a terminating NUL.
func utf16(s string) ([]byte, error) {
	b, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, err
	}
	return append(b, 0, 0), nil
}

// EncodeASE writes p to w as an Adobe Swatch Exchange file. Each color block
// is laid out as:
//
//	uint16  block type, 0x0001
//	uint32  block length excluding type and length
//	uint16  name length in UTF-16 units including the NUL
//	[]byte  name, UTF-16BE
//	[4]byte color model, "RGB "
//	float32 red, green, blue in the range 0 to 1
//	uint16  color type, 2 for normal
//
// All values are big-endian.
func EncodeASE(w io.Writer, p *palette.Table) error {
	bw := bufio.NewWriter(w)

	entries := p.Entries()
	h := aseHeader{
		Signature: aseSignature,
		Major:     aseVersionMajor,
		Minor:     aseVersionMinor,
		Blocks:    uint32(len(entries)),
	}
	if err := binary.Write(bw, binary.BigEndian, &h); err != nil {
		return err
	}

	for _, e := range entries {
		name, err := utf16(e.Terrain)
		if err != nil {
			return err
		}

		c := aseColor{
			Model: aseModelRGB,
			Values: [3]float32{
				float32(e.Color.R) / 0xff,
				float32(e.Color.G) / 0xff,
				float32(e.Color.B) / 0xff,
			},
			Type: aseColorNormal,
		}

		length := uint32(2 + len(name) + binary.Size(&c))
		for _, v := range []interface{}{uint16(aseColorEntry), length, uint16(len(name) / 2)} {
			if err := binary.Write(bw, binary.BigEndian, v); err != nil {
				return err
			}
		}
		if _, err := bw.Write(name); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.BigEndian, &c); err != nil {
			return err
		}
	}

	return bw.Flush()
}
