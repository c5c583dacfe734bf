package swatch

import (
	"bufio"
	"fmt"
	"io"

	"github.com/bodgit/wbox/palette"
)

// EncodeGPL writes p to w as a GIMP palette titled name.
func EncodeGPL(w io.Writer, p *palette.Table, name string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "GIMP Palette\nName: %s\nColumns: 0\n#\n", name)
	for _, e := range p.Entries() {
		fmt.Fprintf(bw, "%3d %3d %3d\t%s\n", e.Color.R, e.Color.G, e.Color.B, e.Terrain)
	}

	return bw.Flush()
}
