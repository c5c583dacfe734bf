/*
Package palette implements the color to terrain mapping used when converting
an image into a map.

A palette file is plain text with one entry per line. Each entry is made up
of whitespace separated fields; a terrain identifier, a color written as
#RRGGBB and zero or more tags:

	# comment
	deep_ocean  #3f76c7
	grass       #40a94d  fertile green

Entries keep the order in which they were declared. That order is used when
exporting swatches and to break ties when searching for the nearest color.
*/
package palette

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Policy controls how colors with no exact match are resolved.
type Policy int

const (
	// Strict fails any color that isn't declared in the palette.
	Strict Policy = iota
	// Nearest picks the entry with the smallest Euclidean distance in RGB
	// space, ties going to the earliest declared entry.
	Nearest
)

func (p Policy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Nearest:
		return "nearest"
	default:
		return "Policy(" + strconv.Itoa(int(p)) + ")"
	}
}

// ParsePolicy converts "strict" or "nearest" into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return Strict, nil
	case "nearest":
		return Nearest, nil
	}
	return Strict, fmt.Errorf("palette: unknown policy %q", s)
}

// RGB is a 24-bit color. Any alpha channel is discarded.
type RGB struct {
	R, G, B uint8
}

// FromColor converts c into an RGB, ignoring alpha.
func FromColor(c color.Color) RGB {
	switch c := c.(type) {
	case color.NRGBA:
		return RGB{c.R, c.G, c.B}
	case color.RGBA:
		if c.A == 0xff {
			return RGB{c.R, c.G, c.B}
		}
	case RGB:
		return c
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{n.R, n.G, n.B}
}

// RGBA implements the color.Color interface.
func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseRGB parses "#RRGGBB" or "RRGGBB".
func ParseRGB(s string) (RGB, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("palette: invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("palette: invalid color %q", s)
	}
	return RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

// Entry is a single palette declaration.
type Entry struct {
	Color   RGB
	Terrain string
	Tags    []string
	// Index is the zero-based declaration order
	Index int
}

// HasTag reports whether the entry was declared with tag t.
func (e Entry) HasTag(t string) bool {
	i := sort.SearchStrings(e.Tags, t)
	return i < len(e.Tags) && e.Tags[i] == t
}

// Table is a loaded palette. It is safe for concurrent use once built.
type Table struct {
	entries []Entry
	byColor map[RGB]int
	policy  Policy
}

// New builds a table from entries, reassigning Index in slice order.
func New(entries []Entry, policy Policy) (*Table, error) {
	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		byColor: make(map[RGB]int, len(entries)),
		policy:  policy,
	}
	for _, e := range entries {
		if err := t.add(e); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) add(e Entry) error {
	if e.Terrain == "" {
		return errEmptyTerrain
	}
	if !utf8.ValidString(e.Terrain) {
		return errInvalidUTF8
	}
	for _, tag := range e.Tags {
		if !utf8.ValidString(tag) {
			return errInvalidUTF8
		}
	}
	if i, ok := t.byColor[e.Color]; ok {
		return &duplicateError{color: e.Color, first: t.entries[i].Terrain}
	}
	tags := append([]string(nil), e.Tags...)
	sort.Strings(tags)
	e.Tags = tags
	e.Index = len(t.entries)
	t.byColor[e.Color] = e.Index
	t.entries = append(t.entries, e)
	return nil
}

// Load parses a palette from r. name is only used in error messages.
func Load(r io.Reader, name string, policy Policy) (*Table, error) {
	t := &Table{
		byColor: make(map[RGB]int),
		policy:  policy,
	}

	s := bufio.NewScanner(r)
	line := 0
	for s.Scan() {
		line++
		text := strings.TrimSpace(s.Text())
		if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, "//") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, &LoadError{File: name, Line: line, Kind: Malformed, Err: errMissingColor}
		}
		c, err := ParseRGB(fields[1])
		if err != nil {
			return nil, &LoadError{File: name, Line: line, Kind: Malformed, Err: err}
		}

		if err := t.add(Entry{Color: c, Terrain: fields[0], Tags: fields[2:]}); err != nil {
			kind := Malformed
			var dup *duplicateError
			if errors.As(err, &dup) {
				kind = Duplicate
			}
			return nil, &LoadError{File: name, Line: line, Kind: kind, Err: err}
		}
	}
	if err := s.Err(); err != nil {
		return nil, &LoadError{File: name, Line: line, Kind: IO, Err: err}
	}
	if len(t.entries) == 0 {
		return nil, &LoadError{File: name, Kind: Malformed, Err: errEmpty}
	}

	return t, nil
}

// LoadFile opens and parses the palette at path.
func LoadFile(path string, policy Policy) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{File: path, Kind: IO, Err: err}
	}
	defer f.Close()

	return Load(f, path, policy)
}

func (t *Table) Policy() Policy {
	return t.policy
}

func (t *Table) Len() int {
	return len(t.entries)
}

func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Lookup returns the entry declared with exactly color c.
func (t *Table) Lookup(c RGB) (Entry, bool) {
	i, ok := t.byColor[c]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// ColorOf returns the color of the earliest entry mapped to terrain.
func (t *Table) ColorOf(terrain string) (RGB, bool) {
	for _, e := range t.entries {
		if e.Terrain == terrain {
			return e.Color, true
		}
	}
	return RGB{}, false
}

func sqDiff(x, y uint8) uint32 {
	d := int32(x) - int32(y)
	return uint32(d * d)
}

func (t *Table) nearest(c RGB) Entry {
	best := 0
	bestSum := uint32(1<<32 - 1)
	for i, e := range t.entries {
		// Strictly less keeps the lowest index on a tie
		if sum := sqDiff(c.R, e.Color.R) + sqDiff(c.G, e.Color.G) + sqDiff(c.B, e.Color.B); sum < bestSum {
			best, bestSum = i, sum
		}
	}
	return t.entries[best]
}

// ResolveEntry maps c to a palette entry according to the table policy.
func (t *Table) ResolveEntry(c RGB) (Entry, error) {
	if e, ok := t.Lookup(c); ok {
		return e, nil
	}
	if t.policy != Nearest || len(t.entries) == 0 {
		return Entry{}, &UnmappedColorError{Color: c}
	}
	return t.nearest(c), nil
}

// Resolve maps c to a terrain identifier according to the table policy.
func (t *Table) Resolve(c RGB) (string, error) {
	e, err := t.ResolveEntry(c)
	if err != nil {
		return "", err
	}
	return e.Terrain, nil
}

// Encode writes the table back out in palette file format.
func Encode(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)
	for _, e := range t.entries {
		fields := append([]string{e.Terrain, e.Color.String()}, e.Tags...)
		if _, err := fmt.Fprintln(bw, strings.Join(fields, " ")); err != nil {
			return err
		}
	}
	return bw.Flush()
}
