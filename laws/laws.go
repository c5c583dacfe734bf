/*
Package laws implements the world law toggles written into a map.

Every map carries the full set of laws from DefaultTable. A law file may flip
individual laws on or off, one per line:

	world_law_hunger=off
	world_law_rebellions=on

Names must match exactly, the on or off value is case-insensitive. Lines that
can't be parsed or that name an unknown law are reported as warnings and
otherwise ignored.
*/
package laws

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Law is a single named toggle.
type Law struct {
	Name    string
	Enabled bool
}

// Table is an ordered, read-only list of laws with their default state.
type Table struct {
	laws  []Law
	index map[string]int
}

// NewTable builds a table from laws. Names must be unique.
func NewTable(laws []Law) (*Table, error) {
	t := &Table{
		laws:  make([]Law, 0, len(laws)),
		index: make(map[string]int, len(laws)),
	}
	for _, l := range laws {
		name := strings.TrimSpace(l.Name)
		if name == "" {
			return nil, errors.New("laws: empty law name")
		}
		if _, ok := t.index[name]; ok {
			return nil, fmt.Errorf("laws: duplicate law %q", name)
		}
		t.index[name] = len(t.laws)
		t.laws = append(t.laws, Law{Name: name, Enabled: l.Enabled})
	}
	return t, nil
}

func mustTable(laws []Law) *Table {
	t, err := NewTable(laws)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultTable is the built-in set of world laws and their default state.
var DefaultTable = mustTable([]Law{
	{"world_law_diplomacy", true},
	{"world_law_peaceful_monsters", false},
	{"world_law_hunger", true},
	{"world_law_old_age", true},
	{"world_law_civ_babies", true},
	{"world_law_civ_army", true},
	{"world_law_kingdom_expansion", true},
	{"world_law_rebellions", true},
	{"world_law_border_stealing", true},
	{"world_law_angry_civilians", false},
	{"world_law_cursed_people", false},
	{"world_law_animals_spawn", true},
	{"world_law_animals_babies", true},
	{"world_law_vegetation_random_seeds", true},
	{"world_law_grow_trees", true},
	{"world_law_grow_grass", true},
	{"world_law_biomes_growth", true},
	{"world_law_erosion", true},
	{"world_law_forever_lava", false},
	{"world_law_forever_cold", false},
	{"world_law_disasters_nature", true},
	{"world_law_disasters_other", true},
	{"world_law_gaias_covenant", false},
	{"world_law_rat_plague", true},
	{"world_law_spawn_bandits", true},
})

// Laws returns a copy of the table in declaration order.
func (t *Table) Laws() []Law {
	return append([]Law(nil), t.laws...)
}

func (t *Table) Len() int {
	return len(t.laws)
}

func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Warning is a non-fatal problem found in a law file.
type Warning struct {
	File string
	Line int
	Text string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s:%d: %v: %q", w.File, w.Line, w.Err, w.Text)
}

var (
	// ErrUnknownLaw is the warning for a law name missing from the table
	ErrUnknownLaw = errors.New("unknown law")
	// ErrMalformed is the warning for a line that isn't NAME=on|off
	ErrMalformed = errors.New("expected NAME=on|off")
)

// LoadError is returned when a law file exists but can't be read.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("laws: %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Set is a table with any overrides applied. It always holds exactly the
// laws of the table it was created from.
type Set struct {
	table    *Table
	enabled  []bool
	warnings []Warning
}

// Defaults returns a Set with every law at its default state.
func Defaults(t *Table) *Set {
	s := &Set{
		table:   t,
		enabled: make([]bool, len(t.laws)),
	}
	for i, l := range t.laws {
		s.enabled[i] = l.Enabled
	}
	return s
}

func parseBool(s string) (bool, bool) {
	switch {
	case strings.EqualFold(s, "on"):
		return true, true
	case strings.EqualFold(s, "off"):
		return false, true
	}
	return false, false
}

// Load applies the overrides read from r on top of the defaults in t. name
// is only used in warnings and errors.
func Load(r io.Reader, name string, t *Table) (*Set, error) {
	s := Defaults(t)

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		k, v, ok := strings.Cut(text, "=")
		if !ok {
			s.warnings = append(s.warnings, Warning{name, line, text, ErrMalformed})
			continue
		}
		enabled, ok := parseBool(strings.TrimSpace(v))
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			s.warnings = append(s.warnings, Warning{name, line, text, ErrMalformed})
			continue
		}
		i, ok := t.index[k]
		if !ok {
			s.warnings = append(s.warnings, Warning{name, line, text, ErrUnknownLaw})
			continue
		}
		s.enabled[i] = enabled
	}
	if err := sc.Err(); err != nil {
		return nil, &LoadError{File: name, Err: err}
	}

	return s, nil
}

// LoadFile applies the overrides in path. A missing file isn't an error, the
// defaults are returned instead.
func LoadFile(path string, t *Table) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(t), nil
		}
		return nil, &LoadError{File: path, Err: err}
	}
	defer f.Close()

	return Load(f, path, t)
}

// Enabled reports the state of the named law and whether it exists.
func (s *Set) Enabled(name string) (bool, bool) {
	i, ok := s.table.index[name]
	if !ok {
		return false, false
	}
	return s.enabled[i], true
}

// Map returns the state of every law keyed by name.
func (s *Set) Map() map[string]bool {
	m := make(map[string]bool, len(s.enabled))
	for i, l := range s.table.laws {
		m[l.Name] = s.enabled[i]
	}
	return m
}

func (s *Set) Names() []string {
	names := make([]string, len(s.table.laws))
	for i, l := range s.table.laws {
		names[i] = l.Name
	}
	sort.Strings(names)
	return names
}

func (s *Set) Warnings() []Warning {
	return append([]Warning(nil), s.warnings...)
}
