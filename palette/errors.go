package palette

import (
	"errors"
	"fmt"
)

var (
	errMissingColor = errors.New("palette: expected terrain and color")
	errEmptyTerrain = errors.New("palette: empty terrain identifier")
	errEmpty        = errors.New("palette: no entries")
	errInvalidUTF8  = errors.New("palette: terrain and tags must be valid UTF-8")
)

// ErrorKind classifies a LoadError.
type ErrorKind int

const (
	// Malformed is an unparseable line.
	Malformed ErrorKind = iota + 1
	// Duplicate is a color declared more than once.
	Duplicate
	// IO is a failure reading the source.
	IO
)

func (k ErrorKind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	case Duplicate:
		return "duplicate"
	case IO:
		return "io"
	}
	return "unknown"
}

// LoadError is returned when a palette can't be loaded.
type LoadError struct {
	File string
	// Line is 1-based, zero when the error isn't tied to a line
	Line int
	Kind ErrorKind
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %v", e.File, e.Line, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.File, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type duplicateError struct {
	color RGB
	first string
}

func (e *duplicateError) Error() string {
	return fmt.Sprintf("palette: color %s already mapped to %q", e.color, e.first)
}

// UnmappedColorError is returned by a Strict table for an undeclared color.
type UnmappedColorError struct {
	Color RGB
}

func (e *UnmappedColorError) Error() string {
	return fmt.Sprintf("palette: no entry for color %s", e.Color)
}
