package wbox

import (
	"errors"
	"fmt"

	"github.com/bodgit/wbox/palette"
)

var (
	errEmptyImage = errors.New("wbox: image has no pixels")
	errNoDB       = errors.New("wbox: no palette database")
)

// AssemblyErrorKind classifies an AssemblyError.
type AssemblyErrorKind int

const (
	// UnmappedColor is a pixel the palette couldn't resolve.
	UnmappedColor AssemblyErrorKind = iota + 1
	// ReservedKeyCollision is a template declaring a key the map owns.
	ReservedKeyCollision
)

// AssemblyError is returned when a map can't be built.
type AssemblyError struct {
	Kind AssemblyErrorKind
	// X, Y and Color are set for UnmappedColor
	X, Y  int
	Color palette.RGB
	// Key is set for ReservedKeyCollision
	Key string
	Err error
}

func (e *AssemblyError) Error() string {
	switch e.Kind {
	case UnmappedColor:
		return fmt.Sprintf("wbox: pixel (%d,%d) has unmapped color %s", e.X, e.Y, e.Color)
	case ReservedKeyCollision:
		return fmt.Sprintf("wbox: template declares reserved key %q", e.Key)
	}
	return "wbox: assembly failed"
}

func (e *AssemblyError) Unwrap() error {
	return e.Err
}

// before reports whether e is earlier than o in row-major order.
func (e *AssemblyError) before(o *AssemblyError) bool {
	if e.Y != o.Y {
		return e.Y < o.Y
	}
	return e.X < o.X
}
