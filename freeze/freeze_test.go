package freeze

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	m.Set(1, 0, color.White)
	m.Set(2, 1, color.NRGBA{0xff, 0xff, 0xff, 0x80})
	m.Set(0, 1, color.NRGBA{0xfe, 0xff, 0xff, 0xff})

	mask, err := New(m, 3, 2)
	require.NoError(t, err)

	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			want := (x == 1 && y == 0) || (x == 2 && y == 1)
			assert.Equal(t, want, mask.IsFrozen(x, y), "(%d,%d)", x, y)
		}
	}
	assert.Equal(t, 2, mask.Count())
	assert.False(t, mask.IsFrozen(3, 0))
	assert.False(t, mask.IsFrozen(-1, 0))
}

func TestNewOffsetBounds(t *testing.T) {
	m := image.NewNRGBA(image.Rect(10, 10, 12, 11))
	m.Set(10, 10, color.White)

	mask, err := New(m, 2, 1)
	require.NoError(t, err)
	assert.True(t, mask.IsFrozen(0, 0))
	assert.False(t, mask.IsFrozen(1, 0))
}

func TestNewDimensionMismatch(t *testing.T) {
	for _, r := range []image.Rectangle{
		image.Rect(0, 0, 3, 2),
		image.Rect(0, 0, 2, 3),
		image.Rect(0, 0, 1, 2),
	} {
		_, err := New(image.NewNRGBA(r), 2, 2)

		var de *DimensionMismatchError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, r.Dx(), de.Width)
		assert.Equal(t, r.Dy(), de.Height)
		assert.Equal(t, 2, de.ExpectedWidth)
	}
}

func TestNilMask(t *testing.T) {
	var mask *Mask
	assert.False(t, mask.IsFrozen(0, 0))
	assert.Equal(t, 0, mask.Count())
}
