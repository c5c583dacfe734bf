package atomicfile

import (
	"errors"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.wbox")

	require.NoError(t, Write(path, 0o644, func(w io.Writer) error {
		_, err := w.Write([]byte("hello"))
		return err
	}))

	b, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	files, err := ioutil.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestWriteFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.wbox")
	require.NoError(t, ioutil.WriteFile(path, []byte("old"), 0o644))

	boom := errors.New("boom")
	err := Write(path, 0o644, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return boom
	})
	assert.Equal(t, boom, err)

	b, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(b))

	files, err := ioutil.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestWriteMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "map.wbox")

	err := Write(path, 0o644, func(io.Writer) error { return nil })
	assert.Error(t, err)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
