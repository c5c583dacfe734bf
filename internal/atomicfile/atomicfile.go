// Package atomicfile writes files so that they either appear complete under
// their final name or not at all.
package atomicfile

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
)

// Write creates path by calling fn with a temporary file in the same
// directory which is renamed over path only if fn and all writes succeed.
// On failure the temporary file is removed and any existing file at path is
// left untouched.
func Write(path string, perm os.FileMode, fn func(io.Writer) error) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	f, err := ioutil.TempFile(dir, "."+base+".tmp*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if err = fn(f); err != nil {
		return err
	}
	if err = f.Chmod(perm); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}

	return os.Rename(f.Name(), path)
}
