package store

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kilianp07/loadshare/core/model"
	"github.com/kilianp07/loadshare/core/outputs"
)

// stagedFile is a fully written temporary file waiting to be renamed
// over its target.
type stagedFile struct {
	op   string
	tmp  string
	path string
}

// stageFile writes through fn into a temporary file next to path. The
// target itself is untouched until Commit.
func stageFile(op, path string, fn func(w io.Writer) error) (outputs.Staged, error) {
	tmp, err := writeTemp(path, fn)
	if err != nil {
		return nil, model.IOError(op, path, err)
	}
	return &stagedFile{op: op, tmp: tmp, path: path}, nil
}

func (f *stagedFile) Commit() error {
	if err := os.Rename(f.tmp, f.path); err != nil {
		_ = os.Remove(f.tmp)
		return model.IOError(f.op, f.path, err)
	}
	return nil
}

func (f *stagedFile) Discard() error {
	if err := os.Remove(f.tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return model.IOError(f.op, f.path, err)
	}
	return nil
}

func writeTemp(path string, fn func(w io.Writer) error) (name string, err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	bw := bufio.NewWriter(tmp)
	if err = fn(bw); err != nil {
		return "", err
	}
	if err = bw.Flush(); err != nil {
		return "", err
	}
	if err = tmp.Sync(); err != nil {
		return "", err
	}
	if err = tmp.Close(); err != nil {
		return "", err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", err
	}
	return tmp.Name(), nil
}
