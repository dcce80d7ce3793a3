// Package atomicwrite replaces files without exposing partial contents.
package atomicwrite

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// File overwrites filename with data. The bytes go to a temporary file in
// the same directory, which is then renamed over the target. An existing
// file keeps its permission bits; new files get perm.
func File(filename string, data []byte, perm os.FileMode) error {
	if info, err := os.Stat(filename); err == nil {
		perm = info.Mode().Perm()
	}
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, errString(filename))
	}
	tf, err := os.CreateTemp(dir, "."+filepath.Base(filename)+".qcore-*")
	if err != nil {
		return errors.Wrap(err, errString(filename))
	}
	name := tf.Name()
	fail := func(err error) error {
		tf.Close()
		os.Remove(name)
		return errors.Wrap(err, errString(filename))
	}
	if _, err := tf.Write(data); err != nil {
		return fail(err)
	}
	if err := tf.Chmod(perm); err != nil {
		return fail(err)
	}
	if err := tf.Sync(); err != nil {
		return fail(err)
	}
	if err := tf.Close(); err != nil {
		os.Remove(name)
		return errors.Wrap(err, errString(filename))
	}
	if err := os.Rename(name, filename); err != nil {
		os.Remove(name)
		return errors.Wrap(err, errString(filename))
	}
	return nil
}

func errString(filename string) string { return "atomic write to " + filename + " failed" }
