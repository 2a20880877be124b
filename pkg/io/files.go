package io

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// create file with its parent directories, if missing.
//
// args:
//   - name: filepath to be created.
//   - fmod: os.FileMode for the file.
//   - dmod: os.FileMode for directories.
//
// Note that `dmod` effects to only newly-created directories.
// Directories which have existed are left as they are.
//
// return (*os.File, err):
//
//	When a file is created successfully, `(file, nil)` pair will be returned.
//	Or, if it failed creating one of file or directories, `(nil, err)` pair will be returned.
func CreateAll(name string, fmod os.FileMode, dmod os.FileMode) (*os.File, error) {

	dirname := filepath.Dir(name)
	if err := os.MkdirAll(dirname, dmod); err != nil {
		return nil, err
	}

	return os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, fmod)
}

// copy regular files under src into dest, keeping the directory layout
// and file modes. Missing directories are created with the mode of
// their source directory.
//
// Non-regular files (symlinks, sockets, ...) are skipped.
func DirCopy(src string, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		if d.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm())
		}
		if !d.Type().IsRegular() {
			return nil
		}

		source, err := os.Open(path)
		if err != nil {
			return err
		}
		defer source.Close()

		copied, err := CreateAll(target, info.Mode().Perm(), 0755)
		if err != nil {
			return err
		}
		defer copied.Close()

		_, err = io.Copy(copied, source)
		return err
	})
}
