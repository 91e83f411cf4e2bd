// Package fileutil has small filesystem helpers shared by the batch
// runner.
package fileutil

import (
	"io"
	"os"
	"path/filepath"

	"github.com/beamertools/sngward/core/errors"
)

// CopyFile copies src to dst, creating missing parent directories.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.NewIO("open", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.NewIO("create directory", filepath.Dir(dst), err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return errors.NewIO("create", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.NewIO("copy", dst, err)
	}
	return out.Close()
}

// CopyDir copies a directory tree recursively.
func CopyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return CopyFile(path, target)
	})
}

// Exists reports whether a path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
