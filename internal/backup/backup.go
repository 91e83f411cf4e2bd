// Package backup writes tar.xz archives of a song collection before a
// fix run touches it.
package backup

import (
	"archive/tar"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/beamertools/sngward/core/errors"
)

// Create archives every .sng file under srcDir into a timestamped
// tar.xz in dstDir and returns the archive path.
func Create(srcDir, dstDir string) (string, error) {
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return "", errors.NewIO("create backup directory", dstDir, err)
	}

	name := "sngward-backup-" + time.Now().Format("20060102-150405") + ".tar.xz"
	dstPath := filepath.Join(dstDir, name)

	outFile, err := os.Create(dstPath)
	if err != nil {
		return "", errors.NewIO("create archive", dstPath, err)
	}
	defer outFile.Close()

	xw, err := xz.NewWriter(outFile)
	if err != nil {
		return "", errors.Wrap(err, "initializing xz writer")
	}
	tw := tar.NewWriter(xw)

	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".sng") {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)

		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(tw, file)
		return err
	})
	if walkErr != nil {
		tw.Close()
		xw.Close()
		return "", errors.NewIO("archive collection", srcDir, walkErr)
	}

	if err := tw.Close(); err != nil {
		return "", errors.Wrap(err, "closing tar writer")
	}
	if err := xw.Close(); err != nil {
		return "", errors.Wrap(err, "closing xz writer")
	}
	return dstPath, nil
}

// List returns the file names stored in an archive created by Create.
func List(archivePath string) ([]string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, errors.NewIO("open archive", archivePath, err)
	}
	defer f.Close()

	xr, err := xz.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "initializing xz reader")
	}

	var names []string
	tr := tar.NewReader(xr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading archive")
		}
		names = append(names, header.Name)
	}
	return names, nil
}
