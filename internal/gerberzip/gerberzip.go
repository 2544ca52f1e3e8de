// Package gerberzip packages a directory of Gerber and drill files into the
// single flat archive board houses expect.
package gerberzip

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"

	kerrors "git.home.luguber.info/inful/kixport/internal/errors"
	"git.home.luguber.info/inful/kixport/internal/logfields"
)

// Create writes every regular file directly inside dir to zipPath, stored at
// the archive root. Subdirectories are skipped. It returns the archived names.
func Create(dir, zipPath string) (names []string, err error) {
	slog.Info("Generating zip file for gerbers", logfields.Path(zipPath))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, kerrors.FileSystem("readdir", dir, err)
	}

	out, err := os.Create(zipPath)
	if err != nil {
		return nil, kerrors.FileSystem("create", zipPath, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = kerrors.FileSystem("close", zipPath, cerr)
		}
	}()

	zw := zip.NewWriter(out)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if err := addFile(zw, filepath.Join(dir, entry.Name())); err != nil {
			_ = zw.Close()
			return nil, err
		}
		names = append(names, entry.Name())
	}
	if err := zw.Close(); err != nil {
		return nil, kerrors.FileSystem("write", zipPath, err)
	}

	slog.Debug("Gerber archive written", logfields.Path(zipPath), logfields.Count(len(names)))
	return names, nil
}

func addFile(zw *zip.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return kerrors.FileSystem("open", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return kerrors.FileSystem("stat", path, err)
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return kerrors.FileSystem("zip header", path, err)
	}
	hdr.Name = info.Name()
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return kerrors.FileSystem("zip entry", path, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return kerrors.FileSystem("zip copy", path, err)
	}
	return nil
}
