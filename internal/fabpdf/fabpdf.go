// Package fabpdf assembles the per-layer fabrication PDFs exported by
// kicad-cli into one multi-page document.
package fabpdf

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	kerrors "git.home.luguber.info/inful/kixport/internal/errors"
	"git.home.luguber.info/inful/kixport/internal/logfields"
)

// ErrNoInputs is returned by Merge when there is nothing to concatenate.
var ErrNoInputs = errors.New("fabpdf: no input PDFs")

var disableConfigDir sync.Once

// configuration returns pdfcpu's defaults without touching the user's config dir.
func configuration() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	return model.NewDefaultConfiguration()
}

// Merge appends every page of every input, in order, into out.
func Merge(inputs []string, out string) error {
	slog.Info("Generating fabrication PDF", logfields.Path(out), logfields.Count(len(inputs)))

	switch len(inputs) {
	case 0:
		return kerrors.Wrap(ErrNoInputs, kerrors.CategoryBuild, kerrors.SeverityFatal, "fabrication PDF merge failed").
			WithContext("output", out)
	case 1:
		return copyFile(inputs[0], out)
	}

	if err := api.MergeCreateFile(inputs, out, false, configuration()); err != nil {
		return kerrors.Wrap(err, kerrors.CategoryBuild, kerrors.SeverityFatal, "fabrication PDF merge failed").
			WithContext("output", out)
	}
	return nil
}

// PageCount returns the number of pages in a PDF file.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, kerrors.Wrap(err, kerrors.CategoryBuild, kerrors.SeverityError, "read PDF page count").
			WithContext("path", path)
	}
	return n, nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return kerrors.FileSystem("open", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return kerrors.FileSystem("create", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = kerrors.FileSystem("close", dst, cerr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return kerrors.FileSystem("copy", dst, err)
	}
	return nil
}
