// Package placement rewrites the kicad-cli position file into the
// component placement list layout expected by JLCPCB assembly.
package placement

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"slices"

	kerrors "git.home.luguber.info/inful/kixport/internal/errors"
	"git.home.luguber.info/inful/kixport/internal/logfields"
)

// Header is the column layout of the assembly placement file.
var Header = []string{"Designator", "Val", "Package", "Mid X", "Mid y", "Rotation", "Layer"}

// Reshape drops the first row of in, writes Header to out and copies every
// remaining row with its cell values unchanged. It returns the number of data
// rows written.
//
// The first row is dropped without inspection. Input that has no header row
// loses its first component. Input that was already reshaped comes out
// unchanged, and a warning is logged for it.
func Reshape(in, out string) (rows int, err error) {
	src, err := os.Open(in)
	if err != nil {
		return 0, kerrors.FileSystem("open", in, err)
	}
	defer src.Close()

	dst, err := os.Create(out)
	if err != nil {
		return 0, kerrors.FileSystem("create", out, err)
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil && err == nil {
			err = kerrors.FileSystem("close", out, cerr)
		}
	}()

	rows, err = reshape(src, dst)
	if err != nil {
		return rows, kerrors.Wrap(err, kerrors.CategoryBuild, kerrors.SeverityFatal, "reshape placement file").
			WithContext("input", in).
			WithContext("output", out)
	}
	slog.Debug("Placement file written", logfields.Path(out), logfields.Count(rows))
	return rows, nil
}

func reshape(r io.Reader, w io.Writer) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cw := csv.NewWriter(w)

	first, err := cr.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}
	if slices.Equal(first, Header) {
		slog.Warn("Placement input already has the assembly header; was it reshaped twice?")
	}

	if err := cw.Write(Header); err != nil {
		return 0, err
	}

	rows := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, err
		}
		if err := cw.Write(rec); err != nil {
			return rows, err
		}
		rows++
	}

	cw.Flush()
	return rows, cw.Error()
}
