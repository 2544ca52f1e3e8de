package gerberzip

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	kerrors "git.home.luguber.info/inful/kixport/internal/errors"
)

func TestCreate_FlatArchiveOfAllFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Widget-gerber")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o750))

	files := map[string]string{
		"Widget-F_Cu.gtl":      "G04 top copper*\n",
		"Widget-B_Cu.gbl":      "G04 bottom copper*\n",
		"Widget-Edge_Cuts.gm1": "G04 outline*\n",
		"Widget.drl":           "M48\nT1C0.3\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "ignored.txt"), []byte("x"), 0o600))

	zipPath := filepath.Join(t.TempDir(), "Widget-gerber.zip")
	names, err := Create(dir, zipPath)
	require.NoError(t, err)
	require.Len(t, names, len(files))

	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer zr.Close()

	var got []string
	for _, f := range zr.File {
		got = append(got, f.Name)

		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, rc.Close())
		require.NoError(t, err)
		require.Equal(t, files[f.Name], string(data), "content of %s", f.Name)
	}

	var want []string
	for name := range files {
		want = append(want, name)
	}
	sort.Strings(want)
	sort.Strings(got)
	require.Equal(t, want, got, "archive holds exactly the directory's files with no path prefix")
}

func TestCreate_EmptyDirectory(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "empty.zip")
	names, err := Create(t.TempDir(), zipPath)
	require.NoError(t, err)
	require.Empty(t, names)

	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer zr.Close()
	require.Empty(t, zr.File)
}

func TestCreate_MissingDirectory(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "x.zip")
	_, err := Create(filepath.Join(t.TempDir(), "missing"), zipPath)
	require.Error(t, err)
	require.True(t, kerrors.IsCategory(err, kerrors.CategoryFileSystem))

	_, statErr := os.Stat(zipPath)
	require.True(t, os.IsNotExist(statErr), "no archive is created when the source directory is missing")
}
