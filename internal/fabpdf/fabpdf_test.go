package fabpdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// writePDF writes a minimal, well-formed PDF with the given number of blank pages.
func writePDF(t *testing.T, path string, pages int) {
	t.Helper()

	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 200] /Resources << >> >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

func TestMerge_PageCountIsSumOfInputs(t *testing.T) {
	dir := t.TempDir()
	top := filepath.Join(dir, "Widget-fab-top.pdf")
	bottom := filepath.Join(dir, "Widget-fab-bottom.pdf")
	assy := filepath.Join(dir, "Widget-fab-assy.pdf")
	writePDF(t, top, 1)
	writePDF(t, bottom, 2)
	writePDF(t, assy, 3)

	out := filepath.Join(dir, "Widget-fab.pdf")
	require.NoError(t, Merge([]string{top, bottom, assy}, out))

	n, err := PageCount(out)
	require.NoError(t, err)
	require.Equal(t, 6, n)
}

func TestMerge_SingleInputIsCopied(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.pdf")
	writePDF(t, in, 2)

	out := filepath.Join(dir, "out.pdf")
	require.NoError(t, Merge([]string{in}, out))

	want, err := os.ReadFile(in)
	require.NoError(t, err)
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestMerge_NoInputs(t *testing.T) {
	err := Merge(nil, filepath.Join(t.TempDir(), "out.pdf"))
	require.ErrorIs(t, err, ErrNoInputs)
}

func TestPageCount_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o600))
	_, err := PageCount(path)
	require.Error(t, err)
}
