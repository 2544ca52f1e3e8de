package placement

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const rawPositions = `Ref,Val,Package,PosX,PosY,Rot,Side
"C1","100n","C_0402_1005Metric",101.600000,-52.070000,90.000000,top
"R1","10k, 1%","R_0603_1608Metric",110.490000,-48.260000,0.000000,bottom
"U1","STM32F103C8Tx","LQFP-48_7x7mm_P0.5mm",120.000000,-60.000000,270.000000,top
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func readRecords(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	require.NoError(t, err)
	return recs
}

func TestReshape_ReplacesHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "Widget-pos.csv", rawPositions)
	out := filepath.Join(dir, "Widget-jlcpcb-cpl.csv")

	rows, err := Reshape(in, out)
	require.NoError(t, err)
	require.Equal(t, 3, rows)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	firstLine := strings.SplitN(string(data), "\n", 2)[0]
	require.Equal(t, "Designator,Val,Package,Mid X,Mid y,Rotation,Layer", firstLine)

	inRecs := readRecords(t, in)
	outRecs := readRecords(t, out)
	require.Len(t, outRecs, len(inRecs), "one header dropped, one header added")
	require.Equal(t, Header, outRecs[0])
	require.Equal(t, inRecs[1:], outRecs[1:], "data cells are copied unchanged")
}

func TestReshape_HeaderOnlyInput(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", "Ref,Val,Package,PosX,PosY,Rot,Side\n")
	out := filepath.Join(dir, "out.csv")

	rows, err := Reshape(in, out)
	require.NoError(t, err)
	require.Zero(t, rows)
	require.Equal(t, [][]string{Header}, readRecords(t, out))
}

func TestReshape_EmptyInput(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", "")
	out := filepath.Join(dir, "out.csv")

	rows, err := Reshape(in, out)
	require.NoError(t, err)
	require.Zero(t, rows)
	require.Equal(t, [][]string{Header}, readRecords(t, out))
}

// A second pass replaces the assembly header with itself: line two is a data
// row, never a raw kicad-cli header, and no component is lost.
func TestReshape_AppliedTwice(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", rawPositions)
	once := filepath.Join(dir, "once.csv")
	twice := filepath.Join(dir, "twice.csv")

	_, err := Reshape(in, once)
	require.NoError(t, err)
	rows, err := Reshape(once, twice)
	require.NoError(t, err)
	require.Equal(t, 3, rows)

	recs := readRecords(t, twice)
	require.Equal(t, Header, recs[0])
	require.NotEqual(t, []string{"Ref", "Val", "Package", "PosX", "PosY", "Rot", "Side"}, recs[1])
	require.Equal(t, "C1", recs[1][0])
	require.Equal(t, readRecords(t, once), recs)
}

// Without a header row the first component is taken for the header and dropped.
func TestReshape_HeaderlessInputLosesFirstRow(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", "C1,100n,C_0402,1,2,0,top\nR1,10k,R_0603,3,4,90,top\n")
	out := filepath.Join(dir, "out.csv")

	rows, err := Reshape(in, out)
	require.NoError(t, err)
	require.Equal(t, 1, rows)
	require.Equal(t, [][]string{Header, {"R1", "10k", "R_0603", "3", "4", "90", "top"}}, readRecords(t, out))
}

func TestReshape_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := Reshape(filepath.Join(dir, "missing.csv"), filepath.Join(dir, "out.csv"))
	require.Error(t, err)
}
