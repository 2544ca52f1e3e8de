package kicad

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/kixport/internal/config"
	kerrors "git.home.luguber.info/inful/kixport/internal/errors"
	"git.home.luguber.info/inful/kixport/internal/toolchain"
)

type recordingRunner struct {
	calls [][]string
	fail  error
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.fail
}

func TestCLI_SchematicCommands(t *testing.T) {
	rr := &recordingRunner{}
	cli := NewCLI("kicad-cli", rr)
	ctx := context.Background()

	require.NoError(t, cli.ExportNetlist(ctx, "w.kicad_sch", "build/w-bom.xml"))
	require.NoError(t, cli.ExportSchematicPDF(ctx, "w.kicad_sch", "asm/w-schematic.pdf"))

	require.Equal(t, [][]string{
		{"kicad-cli", "sch", "export", "python-bom", "-o", "build/w-bom.xml", "w.kicad_sch"},
		{"kicad-cli", "sch", "export", "pdf", "-o", "asm/w-schematic.pdf", "w.kicad_sch"},
	}, rr.calls)
}

func TestCLI_ExportGerbers_CreatesDirAndRunsDrill(t *testing.T) {
	rr := &recordingRunner{}
	cli := NewCLI("", rr)
	dir := filepath.Join(t.TempDir(), "w-gerber")

	require.NoError(t, cli.ExportGerbers(context.Background(), "w.kicad_pcb", dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())

	require.Equal(t, [][]string{
		{"kicad-cli", "pcb", "export", "gerbers", "-o", dir, "--use-drill-file-origin", "w.kicad_pcb"},
		{"kicad-cli", "pcb", "export", "drill", "-o", dir + string(filepath.Separator), "w.kicad_pcb"},
	}, rr.calls)
}

func TestCLI_ExportGerbers_StopsOnFailure(t *testing.T) {
	rr := &recordingRunner{fail: &toolchain.ToolError{Command: []string{"kicad-cli"}, ExitCode: 1}}
	cli := NewCLI("kicad-cli", rr)

	err := cli.ExportGerbers(context.Background(), "w.kicad_pcb", t.TempDir())
	require.Error(t, err)
	require.Len(t, rr.calls, 1, "drill export must not run after a gerber failure")
	require.True(t, kerrors.IsCategory(err, kerrors.CategoryTool))

	var te *toolchain.ToolError
	require.True(t, errors.As(err, &te))
	require.Equal(t, 1, te.ExitCode)
}

func TestCLI_ExportLayersPDF_Flags(t *testing.T) {
	yes, no := true, false
	cases := []struct {
		name string
		fab  config.FabOutput
		want []string
	}{
		{
			name: "plain",
			fab:  config.FabOutput{Name: "top", Layers: "F.Fab,Edge.Cuts", IncludeBorderTitle: &no},
			want: []string{"kicad-cli", "pcb", "export", "pdf", "--output", "o.pdf", "--layers", "F.Fab,Edge.Cuts", "w.kicad_pcb"},
		},
		{
			name: "mirror and border",
			fab:  config.FabOutput{Name: "bottom", Layers: "B.Fab", Mirror: true, IncludeBorderTitle: &yes},
			want: []string{"kicad-cli", "pcb", "export", "pdf", "--output", "o.pdf", "--layers", "B.Fab", "--mirror", "--include-border-title", "w.kicad_pcb"},
		},
		{
			name: "border only",
			fab:  config.FabOutput{Name: "top", Layers: "F.Fab", IncludeBorderTitle: &yes},
			want: []string{"kicad-cli", "pcb", "export", "pdf", "--output", "o.pdf", "--layers", "F.Fab", "--include-border-title", "w.kicad_pcb"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := &recordingRunner{}
			require.NoError(t, NewCLI("kicad-cli", rr).ExportLayersPDF(context.Background(), "w.kicad_pcb", tc.fab, "o.pdf"))
			require.Equal(t, [][]string{tc.want}, rr.calls)
		})
	}
}

func TestCLI_ExportSTEPAndPositions(t *testing.T) {
	rr := &recordingRunner{}
	cli := NewCLI("/opt/kicad/bin/kicad-cli", rr)
	ctx := context.Background()

	require.NoError(t, cli.ExportSTEP(ctx, "w.kicad_pcb", "w.step"))
	require.NoError(t, cli.ExportPositions(ctx, "w.kicad_pcb", "build/w-pos.csv"))

	require.Equal(t, [][]string{
		{"/opt/kicad/bin/kicad-cli", "pcb", "export", "step", "--subst-models", "--output", "w.step", "w.kicad_pcb"},
		{"/opt/kicad/bin/kicad-cli", "pcb", "export", "pos", "--units", "mm", "--output", "build/w-pos.csv", "--format", "csv", "w.kicad_pcb"},
	}, rr.calls)
}
