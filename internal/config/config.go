package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	kerrors "git.home.luguber.info/inful/kixport/internal/errors"
)

// Config is the top-level document: global settings plus the boards to build.
type Config struct {
	Settings Settings      `yaml:"settings"`
	Boards   []BoardConfig `yaml:"boards"`
}

// Settings holds the global, run-wide configuration.
type Settings struct {
	AssemblyDir string        `yaml:"assembly_dir"` // durable per-board output root
	BuildDir    string        `yaml:"build_dir"`    // intermediate per-board output root
	Outputs     OutputsConfig `yaml:"outputs"`
	Tools       ToolsConfig   `yaml:"tools,omitempty"`
	HistoryDB   string        `yaml:"history_db,omitempty"`   // SQLite build history, disabled when empty
	MetricsFile string        `yaml:"metrics_file,omitempty"` // Prometheus textfile, disabled when empty
	Notify      *NotifyConfig `yaml:"notify,omitempty"`
}

// OutputsConfig lists the artifact specifications shared by all boards.
type OutputsConfig struct {
	Fab   []FabOutput   `yaml:"fab"`
	KiBOM []KiBOMOutput `yaml:"kibom"`

	// keys present in the decoded document; nil when outputs was absent
	keys map[string]bool
}

// UnmarshalYAML records which keys were present so validation can tell an
// absent list from an empty one.
func (o *OutputsConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain OutputsConfig
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*o = OutputsConfig(p)
	o.keys = make(map[string]bool)
	if value.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(value.Content); i += 2 {
			o.keys[value.Content[i].Value] = true
		}
	}
	return nil
}

func (o OutputsConfig) decoded() bool       { return o.keys != nil }
func (o OutputsConfig) has(key string) bool { return o.keys[key] }

// FabOutput is one page set of the fabrication PDF.
type FabOutput struct {
	Name               string `yaml:"name"`
	Layers             string `yaml:"layers"` // comma separated KiCad layer names
	Mirror             bool   `yaml:"mirror,omitempty"`
	IncludeBorderTitle *bool  `yaml:"include_border_title"`
}

// BorderTitle reports whether the page border and title block are plotted.
func (f FabOutput) BorderTitle() bool {
	return f.IncludeBorderTitle != nil && *f.IncludeBorderTitle
}

// KiBOMOutput describes one KiBOM configuration and the formats it is rendered to.
type KiBOMOutput struct {
	INI     string   `yaml:"ini"`
	Formats []string `yaml:"formats"`
	FileID  string   `yaml:"file_id"`
}

// ToolsConfig overrides the external executables.
type ToolsConfig struct {
	KiCadCLI string `yaml:"kicad_cli,omitempty"`
	KiBOM    string `yaml:"kibom,omitempty"`
}

// NotifyConfig enables board build events on NATS.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject,omitempty"`
}

// BoardConfig is one raw board entry as it appears in the configuration file.
type BoardConfig struct {
	Name     string          `yaml:"name"`
	KiCadPro string          `yaml:"kicad_pro"`
	Variants []VariantConfig `yaml:"variants,omitempty"`
}

// VariantConfig selects a subset of BOM line items.
type VariantConfig struct {
	Name    string `yaml:"name"`
	Variant string `yaml:"variant"`
}

// Load reads, expands, defaults and validates a configuration file.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, kerrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, kerrors.ConfigParse(configPath, fmt.Errorf("read config file: %w", err))
	}

	return Parse(configPath, data)
}

// Parse decodes configuration bytes. The path is used only for error context.
func Parse(configPath string, data []byte) (*Config, error) {
	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, kerrors.ConfigParse(configPath, fmt.Errorf("unmarshal config: %w", err))
	}

	applyDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	borderTitle := true
	exampleConfig := Config{
		Settings: Settings{
			AssemblyDir: "assembly",
			BuildDir:    "build",
			Outputs: OutputsConfig{
				Fab: []FabOutput{
					{Name: "top", Layers: "F.Fab,Edge.Cuts", IncludeBorderTitle: &borderTitle},
					{Name: "bottom", Layers: "B.Fab,Edge.Cuts", Mirror: true, IncludeBorderTitle: &borderTitle},
				},
				KiBOM: []KiBOMOutput{
					{INI: "bom.ini", Formats: []string{"csv", "html"}, FileID: "bom"},
				},
			},
		},
		Boards: []BoardConfig{
			{
				Name:     "example",
				KiCadPro: "hardware/example/example.kicad_pro",
				Variants: []VariantConfig{
					{Name: "Full", Variant: "full"},
					{Name: "Lite", Variant: "lite"},
				},
			},
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
