package config

import (
	"fmt"
	"strings"

	kerrors "git.home.luguber.info/inful/kixport/internal/errors"
)

// ValidateConfig checks that every key needed to run a build is present.
// It does not check that board names are unique; see DuplicateBoardNames.
func ValidateConfig(cfg *Config) error {
	validator := newConfigurationValidator(cfg)
	return validator.validate()
}

// configurationValidator coordinates validation across configuration sections.
type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateSettings(); err != nil {
		return err
	}
	if err := cv.validateOutputs(); err != nil {
		return err
	}
	return cv.validateBoards()
}

func (cv *configurationValidator) validateSettings() error {
	s := cv.config.Settings
	if strings.TrimSpace(s.AssemblyDir) == "" {
		return kerrors.ConfigRequired("settings.assembly_dir")
	}
	if strings.TrimSpace(s.BuildDir) == "" {
		return kerrors.ConfigRequired("settings.build_dir")
	}
	if s.Notify != nil && s.Notify.NATSURL == "" {
		return kerrors.ConfigRequired("settings.notify.nats_url")
	}
	return nil
}

func (cv *configurationValidator) validateOutputs() error {
	outputs := cv.config.Settings.Outputs
	if !outputs.decoded() {
		return kerrors.ConfigRequired("settings.outputs")
	}
	if !outputs.has("fab") || len(outputs.Fab) == 0 {
		return kerrors.ConfigRequired("settings.outputs.fab")
	}
	for i, fab := range outputs.Fab {
		if fab.Name == "" {
			return kerrors.ConfigRequired(fmt.Sprintf("settings.outputs.fab[%d].name", i))
		}
		if fab.Layers == "" {
			return kerrors.ConfigRequired(fmt.Sprintf("settings.outputs.fab[%d].layers", i))
		}
		if fab.IncludeBorderTitle == nil {
			return kerrors.ConfigRequired(fmt.Sprintf("settings.outputs.fab[%d].include_border_title", i))
		}
	}
	if !outputs.has("kibom") {
		return kerrors.ConfigRequired("settings.outputs.kibom")
	}
	for i, bom := range outputs.KiBOM {
		if bom.INI == "" {
			return kerrors.ConfigRequired(fmt.Sprintf("settings.outputs.kibom[%d].ini", i))
		}
		if len(bom.Formats) == 0 {
			return kerrors.ConfigRequired(fmt.Sprintf("settings.outputs.kibom[%d].formats", i))
		}
		if bom.FileID == "" {
			return kerrors.ConfigRequired(fmt.Sprintf("settings.outputs.kibom[%d].file_id", i))
		}
		for j, f := range bom.Formats {
			if strings.TrimSpace(f) == "" {
				return kerrors.ConfigRequired(fmt.Sprintf("settings.outputs.kibom[%d].formats[%d]", i, j))
			}
		}
	}
	return nil
}

func (cv *configurationValidator) validateBoards() error {
	if len(cv.config.Boards) == 0 {
		return kerrors.ConfigRequired("boards")
	}
	for i, b := range cv.config.Boards {
		if b.Name == "" {
			return kerrors.ConfigRequired(fmt.Sprintf("boards[%d].name", i))
		}
		if b.KiCadPro == "" {
			return kerrors.ConfigRequired(fmt.Sprintf("boards[%d].kicad_pro", i))
		}
		for j, v := range b.Variants {
			if v.Variant == "" {
				return kerrors.ConfigRequired(fmt.Sprintf("boards[%d].variants[%d].variant", i, j))
			}
		}
	}
	return nil
}

// DuplicateBoardNames returns every board name that appears more than once,
// in first-seen order. Duplicates overwrite each other's output.
func DuplicateBoardNames(cfg *Config) []string {
	seen := make(map[string]int, len(cfg.Boards))
	var dups []string
	for _, b := range cfg.Boards {
		seen[b.Name]++
		if seen[b.Name] == 2 {
			dups = append(dups, b.Name)
		}
	}
	return dups
}

// SelectBoards filters boards by name, preserving configuration order.
// An empty name list selects every board.
func SelectBoards(cfg *Config, names []string) ([]BoardConfig, error) {
	if len(names) == 0 {
		return cfg.Boards, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var selected []BoardConfig
	found := make(map[string]bool, len(names))
	for _, b := range cfg.Boards {
		if want[b.Name] {
			selected = append(selected, b)
			found[b.Name] = true
		}
	}
	for _, n := range names {
		if !found[n] {
			return nil, kerrors.ValidationFailed("board", fmt.Sprintf("board %q not found in configuration", n))
		}
	}
	return selected, nil
}
