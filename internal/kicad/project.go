package kicad

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	kerrors "git.home.luguber.info/inful/kixport/internal/errors"
)

// VersionVariable is the text variable holding the board revision.
const VersionVariable = "VERSION"

// project is the subset of a .kicad_pro document we consume.
type project struct {
	TextVariables map[string]string `json:"text_variables"`
}

// ReadVersion returns text_variables.VERSION from a KiCad project file.
func ReadVersion(projectPath string) (string, error) {
	data, err := os.ReadFile(projectPath)
	if err != nil {
		return "", kerrors.FileSystem("read", projectPath, err)
	}

	var p project
	if err := json.Unmarshal(jsonc.ToJSON(data), &p); err != nil {
		return "", kerrors.MissingVersion(projectPath, fmt.Sprintf("parse project: %v", err))
	}
	if p.TextVariables == nil {
		return "", kerrors.MissingVersion(projectPath, "no text_variables table")
	}
	v, ok := p.TextVariables[VersionVariable]
	if !ok {
		return "", kerrors.MissingVersion(projectPath, "no "+VersionVariable+" text variable")
	}
	return v, nil
}
