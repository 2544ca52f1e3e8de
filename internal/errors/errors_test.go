package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestKixportError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *KixportError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("file not found"), CategoryConfig, SeverityFatal, "failed to load config"),
			expected: "config (fatal): failed to load config: file not found",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := test.err.Error()
			if result != test.expected {
				t.Errorf("Error() = %q, want %q", result, test.expected)
			}
		})
	}
}

func TestKixportError_WithContext(t *testing.T) {
	err := New(CategoryTool, SeverityFatal, "export failed").
		WithContext("board", "Widget").
		WithContext("stage", "gerbers")

	if err.Context == nil {
		t.Fatal("Context should not be nil")
	}
	if err.Context["board"] != "Widget" {
		t.Errorf("Context[board] = %v, want Widget", err.Context["board"])
	}
	if err.Context["stage"] != "gerbers" {
		t.Errorf("Context[stage] = %v, want gerbers", err.Context["stage"])
	}
}

func TestIsCategory(t *testing.T) {
	configErr := New(CategoryConfig, SeverityFatal, "config error")
	toolErr := ExternalTool("kicad-cli", fmt.Errorf("exit status 1"))
	wrapped := fmt.Errorf("stage gerbers: %w", toolErr)
	standardErr := fmt.Errorf("standard error")

	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		expected bool
	}{
		{"config error matches config category", configErr, CategoryConfig, true},
		{"config error doesn't match tool category", configErr, CategoryTool, false},
		{"tool error matches tool category", toolErr, CategoryTool, true},
		{"wrapped tool error matches tool category", wrapped, CategoryTool, true},
		{"standard error doesn't match any category", standardErr, CategoryConfig, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsCategory(test.err, test.category)
			if result != test.expected {
				t.Errorf("IsCategory() = %v, want %v", result, test.expected)
			}
		})
	}
}

func TestGetCategory(t *testing.T) {
	if got := GetCategory(fmt.Errorf("plain")); got != CategoryInternal {
		t.Errorf("GetCategory(plain) = %v, want %v", got, CategoryInternal)
	}
	if got := GetCategory(MissingVersion("a.kicad_pro", "no key")); got != CategoryVersion {
		t.Errorf("GetCategory(MissingVersion) = %v, want %v", got, CategoryVersion)
	}
}

func TestConvenienceFunctions(t *testing.T) {
	t.Run("ConfigNotFound", func(t *testing.T) {
		err := ConfigNotFound("/path/to/boards.yaml")
		if err.Category != CategoryConfig {
			t.Errorf("Category = %v, want %v", err.Category, CategoryConfig)
		}
		if err.Severity != SeverityFatal {
			t.Errorf("Severity = %v, want %v", err.Severity, SeverityFatal)
		}
		if err.Context["path"] != "/path/to/boards.yaml" {
			t.Errorf("Context[path] = %v, want /path/to/boards.yaml", err.Context["path"])
		}
	})

	t.Run("ExternalTool", func(t *testing.T) {
		cause := fmt.Errorf("exit status 2")
		err := ExternalTool("kibom", cause)
		if err.Category != CategoryTool {
			t.Errorf("Category = %v, want %v", err.Category, CategoryTool)
		}
		if !stdErrors.Is(err, cause) {
			t.Errorf("Cause should match wrapped cause: %v", cause)
		}
	})

	t.Run("FileSystem", func(t *testing.T) {
		err := FileSystem("mkdir", "/out/Widget", fmt.Errorf("permission denied"))
		if err.Category != CategoryFileSystem {
			t.Errorf("Category = %v, want %v", err.Category, CategoryFileSystem)
		}
		if err.Context["operation"] != "mkdir" {
			t.Errorf("Context[operation] = %v, want mkdir", err.Context["operation"])
		}
	})
}

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"nil", nil, 0},
		{"plain", fmt.Errorf("boom"), 1},
		{"config", ConfigRequired("settings.build_dir"), 7},
		{"version", MissingVersion("x.kicad_pro", "missing"), 7},
		{"validation", ValidationFailed("boards", "empty"), 2},
		{"tool", ExternalTool("kicad-cli", fmt.Errorf("exit 1")), 8},
		{"wrapped tool", fmt.Errorf("board Widget: %w", ExternalTool("kicad-cli", fmt.Errorf("exit 1"))), 8},
		{"filesystem", FileSystem("write", "/x", fmt.Errorf("nope")), 11},
		{"internal", InternalError("bug", nil), 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := a.ExitCodeFor(tc.err); got != tc.code {
				t.Errorf("ExitCodeFor() = %d, want %d", got, tc.code)
			}
		})
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var exitCode int
	var out strings.Builder
	a := NewCLIErrorAdapter(false, nil)
	a.out = &out
	a.exit = func(code int) { exitCode = code }

	a.HandleError(ConfigRequired("boards"))

	if exitCode != 7 {
		t.Errorf("exit code = %d, want 7", exitCode)
	}
	if out.String() != "required configuration missing: boards\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestCLIErrorAdapter_FormatWrappedError(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)

	wrapped := fmt.Errorf("board W: %w", ConfigRequired("settings.outputs"))
	if got := a.FormatError(wrapped); got != "required configuration missing: settings.outputs" {
		t.Errorf("FormatError(wrapped config) = %q", got)
	}

	wrapped = fmt.Errorf("board W: %w", New(CategoryTool, SeverityError, "kicad-cli failed"))
	if got := a.FormatError(wrapped); got != "tool: kicad-cli failed" {
		t.Errorf("FormatError(wrapped tool) = %q", got)
	}

	if got := a.FormatError(stdErrors.New("plain")); got != "Error: plain" {
		t.Errorf("FormatError(plain) = %q", got)
	}
}
