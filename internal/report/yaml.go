// Package report writes run summaries as YAML and renders them for the terminal.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tinytelemetry/respfilter/internal/model"
)

// Document is the top-level shape of a YAML run report.
type Document struct {
	Version string             `yaml:"version"`
	Runs    []model.RunSummary `yaml:"runs"`
}

// WriteYAML writes runs to path, creating parent directories as needed.
func WriteYAML(path, version string, runs []model.RunSummary) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("report: mkdir: %w", err)
		}
	}

	data, err := yaml.Marshal(Document{Version: version, Runs: runs})
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("report: write: %w", err)
	}
	return nil
}
