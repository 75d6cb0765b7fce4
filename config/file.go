// Package config loads the .keycheck.yaml project file and environment overrides.
//
// Settings are layered: built-in defaults, then .keycheck.yaml in the
// project root, then KEYCHECK_* environment variables. Command-line flags
// are applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/keycheck/baseline"
	"github.com/minios-linux/keycheck/langfile"
	"github.com/minios-linux/keycheck/report"
)

// FileName is the project configuration file name.
const FileName = ".keycheck.yaml"

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .keycheck.yaml structure.
type File struct {
	// Directory holds the lang_*.json files, relative to the project root.
	Directory string `yaml:"directory,omitempty"`
	// Ignore lists extra glob patterns of file names to skip.
	Ignore []string `yaml:"ignore,omitempty"`
	// Strict aborts a run on the first malformed file.
	Strict bool `yaml:"strict,omitempty"`
	// Jobs bounds the number of files processed at once (0 = CPU count).
	Jobs int `yaml:"jobs,omitempty"`
	// Format is the report format: text, json or yaml.
	Format string `yaml:"format,omitempty"`
	// View is the report view: file or key.
	View string `yaml:"view,omitempty"`
	// Baseline is the lock file path, relative to the project root.
	Baseline string `yaml:"baseline,omitempty"`
}

// LoadFile loads and validates .keycheck.yaml from rootDir.
// Returns nil if the file doesn't exist.
func LoadFile(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}

func (f *File) validate() error {
	if f.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", f.Jobs)
	}
	if f.Format != "" {
		if _, err := report.ParseFormat(f.Format); err != nil {
			return err
		}
	}
	if f.View != "" {
		if _, err := report.ParseView(f.View); err != nil {
			return err
		}
	}
	if _, err := langfile.NewFilter(f.Ignore); err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Resolved settings
// ---------------------------------------------------------------------------

// Settings is the effective configuration after all layers are applied.
type Settings struct {
	Directory string
	Ignore    []string
	Strict    bool
	Jobs      int
	Format    report.Format
	View      report.View
	Baseline  string
	LogLevel  string
	Lang      string
}

// Defaults returns the built-in settings for a project root.
func Defaults(rootDir string) Settings {
	return Settings{
		Format:   report.FormatText,
		View:     report.ViewFile,
		Baseline: filepath.Join(rootDir, baseline.FileName),
		LogLevel: "info",
	}
}

// Load resolves settings for rootDir from defaults, .keycheck.yaml and the
// environment, in that order.
func Load(rootDir string) (Settings, error) {
	s := Defaults(rootDir)

	f, err := LoadFile(rootDir)
	if err != nil {
		return s, err
	}
	if f != nil {
		s.applyFile(rootDir, f)
	}

	e, err := LoadEnv()
	if err != nil {
		return s, err
	}
	if err := s.applyEnv(e); err != nil {
		return s, err
	}
	return s, nil
}

func (s *Settings) applyFile(rootDir string, f *File) {
	if f.Directory != "" {
		s.Directory = resolve(rootDir, f.Directory)
	}
	if len(f.Ignore) > 0 {
		s.Ignore = append([]string(nil), f.Ignore...)
	}
	s.Strict = f.Strict
	if f.Jobs > 0 {
		s.Jobs = f.Jobs
	}
	if f.Format != "" {
		s.Format, _ = report.ParseFormat(f.Format)
	}
	if f.View != "" {
		s.View, _ = report.ParseView(f.View)
	}
	if f.Baseline != "" {
		s.Baseline = resolve(rootDir, f.Baseline)
	}
}

// resolve interprets p relative to rootDir unless it is absolute.
func resolve(rootDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(rootDir, p)
}
