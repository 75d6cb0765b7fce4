package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/minios-linux/keycheck/report"
)

// Env holds the KEYCHECK_* environment overrides. Pointer fields stay nil
// when the variable is unset.
type Env struct {
	Directory string `env:"KEYCHECK_DIR"`
	Jobs      *int   `env:"KEYCHECK_JOBS"`
	Format    string `env:"KEYCHECK_FORMAT"`
	View      string `env:"KEYCHECK_VIEW"`
	Strict    *bool  `env:"KEYCHECK_STRICT"`
	LogLevel  string `env:"KEYCHECK_LOG_LEVEL" envDefault:"info"`
	Lang      string `env:"KEYCHECK_LANG"`
}

// LoadEnv reads the KEYCHECK_* variables.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return e, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

func (s *Settings) applyEnv(e Env) error {
	if e.Directory != "" {
		s.Directory = e.Directory
	}
	if e.Jobs != nil {
		if *e.Jobs < 0 {
			return fmt.Errorf("KEYCHECK_JOBS must not be negative, got %d", *e.Jobs)
		}
		s.Jobs = *e.Jobs
	}
	if e.Format != "" {
		f, err := report.ParseFormat(e.Format)
		if err != nil {
			return fmt.Errorf("KEYCHECK_FORMAT: %w", err)
		}
		s.Format = f
	}
	if e.View != "" {
		v, err := report.ParseView(e.View)
		if err != nil {
			return fmt.Errorf("KEYCHECK_VIEW: %w", err)
		}
		s.View = v
	}
	if e.Strict != nil {
		s.Strict = *e.Strict
	}
	if e.LogLevel != "" {
		s.LogLevel = e.LogLevel
	}
	s.Lang = e.Lang
	return nil
}
