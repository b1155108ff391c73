package config

import (
	"fmt"
	"strings"
)

// ConfigError reports a configuration that is incomplete or out of range.
type ConfigError struct { //nolint:revive // config.ConfigError reads fine at call sites
	Missing  []string // required keys absent from the document, in canonical order
	Problems []string // values present but invalid
}

func (e *ConfigError) Error() string {
	parts := make([]string, 0, len(e.Problems)+1)
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required parameter(s): "+strings.Join(e.Missing, ", "))
	}
	parts = append(parts, e.Problems...)
	return strings.Join(parts, "; ")
}

func (e *ConfigError) addProblem(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

func (e *ConfigError) empty() bool {
	return len(e.Missing) == 0 && len(e.Problems) == 0
}

// ParseError reports a configuration document that could not be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parsing config: %v", e.Err)
	}
	return fmt.Sprintf("parsing config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
