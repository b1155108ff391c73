// Package config loads, validates, and saves cachesim configuration documents.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a configuration document.
type Format string

const (
	FormatAuto Format = ""
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Document is the on-disk configuration. Pointer fields distinguish an absent
// key from an explicit zero.
type Document struct {
	Model    string `toml:"model,omitempty" yaml:"model,omitempty"`
	CacheTTL string `toml:"cacheTTL,omitempty" yaml:"cacheTTL,omitempty"` // "5m" (default) or "1h"
	Theme    string `toml:"theme,omitempty" yaml:"theme,omitempty"`

	PromptSize        *int64 `toml:"promptSize,omitempty" yaml:"promptSize,omitempty"`
	UserMessageSize   *int64 `toml:"userMessageSize,omitempty" yaml:"userMessageSize,omitempty"`
	ModelResponseSize *int64 `toml:"modelResponseSize,omitempty" yaml:"modelResponseSize,omitempty"`
	MaxPromptSize     *int64 `toml:"maxPromptSize,omitempty" yaml:"maxPromptSize,omitempty"`
	TrimmedSize       *int64 `toml:"trimmedSize,omitempty" yaml:"trimmedSize,omitempty"`

	SendingCost         *float64 `toml:"sendingCost,omitempty" yaml:"sendingCost,omitempty"`
	ModelCost           *float64 `toml:"modelCost,omitempty" yaml:"modelCost,omitempty"`
	CacheMissMultiplier *float64 `toml:"cacheMissMultiplier,omitempty" yaml:"cacheMissMultiplier,omitempty"`
	CacheHitMultiplier  *float64 `toml:"cacheHitMultiplier,omitempty" yaml:"cacheHitMultiplier,omitempty"`

	Iterations     *int  `toml:"iterations,omitempty" yaml:"iterations,omitempty"`
	CalculateToMax *bool `toml:"calculateToMax,omitempty" yaml:"calculateToMax,omitempty"`
}

func ptr[T any](v T) *T { return &v }

// DefaultDocument returns the stock parameters offered by `cachesim setup`.
func DefaultDocument() Document {
	return Document{
		PromptSize:          ptr[int64](2000),
		UserMessageSize:     ptr[int64](20),
		ModelResponseSize:   ptr[int64](250),
		MaxPromptSize:       ptr[int64](10000),
		TrimmedSize:         ptr[int64](5000),
		SendingCost:         ptr(3.0),
		ModelCost:           ptr(15.0),
		CacheMissMultiplier: ptr(1.25),
		CacheHitMultiplier:  ptr(0.1),
		Iterations:          ptr(50),
		CalculateToMax:      ptr(true),
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cachesim")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cachesim")
}

// ConfigPath returns the config file used when no path is given.
// CACHESIM_CONFIG takes precedence over the XDG location.
func ConfigPath() string {
	if p := os.Getenv("CACHESIM_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(ConfigDir(), "config.toml")
}

// Exists returns true if a file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FormatFor picks a format from the file extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// Load reads and decodes the document at path. A missing file is returned as
// a wrapped os.ErrNotExist; a malformed one as *ParseError.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-chosen path
	if err != nil {
		return Document{}, fmt.Errorf("reading config: %w", err)
	}

	format := FormatFor(path)
	doc, err := Parse(data, format)
	if err != nil {
		return Document{}, &ParseError{Path: path, Err: err}
	}

	slog.Debug("config loaded", "path", path, "format", string(format), "model", doc.Model)
	return doc, nil
}

// Parse decodes a document. FormatAuto tries TOML first, then YAML.
func Parse(data []byte, format Format) (Document, error) {
	switch format {
	case FormatTOML:
		return parseTOML(data)
	case FormatYAML:
		return parseYAML(data)
	}

	doc, tomlErr := parseTOML(data)
	if tomlErr == nil {
		return doc, nil
	}
	doc, yamlErr := parseYAML(data)
	if yamlErr == nil {
		return doc, nil
	}
	return Document{}, fmt.Errorf("not valid TOML (%v) or YAML (%v)", tomlErr, yamlErr)
}

func parseTOML(data []byte) (Document, error) {
	var doc Document
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return Document{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return Document{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return doc, nil
}

func parseYAML(data []byte) (Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Document{}, err
	}
	if len(root.Content) > 0 {
		if err := checkWholeNumbers(root.Content[0]); err != nil {
			return Document{}, err
		}
	}

	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty document: every key is absent.
			return Document{}, nil
		}
		return Document{}, err
	}
	return doc, nil
}

// wholeNumberKeys are the integer keys. yaml.v3 would otherwise truncate a
// real like 1000.5 into them; TOML rejects it, and so does this.
var wholeNumberKeys = map[string]bool{
	"promptSize":        true,
	"userMessageSize":   true,
	"modelResponseSize": true,
	"maxPromptSize":     true,
	"trimmedSize":       true,
	"iterations":        true,
}

func checkWholeNumbers(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		if !wholeNumberKeys[key] || val.Kind != yaml.ScalarNode {
			continue
		}
		switch val.ShortTag() {
		case "!!int", "!!null":
		default:
			return fmt.Errorf("line %d: %s must be a whole number, got %q", val.Line, key, val.Value)
		}
	}
	return nil
}

// Save writes the document to path, choosing YAML for .yaml/.yml and TOML
// otherwise.
func Save(path string, doc Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-chosen path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if FormatFor(path) == FormatYAML {
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		return enc.Close()
	}

	if err := toml.NewEncoder(f).Encode(doc); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
