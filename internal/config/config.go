// Package config loads mrgen settings from .mrgen/settings.yaml.
//
// Every field is optional; a missing file yields Default(). The exclude list
// holds glob patterns for curated files the generator must not read, written
// relative to the scope directory ("terms/drafts/**") or as bare file globs
// ("*.draft.md").
package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSAF is the SAF file name used when none is configured.
const DefaultSAF = "saf.yaml"

// Settings holds mrgen configuration.
type Settings struct {
	// SAF is the file name of the Scope Administration File in a scopedir.
	SAF string `yaml:"saf"`
	// Output overrides the SAF's glossarydir as the directory MRGs are
	// written to.
	Output string `yaml:"output,omitempty"`
	// CacheDir holds git checkouts of remote scopes. Empty means
	// ~/.mrgen/repos.
	CacheDir string `yaml:"cacheDir,omitempty"`
	// Concurrency bounds parallel scope resolution and term fetching.
	Concurrency int `yaml:"concurrency"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel,omitempty"`
	// Exclude lists glob patterns of curated files to skip.
	Exclude []string `yaml:"exclude,omitempty"`
}

// Default returns the settings used when no file exists.
func Default() *Settings {
	return &Settings{SAF: DefaultSAF, Concurrency: 4, LogLevel: "info"}
}

// Path returns the settings file location under root.
func Path(root string) string {
	return filepath.Join(root, ".mrgen", "settings.yaml")
}

// Load reads .mrgen/settings.yaml relative to root. Fields the file leaves
// empty keep their default values.
func Load(root string) (*Settings, error) {
	s := Default()
	p := Path(root)
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", p, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return s, nil
}

// Validate checks field values and fills zero values with defaults.
func (s *Settings) Validate() error {
	if s.SAF == "" {
		s.SAF = DefaultSAF
	}
	if s.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", s.Concurrency)
	}
	if s.Concurrency == 0 {
		s.Concurrency = 1
	}
	switch s.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logLevel %q", s.LogLevel)
	}
	for _, rule := range s.Exclude {
		if _, err := path.Match(parseExcludeRule(rule), ""); err != nil {
			return fmt.Errorf("bad exclude pattern %q: %w", rule, err)
		}
	}
	return nil
}

// IsExcluded reports whether relPath (forward-slash, relative to the scope
// directory) matches any exclude rule. Bare-name patterns are also tried
// against the file name alone. Safe to call on a nil *Settings receiver.
func (s *Settings) IsExcluded(relPath string) bool {
	if s == nil {
		return false
	}
	base := path.Base(relPath)
	for _, rule := range s.Exclude {
		pattern := parseExcludeRule(rule)
		if matchPattern(pattern, relPath) {
			return true
		}
		if !strings.Contains(pattern, "/") && matchPattern(pattern, base) {
			return true
		}
	}
	return false
}

// parseExcludeRule strips a leading "./" from a rule.
func parseExcludeRule(rule string) string {
	return strings.TrimPrefix(strings.TrimSpace(rule), "./")
}

// matchPattern reports whether p matches a glob pattern.
//
// "prefix/**" matches the prefix directory itself and every path beneath it.
// All other patterns use path.Match semantics (single * does not cross /).
func matchPattern(pattern, p string) bool {
	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		return p == prefix || strings.HasPrefix(p, prefix+"/")
	}
	matched, _ := path.Match(pattern, p)
	return matched
}
