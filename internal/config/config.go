// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"ooxml-mask/internal/container"
	"ooxml-mask/internal/masking"
	"ooxml-mask/internal/paths"
	"ooxml-mask/internal/redactors/office"
	"ooxml-mask/internal/rules"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format      string `yaml:"format"`
		Debug       bool   `yaml:"debug"`
		Quiet       bool   `yaml:"quiet"`
		NoColor     bool   `yaml:"no_color"`
		MemoryScrub bool   `yaml:"memory_scrub"`
	} `yaml:"defaults"`

	// Masking settings
	Masking MaskingConfig `yaml:"masking"`

	// Output naming and audit trail
	Output struct {
		Dir      string `yaml:"output_dir"`
		Suffix   string `yaml:"suffix"`
		AuditLog string `yaml:"audit_log"`
	} `yaml:"output"`

	Word struct {
		IncludeHeadersFooters bool `yaml:"include_headers_footers"`
	} `yaml:"word"`

	Presentation struct {
		Grouping     string `yaml:"grouping"`
		IncludeNotes bool   `yaml:"include_notes"`
	} `yaml:"presentation"`

	// Package size guards
	Limits struct {
		MaxPartSize int64 `yaml:"max_part_size"`
		MaxParts    int   `yaml:"max_parts"`
	} `yaml:"limits"`

	Watch struct {
		Debounce time.Duration `yaml:"debounce"`
	} `yaml:"watch"`

	// Profiles for different document sets
	Profiles map[string]Profile `yaml:"profiles"`
}

// MaskingConfig holds the glyph and the rule sources
type MaskingConfig struct {
	Glyph      string         `yaml:"mask_glyph"`
	RulesFile  string         `yaml:"rules_file"`
	Rules      []rules.Record `yaml:"rules"`
	Prioritize bool           `yaml:"prioritize"`
}

// Profile is a named rule set with its own overrides
type Profile struct {
	Description string         `yaml:"description"`
	RulesFile   string         `yaml:"rules_file"`
	Rules       []rules.Record `yaml:"rules"`
	Grouping    string         `yaml:"grouping"`
	OutputDir   string         `yaml:"output_dir"`
}

// DefaultDebounce is how long a watched file must stay quiet before it is processed
const DefaultDebounce = 750 * time.Millisecond

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: make(map[string]Profile),
	}

	config.Defaults.Format = "text"
	config.Defaults.MemoryScrub = true
	config.Masking.Glyph = string(masking.DefaultGlyph)
	config.Output.Suffix = "_masked"
	config.Presentation.Grouping = office.GroupTextBox.String()
	config.Watch.Debounce = DefaultDebounce

	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	defaultMemoryScrub := config.Defaults.MemoryScrub

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// keep bool defaults the file does not mention
	if !containsField(data, "defaults", "memory_scrub") {
		config.Defaults.MemoryScrub = defaultMemoryScrub
	}

	// relative rule files are read next to the config file
	baseDir := filepath.Dir(cleanPath)
	config.Masking.RulesFile = resolveRelative(baseDir, config.Masking.RulesFile)
	for name, profile := range config.Profiles {
		profile.RulesFile = resolveRelative(baseDir, profile.RulesFile)
		config.Profiles[name] = profile
	}

	normalizePaths(config)

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FindConfigFile looks for a configuration file in the working directory,
// then in the user configuration directory
func FindConfigFile() string {
	for _, name := range []string{"ooxml-mask.yaml", "ooxml-mask.yml", ".ooxml-mask.yaml", ".ooxml-mask.yml"} {
		if fileExists(name) {
			return name
		}
	}

	if standardConfig := paths.GetConfigFile(); fileExists(standardConfig) {
		return standardConfig
	}

	yml := filepath.Join(paths.GetConfigDir(), "config.yml")
	if fileExists(yml) {
		return yml
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the available profile names in sorted order
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// ApplyProfile overlays the named profile onto the configuration. Profile
// rules replace the configured rules; empty profile fields leave the
// configuration as it is.
func (c *Config) ApplyProfile(name string) error {
	profile := c.GetProfile(name)
	if profile == nil {
		return fmt.Errorf("unknown profile %q", name)
	}

	if profile.RulesFile != "" || len(profile.Rules) > 0 {
		c.Masking.RulesFile = profile.RulesFile
		c.Masking.Rules = profile.Rules
	}
	if profile.Grouping != "" {
		c.Presentation.Grouping = profile.Grouping
	}
	if profile.OutputDir != "" {
		c.Output.Dir = profile.OutputDir
	}
	return ValidateConfig(c)
}

// LoadRules returns the configured rules: the rule file's rows followed by
// the inline rows. With neither configured it reads the saved table at
// paths.GetRulesFile, if there is one.
func (c *Config) LoadRules() ([]rules.Rule, error) {
	if c.Masking.RulesFile == "" && len(c.Masking.Rules) == 0 {
		if saved := paths.GetRulesFile(); fileExists(saved) {
			return rules.LoadFile(saved)
		}
		return nil, nil
	}

	var out []rules.Rule
	if c.Masking.RulesFile != "" {
		fileRules, err := rules.LoadFile(c.Masking.RulesFile)
		if err != nil {
			return nil, err
		}
		out = append(out, fileRules...)
	}
	return append(out, rules.FromRecords(c.Masking.Rules)...), nil
}

// OfficeOptions converts the document settings to redactor options
func (c *Config) OfficeOptions() (office.Options, error) {
	grouping, err := office.ParseGrouping(c.Presentation.Grouping)
	if err != nil {
		return office.Options{}, err
	}
	return office.Options{
		Word: office.WordOptions{IncludeHeadersFooters: c.Word.IncludeHeadersFooters},
		Presentation: office.PresentationOptions{
			Grouping:     grouping,
			IncludeNotes: c.Presentation.IncludeNotes,
		},
		Limits: container.Limits{
			MaxPartSize: c.Limits.MaxPartSize,
			MaxParts:    c.Limits.MaxParts,
		},
		MemoryScrub: c.Defaults.MemoryScrub,
	}, nil
}

// containsField checks if a nested field exists in the YAML data
func containsField(data []byte, path ...string) bool {
	var yamlData map[string]interface{}
	err := yaml.Unmarshal(data, &yamlData)
	if err != nil {
		return false
	}

	current := yamlData
	for i, key := range path {
		if i == len(path)-1 {
			_, exists := current[key]
			return exists
		}
		if next, ok := current[key].(map[string]interface{}); ok {
			current = next
		} else {
			return false
		}
	}
	return false
}

func resolveRelative(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) || path[0] == '~' {
		return path
	}
	return filepath.Join(baseDir, path)
}

func normalizePaths(config *Config) {
	config.Output.Dir = paths.NormalizePath(config.Output.Dir)
	config.Output.AuditLog = paths.NormalizePath(config.Output.AuditLog)
	config.Masking.RulesFile = paths.NormalizePath(config.Masking.RulesFile)
	for name, profile := range config.Profiles {
		profile.RulesFile = paths.NormalizePath(profile.RulesFile)
		profile.OutputDir = paths.NormalizePath(profile.OutputDir)
		config.Profiles[name] = profile
	}
}

// ValidateConfig checks values the loader cannot check by type alone
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	switch config.Defaults.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unsupported format %q (want text, json or yaml)", config.Defaults.Format)
	}

	if _, err := masking.ParseGlyph(config.Masking.Glyph); err != nil {
		return err
	}
	if _, err := office.ParseGrouping(config.Presentation.Grouping); err != nil {
		return err
	}
	if config.Limits.MaxPartSize < 0 || config.Limits.MaxParts < 0 {
		return fmt.Errorf("limits must not be negative")
	}
	if config.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must not be negative")
	}

	if err := validateConfigPaths(config); err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}

	for name, profile := range config.Profiles {
		if profile.Grouping == "" {
			continue
		}
		if _, err := office.ParseGrouping(profile.Grouping); err != nil {
			return fmt.Errorf("profile '%s': %w", name, err)
		}
	}
	return nil
}

// validateConfigPaths validates all paths in the configuration
func validateConfigPaths(config *Config) error {
	checks := map[string]string{
		"output directory": config.Output.Dir,
		"audit log":        config.Output.AuditLog,
		"rules file":       config.Masking.RulesFile,
	}
	for what, path := range checks {
		if err := paths.ValidatePath(path); err != nil {
			return fmt.Errorf("invalid %s: %w", what, err)
		}
	}

	for profileName, profile := range config.Profiles {
		if err := paths.ValidatePath(profile.RulesFile); err != nil {
			return fmt.Errorf("invalid rules file in profile '%s': %w", profileName, err)
		}
		if err := paths.ValidatePath(profile.OutputDir); err != nil {
			return fmt.Errorf("invalid output directory in profile '%s': %w", profileName, err)
		}
	}
	return nil
}
