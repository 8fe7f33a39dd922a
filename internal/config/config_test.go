// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ooxml-mask/internal/paths"
	"ooxml-mask/internal/redactors/office"
	"ooxml-mask/internal/rules"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Format != "text" {
		t.Errorf("expected default format=text, got %q", cfg.Defaults.Format)
	}
	if cfg.Masking.Glyph != "■" {
		t.Errorf("expected default glyph ■, got %q", cfg.Masking.Glyph)
	}
	if cfg.Output.Suffix != "_masked" {
		t.Errorf("expected default suffix _masked, got %q", cfg.Output.Suffix)
	}
	if !cfg.Defaults.MemoryScrub {
		t.Error("expected memory_scrub=true by default")
	}
	if cfg.Watch.Debounce != DefaultDebounce {
		t.Errorf("expected default debounce %v, got %v", DefaultDebounce, cfg.Watch.Debounce)
	}
	if cfg.Profiles == nil {
		t.Error("expected profiles map to be initialized")
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "rules.json", `[{"value": "190-0022", "enabled": true}]`)
	configPath := writeConfig(t, dir, "config.yaml", `
defaults:
  format: json
masking:
  mask_glyph: "*"
  rules_file: rules.json
  rules:
    - value: '\d{3}-\d{4}'
      enabled: true
      isRegex: true
presentation:
  grouping: paragraph
  include_notes: true
watch:
  debounce: 2s
profiles:
  hr:
    description: personnel files
    rules:
      - value: salary
        enabled: true
    output_dir: out/hr
`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Format != "json" {
		t.Errorf("expected format=json, got %q", cfg.Defaults.Format)
	}
	if !cfg.Defaults.MemoryScrub {
		t.Error("expected memory_scrub to keep its default when not set")
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("expected debounce 2s, got %v", cfg.Watch.Debounce)
	}
	if cfg.Masking.RulesFile != filepath.Join(dir, "rules.json") {
		t.Errorf("expected rules file next to config, got %q", cfg.Masking.RulesFile)
	}

	loaded, err := cfg.LoadRules()
	if err != nil {
		t.Fatalf("unexpected error loading rules: %v", err)
	}
	want := []rules.Rule{rules.Literal("190-0022"), rules.Regex(`\d{3}-\d{4}`)}
	if len(loaded) != len(want) {
		t.Fatalf("expected %d rules, got %d", len(want), len(loaded))
	}
	for i := range want {
		if loaded[i] != want[i] {
			t.Errorf("rule %d: expected %+v, got %+v", i, want[i], loaded[i])
		}
	}

	opts, err := cfg.OfficeOptions()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Presentation.Grouping != office.GroupParagraph || !opts.Presentation.IncludeNotes {
		t.Errorf("unexpected presentation options %+v", opts.Presentation)
	}

	if got := cfg.ListProfiles(); len(got) != 1 || got[0] != "hr" {
		t.Errorf("expected profiles [hr], got %v", got)
	}
}

func TestLoadConfig_MemoryScrubCanBeDisabled(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "config.yaml", "defaults:\n  memory_scrub: false\n")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.MemoryScrub {
		t.Error("expected memory_scrub=false when set explicitly")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"format":   "defaults:\n  format: sarif\n",
		"glyph":    "masking:\n  mask_glyph: \"##\"\n",
		"grouping": "presentation:\n  grouping: slide\n",
		"limits":   "limits:\n  max_parts: -1\n",
		"profile":  "profiles:\n  p:\n    grouping: column\n",
		"yaml":     "defaults: [unclosed",
		"type":     "masking:\n  rules: 5\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			configPath := writeConfig(t, t.TempDir(), "config.yaml", content)
			if _, err := LoadConfig(configPath); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestApplyProfile(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "config.yaml", `
masking:
  rules:
    - value: default
      enabled: true
profiles:
  hr:
    rules:
      - value: salary
        enabled: true
    grouping: paragraph
`)
	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := cfg.ApplyProfile("hr"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := cfg.LoadRules()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != 1 || loaded[0] != rules.Literal("salary") {
		t.Errorf("expected profile rules to replace defaults, got %+v", loaded)
	}
	if cfg.Presentation.Grouping != "paragraph" {
		t.Errorf("expected grouping=paragraph, got %q", cfg.Presentation.Grouping)
	}

	if err := cfg.ApplyProfile("missing"); err == nil {
		t.Error("expected an error for an unknown profile")
	}
}

func TestLoadRules_SavedTable(t *testing.T) {
	configDir := t.TempDir()
	t.Setenv(paths.ConfigDirEnv, configDir)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded, err := cfg.LoadRules(); err != nil || len(loaded) != 0 {
		t.Fatalf("expected no rules without a saved table, got %+v, %v", loaded, err)
	}

	if err := rules.SaveFile(paths.GetRulesFile(), []rules.Rule{rules.Literal("042-595-7557")}); err != nil {
		t.Fatalf("failed to save rules: %v", err)
	}
	loaded, err := cfg.LoadRules()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != 1 || loaded[0] != rules.Literal("042-595-7557") {
		t.Errorf("expected the saved table, got %+v", loaded)
	}

	cfg.Masking.Rules = []rules.Record{{Value: "salary", Enabled: true}}
	loaded, err = cfg.LoadRules()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != 1 || loaded[0] != rules.Literal("salary") {
		t.Errorf("expected configured rules to replace the saved table, got %+v", loaded)
	}
}

func TestFindConfigFile(t *testing.T) {
	configDir := t.TempDir()
	t.Setenv(paths.ConfigDirEnv, configDir)
	chdir(t, t.TempDir())

	if got := FindConfigFile(); got != "" {
		t.Errorf("expected no config file, got %q", got)
	}

	standard := writeConfig(t, configDir, "config.yaml", "defaults:\n  format: yaml\n")
	if got := FindConfigFile(); got != standard {
		t.Errorf("expected %q, got %q", standard, got)
	}

	writeConfig(t, ".", ".ooxml-mask.yaml", "defaults:\n  format: json\n")
	if got := FindConfigFile(); got != ".ooxml-mask.yaml" {
		t.Errorf("expected project config to win, got %q", got)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
