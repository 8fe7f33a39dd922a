// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Record is the persisted form of a rule: one row of the rule table
type Record struct {
	Value   string `json:"value" yaml:"value"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
	IsRegex bool   `json:"isRegex" yaml:"isRegex"`
}

const recordsSchemaURL = "rules.schema.json"

const recordsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "mask rule table",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["value"],
    "additionalProperties": false,
    "properties": {
      "value":   {"type": "string"},
      "enabled": {"type": "boolean"},
      "isRegex": {"type": "boolean"}
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func recordSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(recordsSchemaURL, strings.NewReader(recordsSchema)); err != nil {
			schemaErr = fmt.Errorf("add rule schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(recordsSchemaURL)
	})
	return compiledSchema, schemaErr
}

// ValidateRecords checks a decoded rule table against the record schema
func ValidateRecords(instance interface{}) error {
	schema, err := recordSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("rule table does not match schema: %w", err)
	}
	return nil
}

// ParseRecordsJSON decodes and validates a JSON rule table
func ParseRecordsJSON(data []byte) ([]Record, error) {
	var instance interface{}
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, fmt.Errorf("error parsing rule table: %w", err)
	}
	if err := ValidateRecords(instance); err != nil {
		return nil, err
	}

	var records []Record
	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("error decoding rule table: %w", err)
	}
	return records, nil
}

// ParseRecordsYAML decodes and validates a YAML rule table using the same keys as JSON
func ParseRecordsYAML(data []byte) ([]Record, error) {
	var instance interface{}
	if err := yaml.Unmarshal(data, &instance); err != nil {
		return nil, fmt.Errorf("error parsing rule table: %w", err)
	}
	if instance == nil {
		return nil, nil
	}
	if err := ValidateRecords(instance); err != nil {
		return nil, err
	}

	var records []Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("error decoding rule table: %w", err)
	}
	return records, nil
}

// FromRecords converts persisted rows to rules, trimming surrounding
// whitespace from values. Disabled rows are kept; masking treats them as absent.
func FromRecords(records []Record) []Rule {
	out := make([]Rule, 0, len(records))
	for _, rec := range records {
		mode := ModeLiteral
		if rec.IsRegex {
			mode = ModeRegex
		}
		out = append(out, Rule{
			Pattern: strings.TrimSpace(rec.Value),
			Mode:    mode,
			Enabled: rec.Enabled,
		})
	}
	return out
}

// ToRecords converts rules to their persisted rows
func ToRecords(rules []Rule) []Record {
	out := make([]Record, 0, len(rules))
	for _, r := range rules {
		out = append(out, Record{Value: r.Pattern, Enabled: r.Enabled, IsRegex: r.Mode == ModeRegex})
	}
	return out
}

// LoadFile reads a rule table from disk. Files ending in .yaml or .yml are
// read as YAML, anything else as JSON.
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("error reading rule file: %w", err)
	}

	var records []Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		records, err = ParseRecordsYAML(data)
	default:
		records, err = ParseRecordsJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return FromRecords(records), nil
}

// SaveFile writes rules as an indented JSON rule table
func SaveFile(path string, rules []Rule) error {
	data, err := json.MarshalIndent(ToRecords(rules), "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding rule table: %w", err)
	}
	if err := os.WriteFile(filepath.Clean(path), append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("error writing rule file: %w", err)
	}
	return nil
}

// Starter is the table written for a first run: common shapes of contact
// data, all disabled until edited
func Starter() []Rule {
	starter := []Rule{
		Literal("Example Corporation"),
		Regex(`\d{2,4}-\d{2,4}-\d{4}`),
		Regex(`\d{3}-\d{4}`),
		Regex(`[\w.+-]+@example\.com`),
	}
	for i := range starter {
		starter[i].Enabled = false
	}
	return starter
}

// InitFile writes the starter table to path, creating its directory. An
// existing table is left alone.
func InitFile(path string) error {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("rule file %s already exists", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error checking rule file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("error creating rule directory: %w", err)
	}
	return SaveFile(path, Starter())
}
