// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"bytes"
	"encoding/json"
	"fmt"

	"ooxml-mask/internal/formatters"
	"ooxml-mask/internal/formatters/shared"
)

// Formatter renders the run report as indented JSON
type Formatter struct{}

// NewFormatter creates a new JSON formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "json"
}

func (f *Formatter) Description() string {
	return "Structured JSON run report for programmatic consumption"
}

func (f *Formatter) FileExtension() string {
	return ".json"
}

// Format encodes the report. HTML escaping is off so paths containing & or <
// are printed as they are.
func (f *Formatter) Format(report *formatters.Report, options formatters.FormatterOptions) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(shared.ConvertReportToJSONFormat(report, options)); err != nil {
		return "", fmt.Errorf("error formatting JSON: %w", err)
	}
	return buf.String(), nil
}

func init() {
	formatters.Register(NewFormatter())
}
