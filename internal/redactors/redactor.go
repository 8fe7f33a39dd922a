// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redactors

import (
	"time"
)

// Redactor masks a document on disk and writes the result to outputPath
type Redactor interface {
	// GetName returns the name of the redactor
	GetName() string

	// GetSupportedTypes returns the file extensions this redactor can handle
	GetSupportedTypes() []string

	// RedactDocument creates a masked copy of the document at outputPath.
	// Part-level problems are reported in the result's Diagnostics; the
	// error is reserved for failures that leave no output.
	RedactDocument(originalPath string, outputPath string) (*DocumentResult, error)

	// GetComponentName returns the component name for observability
	GetComponentName() string
}

// PartResult is the outcome of rewriting one package part
type PartResult struct {
	// PartName is the part's path inside the package
	PartName string `json:"part_name" yaml:"part_name"`

	// RewrittenText is the part's new XML, equal to the input when Changed is
	// false. Document runs clear it once the package holds the new text.
	RewrittenText string `json:"-" yaml:"-"`

	// Changed is true when at least one character was masked
	Changed bool `json:"changed" yaml:"changed"`

	// MaskedChars counts characters that now hold the mask glyph and did not before
	MaskedChars int `json:"masked_chars" yaml:"masked_chars"`

	// Groups counts the text groups matched in the part
	Groups int `json:"groups" yaml:"groups"`
}

// DocumentResult is the outcome of one document run
type DocumentResult struct {
	OriginalPath string `json:"original_path" yaml:"original_path"`
	OutputPath   string `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	DocumentType string `json:"document_type" yaml:"document_type"`

	Parts       []*PartResult     `json:"parts" yaml:"parts"`
	Diagnostics []*RedactionError `json:"-" yaml:"-"`

	// Changed is true when any part changed
	Changed bool `json:"changed" yaml:"changed"`

	// OriginalHash and OutputHash are hex SHA-256 digests of the package bytes
	OriginalHash string `json:"original_sha256,omitempty" yaml:"original_sha256,omitempty"`
	OutputHash   string `json:"output_sha256,omitempty" yaml:"output_sha256,omitempty"`

	ProcessingTime time.Duration `json:"processing_time_ns" yaml:"processing_time_ns"`
}

// MaskedChars sums the masked characters over all parts
func (dr *DocumentResult) MaskedChars() int {
	total := 0
	for _, p := range dr.Parts {
		total += p.MaskedChars
	}
	return total
}

// ChangedParts returns the names of the parts that changed, in processing order
func (dr *DocumentResult) ChangedParts() []string {
	var names []string
	for _, p := range dr.Parts {
		if p.Changed {
			names = append(names, p.PartName)
		}
	}
	return names
}

// HasDiagnostics reports whether the run recorded any non-fatal problem
func (dr *DocumentResult) HasDiagnostics() bool {
	return len(dr.Diagnostics) > 0
}
