// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"errors"

	"ooxml-mask/internal/formatters"
	"ooxml-mask/internal/redactors"
)

// JSONResponse represents the top-level response structure for JSON/YAML output
type JSONResponse struct {
	RunID           string           `json:"run_id" yaml:"run_id"`
	ToolVersion     string           `json:"tool_version" yaml:"tool_version"`
	Documents       []JSONDocument   `json:"documents" yaml:"documents"`
	Failures        []JSONDiagnostic `json:"failures,omitempty" yaml:"failures,omitempty"`
	RuleDiagnostics []JSONDiagnostic `json:"rule_diagnostics,omitempty" yaml:"rule_diagnostics,omitempty"`
	Summary         JSONSummary      `json:"summary" yaml:"summary"`
}

// JSONDocument represents one processed document in JSON/YAML format
type JSONDocument struct {
	OriginalPath     string                  `json:"original_path" yaml:"original_path"`
	OutputPath       string                  `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	DocumentType     string                  `json:"document_type" yaml:"document_type"`
	Changed          bool                    `json:"changed" yaml:"changed"`
	MaskedChars      int                     `json:"masked_chars" yaml:"masked_chars"`
	OriginalHash     string                  `json:"original_sha256" yaml:"original_sha256"`
	OutputHash       string                  `json:"output_sha256" yaml:"output_sha256"`
	ProcessingTimeMs int64                   `json:"processing_time_ms" yaml:"processing_time_ms"`
	Parts            []*redactors.PartResult `json:"parts,omitempty" yaml:"parts,omitempty"`
	Diagnostics      []JSONDiagnostic        `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// JSONDiagnostic represents a RedactionError without document text
type JSONDiagnostic struct {
	Type     string `json:"type" yaml:"type"`
	Message  string `json:"message" yaml:"message"`
	FilePath string `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	PartName string `json:"part_name,omitempty" yaml:"part_name,omitempty"`
	Cause    string `json:"cause,omitempty" yaml:"cause,omitempty"`
}

// JSONSummary carries the run counters
type JSONSummary struct {
	TotalFiles       int64 `json:"total_files" yaml:"total_files"`
	ChangedFiles     int64 `json:"changed_files" yaml:"changed_files"`
	FailedFiles      int64 `json:"failed_files" yaml:"failed_files"`
	FilesWithIssues  int64 `json:"files_with_diagnostics" yaml:"files_with_diagnostics"`
	MaskedChars      int64 `json:"masked_chars" yaml:"masked_chars"`
	ProcessingTimeMs int64 `json:"processing_time_ms" yaml:"processing_time_ms"`
}

// ConvertDiagnostic converts one error. The cause is only kept in verbose
// mode since a regular expression error quotes the rule's pattern.
func ConvertDiagnostic(err error, options formatters.FormatterOptions) JSONDiagnostic {
	var re *redactors.RedactionError
	if !errors.As(err, &re) {
		return JSONDiagnostic{Type: "error", Message: err.Error()}
	}

	d := JSONDiagnostic{
		Type:     re.Type.String(),
		Message:  re.Message,
		FilePath: re.FilePath,
		PartName: re.PartName,
	}
	if options.Verbose && re.Cause != nil {
		d.Cause = re.Cause.Error()
	}
	return d
}

// ConvertReportToJSONFormat converts a run report to the JSON/YAML structure
func ConvertReportToJSONFormat(report *formatters.Report, options formatters.FormatterOptions) JSONResponse {
	response := JSONResponse{
		RunID:       report.RunID,
		ToolVersion: report.ToolVersion,
		Documents:   make([]JSONDocument, 0, len(report.Documents)),
		Summary: JSONSummary{
			TotalFiles:       report.Stats.TotalFiles,
			ChangedFiles:     report.Stats.ChangedFiles,
			FailedFiles:      report.Stats.FailedFiles,
			FilesWithIssues:  report.Stats.FilesWithIssues,
			MaskedChars:      report.Stats.MaskedChars,
			ProcessingTimeMs: report.Stats.ProcessingTime.Milliseconds(),
		},
	}

	for _, doc := range report.Documents {
		jd := JSONDocument{
			OriginalPath:     doc.OriginalPath,
			OutputPath:       doc.OutputPath,
			DocumentType:     doc.DocumentType,
			Changed:          doc.Changed,
			MaskedChars:      doc.MaskedChars(),
			OriginalHash:     doc.OriginalHash,
			OutputHash:       doc.OutputHash,
			ProcessingTimeMs: doc.ProcessingTime.Milliseconds(),
		}
		if options.Verbose {
			jd.Parts = doc.Parts
		}
		for _, diag := range doc.Diagnostics {
			jd.Diagnostics = append(jd.Diagnostics, ConvertDiagnostic(diag, options))
		}
		response.Documents = append(response.Documents, jd)
	}

	for _, failure := range report.Failures {
		d := ConvertDiagnostic(failure.Err, options)
		if d.FilePath == "" {
			d.FilePath = failure.Path
		}
		response.Failures = append(response.Failures, d)
	}
	for _, diag := range report.RuleDiagnostics {
		response.RuleDiagnostics = append(response.RuleDiagnostics, ConvertDiagnostic(diag, options))
	}
	return response
}
