// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"ooxml-mask/internal/formatters"
	"ooxml-mask/internal/formatters/shared"
	"ooxml-mask/internal/redactors"

	"github.com/fatih/color"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable run report with colors and columns"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(report *formatters.Report, options formatters.FormatterOptions) (string, error) {
	if options.NoColor {
		color.NoColor = true
	}

	var builder strings.Builder

	if len(report.Documents) == 0 && len(report.Failures) == 0 {
		builder.WriteString("No documents processed.\n")
	} else {
		f.appendHeaders(&builder, options)
		for _, doc := range report.Documents {
			f.appendDocument(&builder, doc, options)
		}
		for _, failure := range report.Failures {
			f.appendFailure(&builder, failure, options)
		}
	}

	if len(report.RuleDiagnostics) > 0 {
		builder.WriteString(f.paint("white", options, "Rules:") + "\n")
		for _, diag := range report.RuleDiagnostics {
			f.appendDiagnostic(&builder, diag, options)
		}
	}

	f.appendSummary(&builder, report, options)
	return builder.String(), nil
}

// paint colours a formatted string unless colours are off
func (f *Formatter) paint(name string, options formatters.FormatterOptions, format string, args ...interface{}) string {
	if options.NoColor {
		return fmt.Sprintf(format, args...)
	}
	return f.colors[name].Sprintf(format, args...)
}

func (f *Formatter) appendHeaders(builder *strings.Builder, options formatters.FormatterOptions) {
	header := fmt.Sprintf("%-8s %-5s %7s %6s  %s", "STATUS", "TYPE", "MASKED", "PARTS", "FILE")
	builder.WriteString(f.paint("white", options, "%s", header) + "\n")
	builder.WriteString(f.paint("white", options, "%s", strings.Repeat("-", len(header)+20)) + "\n")
}

func documentStatus(doc *redactors.DocumentResult) (label, colour string) {
	switch {
	case doc.HasDiagnostics():
		return "ISSUES", "yellow"
	case doc.Changed:
		return "MASKED", "green"
	default:
		return "CLEAN", "cyan"
	}
}

func (f *Formatter) appendDocument(builder *strings.Builder, doc *redactors.DocumentResult, options formatters.FormatterOptions) {
	label, colour := documentStatus(doc)

	target := doc.OriginalPath
	if doc.OutputPath != "" {
		target += " -> " + filepath.Base(doc.OutputPath)
	}

	fmt.Fprintf(builder, "%s %-5s %7d %6d  %s\n",
		f.paint(colour, options, "[%-6s]", label),
		doc.DocumentType,
		doc.MaskedChars(),
		len(doc.Parts),
		target)

	if options.Verbose {
		for _, part := range doc.Parts {
			marker := " "
			if part.Changed {
				marker = "*"
			}
			fmt.Fprintf(builder, "    %s %-40s groups=%d masked=%d\n", marker, part.PartName, part.Groups, part.MaskedChars)
		}
	}
	for _, diag := range doc.Diagnostics {
		f.appendDiagnostic(builder, diag, options)
	}
}

func (f *Formatter) appendFailure(builder *strings.Builder, failure formatters.Failure, options formatters.FormatterOptions) {
	diag := shared.ConvertDiagnostic(failure.Err, options)
	fmt.Fprintf(builder, "%s %-5s %7s %6s  %s\n",
		f.paint("red", options, "[%-6s]", "FAILED"), "-", "-", "-", failure.Path)
	f.appendLine(builder, "red", diag, options)
}

func (f *Formatter) appendDiagnostic(builder *strings.Builder, err error, options formatters.FormatterOptions) {
	f.appendLine(builder, "yellow", shared.ConvertDiagnostic(err, options), options)
}

func (f *Formatter) appendLine(builder *strings.Builder, colour string, diag shared.JSONDiagnostic, options formatters.FormatterOptions) {
	where := ""
	if diag.PartName != "" {
		where = f.paint("magenta", options, "%s", diag.PartName) + ": "
	}
	fmt.Fprintf(builder, "    %s %s%s", f.paint(colour, options, "! %-18s", diag.Type), where, diag.Message)
	if diag.Cause != "" {
		fmt.Fprintf(builder, " (%s)", diag.Cause)
	}
	builder.WriteString("\n")
}

func (f *Formatter) appendSummary(builder *strings.Builder, report *formatters.Report, options formatters.FormatterOptions) {
	s := report.Stats
	line := fmt.Sprintf("%d documents, %d changed, %d with diagnostics, %d failed, %d characters masked in %s",
		s.TotalFiles+s.FailedFiles, s.ChangedFiles, s.FilesWithIssues, s.FailedFiles, s.MaskedChars,
		s.ProcessingTime.Round(time.Millisecond))

	colour := "green"
	if report.HasDiagnostics() {
		colour = "yellow"
	}
	if s.FailedFiles > 0 {
		colour = "red"
	}
	builder.WriteString("\n" + f.paint(colour, options, "%s", line) + "\n")
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
