// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// FormatInfo contains standardized help about one document format
type FormatInfo struct {
	Name                string   // Name of the format (e.g., "word")
	Extensions          []string // File extensions handled
	ShortDescription    string   // Short description for the formats list
	DetailedDescription string   // What is read and how matches are grouped
	Parts               []string // Package parts rewritten, in processing order
	Grouping            []string // How text is split into groups
	ConfigurationInfo   string   // Configuration keys that affect the format
	Examples            []string // Usage examples
}

// Provider defines the interface for help content providers
type Provider interface {
	GetFormatInfo() FormatInfo
}

// System manages help content for the application
type System struct {
	providers map[string]Provider
	out       io.Writer
	colors    map[string]*color.Color
}

// NewSystem creates a new help system writing to out
func NewSystem(out io.Writer, noColor bool) *System {
	if noColor {
		color.NoColor = true
	}

	return &System{
		providers: make(map[string]Provider),
		out:       out,
		colors: map[string]*color.Color{
			"title":    color.New(color.FgWhite, color.Bold),
			"header":   color.New(color.FgBlue, color.Bold),
			"item":     color.New(color.FgCyan),
			"emphasis": color.New(color.FgWhite, color.Bold),
			"negative": color.New(color.FgRed),
			"example":  color.New(color.FgMagenta),
		},
	}
}

// RegisterProvider adds a help provider to the system
func (h *System) RegisterProvider(provider Provider) {
	info := provider.GetFormatInfo()
	h.providers[strings.ToLower(info.Name)] = provider
}

func (h *System) names() []string {
	names := make([]string, 0, len(h.providers))
	for name := range h.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ShowGeneralHelp displays general help information
func (h *System) ShowGeneralHelp() {
	h.colors["title"].Fprintln(h.out, "ooxml-mask - Office document text masking")
	fmt.Fprintln(h.out, "=========================================")
	fmt.Fprintln(h.out)
	h.colors["header"].Fprintln(h.out, "USAGE:")
	fmt.Fprintln(h.out, "  ooxml-mask -file <document> [-rules <file>] [-mask <text>]... [options]")
	fmt.Fprintln(h.out, "  ooxml-mask -watch <dir> [-rules <file>] [options]")
	fmt.Fprintln(h.out)

	h.colors["header"].Fprintln(h.out, "OPTIONS:")
	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  -file\t<path>\tDocument to mask (.docx, .pptx, .xlsx); repeat for several")
	fmt.Fprintln(w, "  -rules\t<path>\tRule table (JSON or YAML array of {value, enabled, isRegex})")
	fmt.Fprintln(w, "  -mask\t<text>\tLiteral to mask; may be repeated")
	fmt.Fprintln(w, "  -mask-regex\t<re>\tRegular expression to mask; may be repeated")
	fmt.Fprintln(w, "  -prioritize\t\tApply longer literals before shorter ones")
	fmt.Fprintln(w, "  -glyph\t<char>\tMask character (default: ■)")
	fmt.Fprintln(w, "  -config\t<path>\tPath to configuration file (YAML)")
	fmt.Fprintln(w, "  -profile\t<name>\tProfile name to use from config file")
	fmt.Fprintln(w, "  -list-profiles\t\tList available profiles in config file")
	fmt.Fprintln(w, "  -output-dir\t<path>\tWrite masked copies here instead of next to the input")
	fmt.Fprintln(w, "  -suffix\t<s>\tSuffix added before the extension (default: _masked)")
	fmt.Fprintln(w, "  -grouping\t<mode>\tPresentation grouping: textbox or paragraph (default: textbox)")
	fmt.Fprintln(w, "  -format\t<format>\tReport format: text, json, yaml (default: text)")
	fmt.Fprintln(w, "  -audit-log\t<path>\tWrite a JSON audit log of the run")
	fmt.Fprintln(w, "  -save-rules\t<path>\tWrite the effective rule table as JSON and continue")
	fmt.Fprintln(w, "  -init-rules\t\tWrite a starter rule table to the config directory and exit")
	fmt.Fprintln(w, "  -watch\t<dir>\tMask office files as they appear in a directory")
	fmt.Fprintln(w, "  -verbose\t\tList every part in the report")
	fmt.Fprintln(w, "  -debug\t\tTrace each part as it is rewritten")
	fmt.Fprintln(w, "  -quiet\t\tPrint nothing unless something failed")
	fmt.Fprintln(w, "  -no-color\t\tDisable colored output")
	fmt.Fprintln(w, "  -version\t\tShow version information")
	fmt.Fprintln(w, "  -help\t\tShow this help message")
	fmt.Fprintln(w, "  -help formats\t\tList the supported document formats")
	fmt.Fprintln(w, "  -help <format>\t\tShow how a format is read and grouped")
	w.Flush()

	fmt.Fprintln(h.out)
	h.colors["header"].Fprintln(h.out, "EXIT CODES:")
	fmt.Fprintln(h.out, "  0  every document was processed without diagnostics")
	fmt.Fprintln(h.out, "  1  a fatal error stopped the run (unreadable package, bad configuration)")
	fmt.Fprintln(h.out, "  2  the run finished but reported diagnostics")
	fmt.Fprintln(h.out)

	h.colors["header"].Fprintln(h.out, "EXAMPLES:")
	h.colors["example"].Fprintln(h.out, "  ooxml-mask -file contract.docx -mask 042-595-7557")
	h.colors["example"].Fprintln(h.out, `  ooxml-mask -file deck.pptx -mask-regex '\d{3}-\d{3}-\d{4}' -grouping paragraph`)
	h.colors["example"].Fprintln(h.out, "  ooxml-mask -file book.xlsx -rules rules.json -output-dir masked -format json")
	h.colors["example"].Fprintln(h.out, "  ooxml-mask -watch ./inbox -rules rules.yaml")
}

// ShowFormatsHelp lists the registered formats
func (h *System) ShowFormatsHelp() {
	h.colors["title"].Fprintln(h.out, "Supported Document Formats")
	fmt.Fprintln(h.out, "==========================")
	fmt.Fprintln(h.out)

	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	h.colors["header"].Fprintln(w, "  FORMAT\tFILES\tDESCRIPTION")
	h.colors["header"].Fprintln(w, "  ------\t-----\t-----------")
	for _, name := range h.names() {
		info := h.providers[name].GetFormatInfo()
		fmt.Fprintf(w, "  ")
		h.colors["emphasis"].Fprintf(w, "%s", info.Name)
		fmt.Fprintf(w, "\t%s\t%s\n", strings.Join(info.Extensions, ", "), info.ShortDescription)
	}
	w.Flush()

	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, "For details about a format, use:")
	h.colors["example"].Fprintln(h.out, "  ooxml-mask -help <format>")
}

// ShowFormatHelp displays detailed help for one format. It reports false
// when the format is unknown.
func (h *System) ShowFormatHelp(name string) bool {
	provider, exists := h.providers[strings.ToLower(name)]
	if !exists {
		h.colors["negative"].Fprintf(h.out, "Error: Format '%s' not found.\n", name)
		fmt.Fprintln(h.out, "Use 'ooxml-mask -help formats' to see the supported formats.")
		return false
	}

	info := provider.GetFormatInfo()
	title := strings.ToUpper(info.Name[:1]) + info.Name[1:] + " Format"
	h.colors["title"].Fprintln(h.out, title)
	fmt.Fprintln(h.out, strings.Repeat("=", len(title)))
	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, info.DetailedDescription)
	fmt.Fprintln(h.out)

	h.section("PARTS REWRITTEN:", info.Parts)
	h.section("GROUPING:", info.Grouping)

	if info.ConfigurationInfo != "" {
		h.colors["header"].Fprintln(h.out, "CONFIGURATION:")
		fmt.Fprintln(h.out, info.ConfigurationInfo)
		fmt.Fprintln(h.out)
	}

	if len(info.Examples) > 0 {
		h.colors["header"].Fprintln(h.out, "EXAMPLES:")
		for _, example := range info.Examples {
			fmt.Fprint(h.out, "  ")
			h.colors["example"].Fprintln(h.out, example)
		}
	}
	return true
}

func (h *System) section(header string, items []string) {
	if len(items) == 0 {
		return
	}
	h.colors["header"].Fprintln(h.out, header)
	for _, item := range items {
		fmt.Fprint(h.out, "  - ")
		h.colors["item"].Fprintln(h.out, item)
	}
	fmt.Fprintln(h.out)
}
