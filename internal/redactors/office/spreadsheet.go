// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package office

import (
	"regexp"

	"ooxml-mask/internal/ooxml"
	"ooxml-mask/internal/redactors"
	"ooxml-mask/internal/runs"
)

// SharedStringsPart is the workbook's shared string table
const SharedStringsPart = "xl/sharedStrings.xml"

var (
	worksheetPart = regexp.MustCompile(`^xl/worksheets/sheet(\d+)\.xml$`)
	isStringItem  = element(ooxml.SpreadsheetML, "si", "is")
	isPhonetic    = element(ooxml.SpreadsheetML, "rPh")

	// every run of one string item forms one group; phonetic runs are their own
	stringPolicy = runs.Policy{
		Leaf: element(ooxml.SpreadsheetML, "t"),
		Skip: isPhonetic,
	}
	phoneticPolicy = runs.Policy{
		Leaf: element(ooxml.SpreadsheetML, "t"),
	}
)

// SpreadsheetAdapter rewrites shared strings and inline cell strings
type SpreadsheetAdapter struct{}

// NewSpreadsheetAdapter creates a Spreadsheet adapter
func NewSpreadsheetAdapter() *SpreadsheetAdapter {
	return &SpreadsheetAdapter{}
}

// Name returns the adapter's name
func (a *SpreadsheetAdapter) Name() string {
	return "spreadsheet"
}

// Parts returns the shared string table, then worksheets by ascending number.
// Each missing branch is reported on its own.
func (a *SpreadsheetAdapter) Parts(pkg PartLister) ([]string, []*redactors.RedactionError) {
	var parts []string
	var diags []*redactors.RedactionError

	if pkg.Has(SharedStringsPart) {
		parts = append(parts, SharedStringsPart)
	} else {
		diags = append(diags, missingPart(SharedStringsPart))
	}

	sheets := numberedParts(pkg.Names(), worksheetPart)
	if len(sheets) == 0 {
		diags = append(diags, missingPart("xl/worksheets/sheet{N}.xml"))
	}
	return append(parts, sheets...), diags
}

// Groups returns one group per string item followed by one per phonetic run inside it
func (a *SpreadsheetAdapter) Groups(tree *ooxml.Tree) []GroupSpec {
	var specs []GroupSpec
	for _, item := range tree.Find(tree.Root, isStringItem) {
		specs = append(specs, GroupSpec{Root: item, Policy: stringPolicy})
		for _, ph := range tree.Find(item, isPhonetic) {
			specs = append(specs, GroupSpec{Root: ph, Policy: phoneticPolicy})
		}
	}
	return specs
}
