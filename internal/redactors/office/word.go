// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package office

import (
	"regexp"

	"ooxml-mask/internal/ooxml"
	"ooxml-mask/internal/redactors"
	"ooxml-mask/internal/runs"
)

// WordDocumentPart is the main body of a Word document
const WordDocumentPart = "word/document.xml"

var (
	wordHeaderPart = regexp.MustCompile(`^word/header(\d+)\.xml$`)
	wordFooterPart = regexp.MustCompile(`^word/footer(\d+)\.xml$`)

	wordNoteParts = []string{"word/footnotes.xml", "word/endnotes.xml"}
)

// wordPolicy treats a whole part as one string. Matches may cross
// paragraphs and table cells.
var wordPolicy = runs.Policy{
	Leaf:      element(ooxml.WordML, "t"),
	Separator: element(ooxml.WordML, "tab", "br", "cr", "p", "tc"),
}

// WordAdapter rewrites the text of word/document.xml
type WordAdapter struct {
	opts WordOptions
}

// NewWordAdapter creates a Word adapter
func NewWordAdapter(opts WordOptions) *WordAdapter {
	return &WordAdapter{opts: opts}
}

// Name returns the adapter's name
func (a *WordAdapter) Name() string {
	return "word"
}

// Parts returns the body, then headers, footers and notes when enabled
func (a *WordAdapter) Parts(pkg PartLister) ([]string, []*redactors.RedactionError) {
	var parts []string
	var diags []*redactors.RedactionError

	if pkg.Has(WordDocumentPart) {
		parts = append(parts, WordDocumentPart)
	} else {
		diags = append(diags, missingPart(WordDocumentPart))
	}

	if a.opts.IncludeHeadersFooters {
		names := pkg.Names()
		parts = append(parts, numberedParts(names, wordHeaderPart)...)
		parts = append(parts, numberedParts(names, wordFooterPart)...)
		for _, p := range wordNoteParts {
			if pkg.Has(p) {
				parts = append(parts, p)
			}
		}
	}
	return parts, diags
}

// Groups returns a single group rooted at the document element
func (a *WordAdapter) Groups(tree *ooxml.Tree) []GroupSpec {
	return []GroupSpec{{Root: tree.Root, Policy: wordPolicy}}
}
