// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package office

import (
	"regexp"

	"ooxml-mask/internal/ooxml"
	"ooxml-mask/internal/redactors"
	"ooxml-mask/internal/runs"
)

var (
	slidePart = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	notesPart = regexp.MustCompile(`^ppt/notesSlides/notesSlide(\d+)\.xml$`)

	drawingText  = element(ooxml.DrawingML, "t")
	drawingBreak = element(ooxml.DrawingML, "br")
	drawingPara  = element(ooxml.DrawingML, "p")
)

func isTextBody(n *ooxml.Node) bool {
	return n.Is(ooxml.PresentationML, "txBody") || n.Is(ooxml.DrawingML, "txBody")
}

var textBoxPolicy = runs.Policy{
	Leaf:      drawingText,
	Separator: func(n *ooxml.Node) bool { return drawingPara(n) || drawingBreak(n) },
}

var paragraphPolicy = runs.Policy{
	Leaf:      drawingText,
	Separator: drawingBreak,
}

// PresentationAdapter rewrites slide text, one group per text body or paragraph
type PresentationAdapter struct {
	opts PresentationOptions
}

// NewPresentationAdapter creates a Presentation adapter
func NewPresentationAdapter(opts PresentationOptions) *PresentationAdapter {
	return &PresentationAdapter{opts: opts}
}

// Name returns the adapter's name
func (a *PresentationAdapter) Name() string {
	return "presentation"
}

// Parts returns slides by ascending number, then notes when enabled
func (a *PresentationAdapter) Parts(pkg PartLister) ([]string, []*redactors.RedactionError) {
	names := pkg.Names()
	parts := numberedParts(names, slidePart)

	var diags []*redactors.RedactionError
	if len(parts) == 0 {
		diags = append(diags, missingPart("ppt/slides/slide{N}.xml"))
	}
	if a.opts.IncludeNotes {
		parts = append(parts, numberedParts(names, notesPart)...)
	}
	return parts, diags
}

// Groups returns the part's text bodies, or their paragraphs in paragraph mode
func (a *PresentationAdapter) Groups(tree *ooxml.Tree) []GroupSpec {
	var specs []GroupSpec
	if a.opts.Grouping == GroupParagraph {
		for _, idx := range tree.Find(tree.Root, drawingPara) {
			specs = append(specs, GroupSpec{Root: idx, Policy: paragraphPolicy})
		}
		return specs
	}
	for _, idx := range tree.Find(tree.Root, isTextBody) {
		specs = append(specs, GroupSpec{Root: idx, Policy: textBoxPolicy})
	}
	return specs
}
