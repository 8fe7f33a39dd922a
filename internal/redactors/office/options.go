// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package office

import (
	"fmt"
	"strings"

	"ooxml-mask/internal/container"
)

// Grouping selects how presentation text is split into groups
type Grouping int

const (
	// GroupTextBox matches each text body as one string
	GroupTextBox Grouping = iota
	// GroupParagraph matches each paragraph on its own
	GroupParagraph
)

// String returns the string representation of the grouping
func (g Grouping) String() string {
	switch g {
	case GroupTextBox:
		return "textbox"
	case GroupParagraph:
		return "paragraph"
	default:
		return "unknown"
	}
}

// ParseGrouping converts a string to Grouping. Empty selects GroupTextBox.
func ParseGrouping(s string) (Grouping, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "textbox", "text_box", "shape":
		return GroupTextBox, nil
	case "paragraph":
		return GroupParagraph, nil
	default:
		return GroupTextBox, fmt.Errorf("unknown grouping %q (want textbox or paragraph)", s)
	}
}

// WordOptions configures the Word adapter
type WordOptions struct {
	// IncludeHeadersFooters also rewrites headers, footers, footnotes and endnotes
	IncludeHeadersFooters bool
}

// PresentationOptions configures the Presentation adapter
type PresentationOptions struct {
	Grouping Grouping

	// IncludeNotes also rewrites speaker notes
	IncludeNotes bool
}

// Options configures an OfficeRedactor
type Options struct {
	Word         WordOptions
	Presentation PresentationOptions
	Limits       container.Limits

	// MemoryScrub zeroes document buffers once a document is done
	MemoryScrub bool
}
