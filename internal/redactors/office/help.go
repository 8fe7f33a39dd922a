// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package office

import "ooxml-mask/internal/help"

// GetFormatInfo returns help content for Word documents
func (a *WordAdapter) GetFormatInfo() help.FormatInfo {
	return help.FormatInfo{
		Name:             "word",
		Extensions:       []string{".docx", ".docm"},
		ShortDescription: "Word body text, optionally headers, footers and notes",
		DetailedDescription: "Every w:t run of a part is joined into one string before the rules run,\n" +
			"so a value split over several runs, paragraphs or table cells is still found.\n" +
			"Tabs and breaks contribute no characters and are kept as they are.",
		Parts: []string{
			WordDocumentPart,
			"word/header{N}.xml, word/footer{N}.xml (with include_headers_footers)",
			"word/footnotes.xml, word/endnotes.xml (with include_headers_footers)",
		},
		Grouping:          []string{"one group per part"},
		ConfigurationInfo: "  word:\n    include_headers_footers: true",
		Examples:          []string{"ooxml-mask -file contract.docx -mask 042-595-7557"},
	}
}

// GetFormatInfo returns help content for PowerPoint presentations
func (a *PresentationAdapter) GetFormatInfo() help.FormatInfo {
	return help.FormatInfo{
		Name:             "presentation",
		Extensions:       []string{".pptx", ".pptm"},
		ShortDescription: "Slide text boxes, optionally speaker notes",
		DetailedDescription: "Slides are processed by slide number. Line breaks (a:br) contribute no\n" +
			"characters, so \"tokyo\" + break + \"1-2-3\" matches the rule tokyo1-2-3.",
		Parts: []string{
			"ppt/slides/slide{N}.xml",
			"ppt/notesSlides/notesSlide{N}.xml (with include_notes)",
		},
		Grouping: []string{
			"textbox (default): all paragraphs of one text body form one group",
			"paragraph: each a:p is its own group",
		},
		ConfigurationInfo: "  presentation:\n    grouping: paragraph\n    include_notes: true",
		Examples:          []string{"ooxml-mask -file deck.pptx -mask tokyo1-2-3 -grouping paragraph"},
	}
}

// GetFormatInfo returns help content for Excel workbooks
func (a *SpreadsheetAdapter) GetFormatInfo() help.FormatInfo {
	return help.FormatInfo{
		Name:             "spreadsheet",
		Extensions:       []string{".xlsx", ".xlsm"},
		ShortDescription: "Shared strings and inline cell strings",
		DetailedDescription: "Text cells are stored once in the shared string table; masking an entry\n" +
			"masks every cell that uses it. Inline strings in worksheets are masked in place.\n" +
			"Numbers, formulas and cached formula results are not touched.",
		Parts: []string{
			SharedStringsPart,
			"xl/worksheets/sheet{N}.xml (inline strings)",
		},
		Grouping: []string{
			"one group per string item (si or is), across all of its runs",
			"one group per phonetic reading (rPh)",
		},
		Examples: []string{"ooxml-mask -file book.xlsx -rules rules.json"},
	}
}

// HelpProviders returns the help content of every adapter
func HelpProviders() []help.Provider {
	return []help.Provider{
		NewWordAdapter(WordOptions{}),
		NewPresentationAdapter(PresentationOptions{}),
		NewSpreadsheetAdapter(),
	}
}
