// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ooxml

// Namespace is the set of URIs one OOXML vocabulary is published under.
// Transitional and Strict conformance use different URIs for the same markup.
type Namespace []string

// Has reports whether uri belongs to the vocabulary
func (ns Namespace) Has(uri string) bool {
	for _, u := range ns {
		if u == uri {
			return true
		}
	}
	return false
}

var (
	// WordML is the WordprocessingML main vocabulary (w:)
	WordML = Namespace{
		"http://schemas.openxmlformats.org/wordprocessingml/2006/main",
		"http://purl.oclc.org/ooxml/wordprocessingml/main",
	}

	// DrawingML is the DrawingML main vocabulary (a:)
	DrawingML = Namespace{
		"http://schemas.openxmlformats.org/drawingml/2006/main",
		"http://purl.oclc.org/ooxml/drawingml/main",
	}

	// PresentationML is the PresentationML main vocabulary (p:)
	PresentationML = Namespace{
		"http://schemas.openxmlformats.org/presentationml/2006/main",
		"http://purl.oclc.org/ooxml/presentationml/main",
	}

	// SpreadsheetML is the SpreadsheetML main vocabulary (default namespace of xl/ parts)
	SpreadsheetML = Namespace{
		"http://schemas.openxmlformats.org/spreadsheetml/2006/main",
		"http://purl.oclc.org/ooxml/spreadsheetml/main",
	}
)
