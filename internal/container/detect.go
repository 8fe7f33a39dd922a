// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DocumentType represents the kind of Office package
type DocumentType int

const (
	// DocumentTypeUnknown represents an unknown document type
	DocumentTypeUnknown DocumentType = iota
	// DocumentTypeDOCX represents a Word document
	DocumentTypeDOCX
	// DocumentTypeXLSX represents an Excel spreadsheet
	DocumentTypeXLSX
	// DocumentTypePPTX represents a PowerPoint presentation
	DocumentTypePPTX
)

// ContentTypesPart names the package's content type catalogue
const ContentTypesPart = "[Content_Types].xml"

// String returns the string representation of the document type
func (dt DocumentType) String() string {
	switch dt {
	case DocumentTypeDOCX:
		return "docx"
	case DocumentTypeXLSX:
		return "xlsx"
	case DocumentTypePPTX:
		return "pptx"
	default:
		return "unknown"
	}
}

// ParseDocumentType accepts a type name or an extension, with or without the dot
func ParseDocumentType(s string) DocumentType {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "docx", "docm", "word":
		return DocumentTypeDOCX
	case "xlsx", "xlsm", "spreadsheet", "excel":
		return DocumentTypeXLSX
	case "pptx", "pptm", "presentation", "powerpoint":
		return DocumentTypePPTX
	default:
		return DocumentTypeUnknown
	}
}

// mainContentTypes maps main-part content types to document types. Both
// transitional and macro-enabled variants open through the same adapters.
var mainContentTypes = []struct {
	contentType string
	docType     DocumentType
}{
	{"application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml", DocumentTypeDOCX},
	{"application/vnd.ms-word.document.macroEnabled.main+xml", DocumentTypeDOCX},
	{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml", DocumentTypeXLSX},
	{"application/vnd.ms-excel.sheet.macroEnabled.main+xml", DocumentTypeXLSX},
	{"application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml", DocumentTypePPTX},
	{"application/vnd.ms-powerpoint.presentation.macroEnabled.main+xml", DocumentTypePPTX},
}

// DetectDocumentType uses the file extension first, then the package's content types
func DetectDocumentType(fileName string, pkg *Package) (DocumentType, error) {
	if dt := ParseDocumentType(filepath.Ext(fileName)); dt != DocumentTypeUnknown {
		return dt, nil
	}
	if pkg == nil || !pkg.Has(ContentTypesPart) {
		return DocumentTypeUnknown, fmt.Errorf("unable to determine document type of %s", fileName)
	}

	catalogue, err := pkg.ReadPart(ContentTypesPart)
	if err != nil {
		return DocumentTypeUnknown, err
	}
	for _, ct := range mainContentTypes {
		if strings.Contains(catalogue, ct.contentType) {
			return ct.docType, nil
		}
	}
	return DocumentTypeUnknown, fmt.Errorf("unable to determine document type of %s", fileName)
}
