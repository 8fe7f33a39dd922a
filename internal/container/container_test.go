// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEntry struct {
	name   string
	body   string
	method uint16
}

var modTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func buildZip(t *testing.T, comment string, entries ...testEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: e.method, Modified: modTime})
		require.NoError(t, err)
		_, err = io.WriteString(w, e.body)
		require.NoError(t, err)
	}
	if comment != "" {
		require.NoError(t, zw.SetComment(comment))
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func samplePackage(t *testing.T) []byte {
	return buildZip(t, "generated",
		testEntry{ContentTypesPart, `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`, zip.Deflate},
		testEntry{"_rels/.rels", `<Relationships/>`, zip.Deflate},
		testEntry{"word/document.xml", `<w:document><w:t>042-595-7557</w:t></w:document>`, zip.Deflate},
		testEntry{"word/media/image1.png", "\x89PNG\r\n", zip.Store},
	)
}

func TestOpen_PreservesEntryOrder(t *testing.T) {
	pkg, err := Open(samplePackage(t), Limits{})
	require.NoError(t, err)

	assert.Equal(t, []string{ContentTypesPart, "_rels/.rels", "word/document.xml", "word/media/image1.png"}, pkg.Names())
	assert.True(t, pkg.Has("word/document.xml"))
	assert.False(t, pkg.Has("word/header1.xml"))

	text, err := pkg.ReadPart("word/document.xml")
	require.NoError(t, err)
	assert.Equal(t, `<w:document><w:t>042-595-7557</w:t></w:document>`, text)

	_, err = pkg.ReadPart("missing.xml")
	assert.True(t, errors.Is(err, ErrNoPart))
}

func TestBytes_RoundTripKeepsHeadersAndUntouchedContent(t *testing.T) {
	pkg, err := Open(samplePackage(t), Limits{})
	require.NoError(t, err)

	masked := `<w:document><w:t>■■■■■■■■■■■■</w:t></w:document>`
	require.NoError(t, pkg.ReplacePart("word/document.xml", masked))
	assert.Equal(t, []string{"word/document.xml"}, pkg.Replaced())
	assert.Error(t, pkg.ReplacePart("word/missing.xml", ""))

	out, err := pkg.Bytes()
	require.NoError(t, err)

	r, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	assert.Equal(t, "generated", r.Comment)
	require.Len(t, r.File, 4)

	wantMethods := []uint16{zip.Deflate, zip.Deflate, zip.Deflate, zip.Store}
	for i, f := range r.File {
		assert.Equal(t, wantMethods[i], f.Method, f.Name)
		assert.True(t, f.Modified.Equal(modTime), "%s modified %v", f.Name, f.Modified)
	}

	reopened, err := Open(out, Limits{})
	require.NoError(t, err)
	got, err := reopened.ReadPart("word/document.xml")
	require.NoError(t, err)
	assert.Equal(t, masked, got)

	png, err := reopened.ReadPart("word/media/image1.png")
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG\r\n", png)
}

func TestOpen_Limits(t *testing.T) {
	data := buildZip(t, "",
		testEntry{"a.xml", strings.Repeat("a", 2048), zip.Deflate},
		testEntry{"b.xml", "b", zip.Deflate},
	)

	_, err := Open(data, Limits{MaxPartSize: 1024})
	assert.True(t, errors.Is(err, ErrLimitExceeded))

	_, err = Open(data, Limits{MaxParts: 1})
	assert.True(t, errors.Is(err, ErrLimitExceeded))

	_, err = Open(data, Limits{MaxPartSize: 4096, MaxParts: 2})
	assert.NoError(t, err)
}

func TestOpen_NotAZip(t *testing.T) {
	_, err := Open([]byte("plain text, not a package"), Limits{})
	assert.True(t, errors.Is(err, ErrNotPackage))
}

func TestWriteFileAndOpenFile(t *testing.T) {
	pkg, err := Open(samplePackage(t), Limits{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.docx")
	require.NoError(t, pkg.WriteFile(path))

	back, err := OpenFile(path, Limits{})
	require.NoError(t, err)
	assert.Equal(t, pkg.Names(), back.Names())

	_, err = OpenFile(filepath.Join(t.TempDir(), "missing.docx"), Limits{})
	assert.Error(t, err)
}

func TestWipe(t *testing.T) {
	pkg, err := Open(samplePackage(t), Limits{})
	require.NoError(t, err)
	pkg.Wipe()

	text, err := pkg.ReadPart("word/document.xml")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestDetectDocumentType(t *testing.T) {
	assert.Equal(t, DocumentTypePPTX, mustDetect(t, "deck.PPTX", nil))
	assert.Equal(t, DocumentTypeXLSX, mustDetect(t, "book.xlsx", nil))

	types := `<Types><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`
	pkg, err := Open(buildZip(t, "", testEntry{ContentTypesPart, types, zip.Deflate}), Limits{})
	require.NoError(t, err)
	assert.Equal(t, DocumentTypeDOCX, mustDetect(t, "upload.bin", pkg))

	_, err = DetectDocumentType("notes.txt", nil)
	assert.Error(t, err)

	empty, err := Open(buildZip(t, "", testEntry{ContentTypesPart, `<Types/>`, zip.Deflate}), Limits{})
	require.NoError(t, err)
	_, err = DetectDocumentType("upload.zip", empty)
	assert.Error(t, err)
}

func TestParseDocumentType(t *testing.T) {
	assert.Equal(t, DocumentTypeDOCX, ParseDocumentType("word"))
	assert.Equal(t, DocumentTypePPTX, ParseDocumentType(".pptx"))
	assert.Equal(t, DocumentTypeUnknown, ParseDocumentType("pdf"))
	assert.Equal(t, "xlsx", DocumentTypeXLSX.String())
}

func mustDetect(t *testing.T, name string, pkg *Package) DocumentType {
	t.Helper()
	dt, err := DetectDocumentType(name, pkg)
	require.NoError(t, err)
	return dt
}
