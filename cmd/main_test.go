// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ooxml-mask/internal/container"
	"ooxml-mask/internal/formatters"
	"ooxml-mask/internal/formatters/shared"
	"ooxml-mask/internal/paths"
	"ooxml-mask/internal/redactors"
	"ooxml-mask/internal/rules"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

// isolate keeps the run away from any configuration on the machine
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv(paths.ConfigDirEnv, t.TempDir())
	dir := t.TempDir()
	chdir(t, dir)
	return dir
}

func writeDocx(t *testing.T, dir, name, text string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := map[string]string{
		container.ContentTypesPart: `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"word/document.xml":        `<w:document ` + wordNS + `><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`,
	}
	for _, partName := range []string{container.ContentTypesPart, "word/document.xml"} {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: partName, Method: zip.Deflate})
		require.NoError(t, err)
		_, err = io.WriteString(w, parts[partName])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
	return path
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runCLI("-version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "ooxml-mask")
}

func TestRun_Help(t *testing.T) {
	code, out, _ := runCLI("-help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "USAGE:")

	code, out, _ = runCLI("-help", "formats")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "presentation")

	code, out, _ = runCLI("-help", "spreadsheet")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "sharedStrings")

	code, _, _ = runCLI("-help", "pdf")
	assert.Equal(t, exitFatal, code)
}

func TestRun_NoInput(t *testing.T) {
	isolate(t)
	code, _, errOut := runCLI("-mask", "x")
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, errOut, "no input")
}

func TestRun_BadFlagValue(t *testing.T) {
	dir := isolate(t)
	doc := writeDocx(t, dir, "a.docx", "x")

	code, _, errOut := runCLI("-file", doc, "-grouping", "slide")
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, errOut, "Error:")

	code, _, _ = runCLI("-file", doc, "-format", "sarif")
	assert.Equal(t, exitFatal, code)
}

func TestRun_MasksDocument(t *testing.T) {
	dir := isolate(t)
	doc := writeDocx(t, dir, "letter.docx", "tel 042-595-7557")
	auditLog := filepath.Join(dir, "audit.json")

	code, out, _ := runCLI("-file", doc, "-mask", "042-595-7557", "-format", "json", "-audit-log", auditLog)
	require.Equal(t, exitOK, code)

	var response shared.JSONResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	require.Len(t, response.Documents, 1)
	assert.True(t, response.Documents[0].Changed)
	assert.Equal(t, 12, response.Documents[0].MaskedChars)
	assert.Equal(t, int64(1), response.Summary.ChangedFiles)
	assert.NotContains(t, out, "042-595-7557")

	masked := filepath.Join(dir, "letter_masked.docx")
	assert.Equal(t, masked, response.Documents[0].OutputPath)
	_, err := os.Stat(masked)
	require.NoError(t, err)

	data, err := os.ReadFile(auditLog)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "042-595-7557")
	assert.Contains(t, string(data), response.RunID)
}

func TestRun_RulesFileAndSaveRules(t *testing.T) {
	dir := isolate(t)
	doc := writeDocx(t, dir, "a.docx", "salary 100")
	rulesFile := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(rulesFile, []byte(`[{"value": "salary", "enabled": true}]`), 0600))
	saved := filepath.Join(dir, "effective.json")

	code, _, _ := runCLI("-file", doc, "-rules", rulesFile, "-mask-regex", `\d+`, "-save-rules", saved, "-quiet")
	require.Equal(t, exitOK, code)

	got, err := rules.LoadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, []rules.Rule{rules.Literal("salary"), rules.Regex(`\d+`)}, got)
}

func TestRun_SavedRuleTable(t *testing.T) {
	dir := isolate(t)
	doc := writeDocx(t, dir, "a.docx", "tel 042-595-7557")
	require.NoError(t, os.WriteFile(paths.GetRulesFile(), []byte(`[{"value":"042-595-7557","enabled":true}]`), 0600))

	code, out, errOut := runCLI("-file", doc, "-format", "json")
	require.Equal(t, exitOK, code)
	assert.NotContains(t, errOut, "no usable rules")

	var response shared.JSONResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	require.Len(t, response.Documents, 1)
	assert.True(t, response.Documents[0].Changed)
	assert.Equal(t, 12, response.Documents[0].MaskedChars)
}

func TestRun_InitRules(t *testing.T) {
	isolate(t)

	code, out, _ := runCLI("-init-rules")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, paths.GetRulesFile())

	got, err := rules.LoadFile(paths.GetRulesFile())
	require.NoError(t, err)
	assert.Equal(t, rules.Starter(), got)

	code, _, errOut := runCLI("-init-rules")
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, errOut, "already exists")
}

func TestRun_DebugSummary(t *testing.T) {
	dir := isolate(t)
	doc := writeDocx(t, dir, "a.docx", "secret")

	code, _, errOut := runCLI("-file", doc, "-mask", "secret", "-debug", "-quiet")
	require.Equal(t, exitOK, code)
	assert.Contains(t, errOut, "ooxml-mask: operations = ")
	assert.Contains(t, errOut, "ooxml-mask: failed_operations = 0")
	assert.Contains(t, errOut, "replaced word/document.xml")
}

func TestRun_InvalidPatternIsADiagnostic(t *testing.T) {
	dir := isolate(t)
	doc := writeDocx(t, dir, "a.docx", "abc")

	code, out, _ := runCLI("-file", doc, "-mask-regex", "(", "-mask", "b", "-no-color")
	assert.Equal(t, exitDiagnostics, code)
	assert.Contains(t, out, "Rules:")
	assert.Contains(t, out, "[MASKED]")
}

func TestRun_FailedDocument(t *testing.T) {
	dir := isolate(t)
	bogus := filepath.Join(dir, "broken.docx")
	require.NoError(t, os.WriteFile(bogus, []byte("not a zip"), 0600))

	code, out, _ := runCLI("-file", bogus, "-mask", "x", "-quiet", "-no-color")
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, out, "[FAILED]")
}

func TestRun_Profiles(t *testing.T) {
	dir := isolate(t)
	configFile := filepath.Join(dir, "ooxml-mask.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
profiles:
  hr:
    description: personnel files
    rules:
      - value: salary
        enabled: true
    output_dir: out
`), 0600))

	code, out, _ := runCLI("-list-profiles")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "hr: personnel files")

	doc := writeDocx(t, dir, "a.docx", "salary")
	code, _, _ = runCLI("-file", doc, "-profile", "hr", "-quiet")
	require.Equal(t, exitOK, code)
	_, err := os.Stat(filepath.Join("out", "a_masked.docx"))
	assert.NoError(t, err)

	code, _, errOut := runCLI("-file", doc, "-profile", "missing")
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, errOut, "missing")
}

func TestStringSlice(t *testing.T) {
	var s stringSlice
	require.NoError(t, s.Set("a"))
	require.NoError(t, s.Set("b,c"))
	assert.Equal(t, stringSlice{"a", "b,c"}, s)
	assert.Equal(t, "a,b,c", s.String())
}

func TestExitCode(t *testing.T) {
	clean := &redactors.DocumentResult{}
	issues := &redactors.DocumentResult{
		Diagnostics: []*redactors.RedactionError{
			redactors.NewPartError(redactors.ErrorXMLParse, "bad xml", "word/document.xml", "test", nil),
		},
	}

	tests := []struct {
		name   string
		report *formatters.Report
		want   int
	}{
		{"clean", &formatters.Report{Documents: []*redactors.DocumentResult{clean}}, exitOK},
		{"diagnostics", &formatters.Report{Documents: []*redactors.DocumentResult{clean, issues}}, exitDiagnostics},
		{"failure", &formatters.Report{Failures: []formatters.Failure{{Path: "x.docx", Err: os.ErrNotExist}}}, exitFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.report))
		})
	}
}

func TestDescribeResult(t *testing.T) {
	assert.Contains(t, describeResult("in/a.docx", nil), "failed  a.docx")
	assert.Contains(t, describeResult("in/a.docx", &redactors.DocumentResult{OutputPath: "in/a_masked.docx"}), "clean   a.docx -> a_masked.docx")
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
