// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package office

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ooxml-mask/internal/container"
	"ooxml-mask/internal/masking"
	"ooxml-mask/internal/observability"
	"ooxml-mask/internal/redactors"
	"ooxml-mask/internal/security"
)

// OfficeRedactor masks Word, PowerPoint and Excel packages
type OfficeRedactor struct {
	// observer handles observability and metrics
	observer *observability.StandardObserver

	// rules is compiled once and shared by every document
	rules *masking.RuleSet

	options Options
}

// NewOfficeRedactor creates a new OfficeRedactor
func NewOfficeRedactor(rules *masking.RuleSet, options Options, observer *observability.StandardObserver) *OfficeRedactor {
	if observer == nil {
		observer = observability.NewStandardObserver(observability.ObservabilityMetrics, nil)
	}

	return &OfficeRedactor{
		observer: observer,
		rules:    rules,
		options:  options,
	}
}

// GetName returns the name of the redactor
func (or *OfficeRedactor) GetName() string {
	return "office_redactor"
}

// GetSupportedTypes returns the file types this redactor can handle
func (or *OfficeRedactor) GetSupportedTypes() []string {
	return []string{".docx", ".docm", ".xlsx", ".xlsm", ".pptx", ".pptm"}
}

// GetComponentName returns the component name for observability
func (or *OfficeRedactor) GetComponentName() string {
	return componentName
}

// RedactDocument creates a masked copy of the Office document at outputPath
func (or *OfficeRedactor) RedactDocument(originalPath string, outputPath string) (*redactors.DocumentResult, error) {
	finishTiming := or.observer.StartTiming(componentName, "redact_document", originalPath)

	data, err := os.ReadFile(filepath.Clean(originalPath))
	if err != nil {
		finishTiming(false, map[string]interface{}{"error": err.Error()})
		return nil, redactors.NewRedactionError(redactors.ErrorFileSystem, "cannot read document", originalPath, componentName, err)
	}
	if or.options.MemoryScrub {
		defer security.WipeBytes(data)
	}

	out, result, err := or.RedactBytes(originalPath, data)
	if err != nil {
		finishTiming(false, map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	if or.options.MemoryScrub {
		defer security.WipeBytes(out)
	}

	if err := os.WriteFile(filepath.Clean(outputPath), out, 0600); err != nil {
		finishTiming(false, map[string]interface{}{"error": err.Error()})
		return nil, redactors.NewRedactionError(redactors.ErrorFileSystem, "cannot write masked document", originalPath, componentName, err)
	}
	result.OutputPath = outputPath

	finishTiming(true, map[string]interface{}{
		"output_path":  outputPath,
		"changed":      result.Changed,
		"masked_chars": result.MaskedChars(),
		"parts":        len(result.Parts),
	})
	return result, nil
}

// RedactBytes masks a package held in memory. fileName is used for type
// detection and diagnostics. Unless the package had to change, the returned
// bytes equal data.
func (or *OfficeRedactor) RedactBytes(fileName string, data []byte) ([]byte, *redactors.DocumentResult, error) {
	startTime := time.Now()

	pkg, err := container.Open(data, or.options.Limits)
	if err != nil {
		return nil, nil, redactors.NewRedactionError(redactors.ErrorFileSystem, "cannot open package", fileName, componentName, err)
	}
	if or.options.MemoryScrub {
		defer pkg.Wipe()
	}

	docType, err := container.DetectDocumentType(fileName, pkg)
	if err != nil {
		return nil, nil, redactors.NewRedactionError(redactors.ErrorConfiguration, "unsupported document", fileName, componentName, err)
	}
	adapter, err := AdapterFor(docType, or.options)
	if err != nil {
		return nil, nil, err
	}

	debug := or.observer.DebugObserver

	result := &redactors.DocumentResult{
		OriginalPath: fileName,
		DocumentType: docType.String(),
		OriginalHash: redactors.GenerateDocumentHash(data),
	}
	diags := redactors.NewRedactionErrorCollection()

	parts, missing := adapter.Parts(pkg)
	diags.Add(missing...)
	if debug != nil {
		debug.LogDetail(componentName, fmt.Sprintf("%s package, %d parts to rewrite", docType, len(parts)))
		for _, m := range missing {
			debug.LogDetail(componentName, "skipped: "+m.Message)
		}
	}

	for _, partName := range parts {
		partResult, ok := or.redactPart(pkg, adapter, partName, diags, debug)
		if !ok {
			continue
		}
		result.Parts = append(result.Parts, partResult)
		if partResult.Changed {
			result.Changed = true
		}
	}

	diags.SetFilePath(fileName)
	result.Diagnostics = diags.GetErrors()

	var out []byte
	if result.Changed {
		if debug != nil {
			debug.LogDetail(componentName, "replaced "+strings.Join(pkg.Replaced(), ", "))
		}
		out, err = pkg.Bytes()
		if err != nil {
			return nil, nil, redactors.NewRedactionError(redactors.ErrorFileSystem, "cannot write package", fileName, componentName, err)
		}
	} else {
		out = make([]byte, len(data))
		copy(out, data)
	}

	result.OutputHash = redactors.GenerateDocumentHash(out)
	result.ProcessingTime = time.Since(startTime)
	return out, result, nil
}

func (or *OfficeRedactor) redactPart(pkg *container.Package, adapter Adapter, partName string, diags *redactors.RedactionErrorCollection, debug *observability.DebugObserver) (*redactors.PartResult, bool) {
	finishTiming := or.observer.StartTiming(componentName, "redact_part", partName)
	var finishStep func(bool, string)
	if debug != nil {
		finishStep = debug.StartStep(adapter.Name(), "rewrite", partName)
	}
	fail := func(err error) {
		finishTiming(false, map[string]interface{}{"error": err.Error()})
		if finishStep != nil {
			finishStep(false, err.Error())
		}
	}

	raw, err := pkg.ReadPart(partName)
	if err != nil {
		perr := redactors.NewPartError(redactors.ErrorPartNotFound, "part cannot be read", partName, componentName, err)
		diags.Add(perr)
		fail(perr)
		return nil, false
	}

	partResult, err := RewritePart(adapter, partName, raw, or.rules)
	if err != nil {
		var perr *redactors.RedactionError
		if !errors.As(err, &perr) {
			perr = redactors.NewPartError(redactors.ErrorXMLParse, "part cannot be rewritten", partName, componentName, err)
		}
		diags.Add(perr)
		fail(perr)
		return nil, false
	}

	if partResult.Changed {
		if err := pkg.ReplacePart(partName, partResult.RewrittenText); err != nil {
			perr := redactors.NewPartError(redactors.ErrorFileSystem, "cannot replace part", partName, componentName, err)
			diags.Add(perr)
			fail(perr)
			return nil, false
		}
	}
	// the package owns the new text now; do not keep a second copy around
	partResult.RewrittenText = ""

	finishTiming(true, map[string]interface{}{
		"changed":      partResult.Changed,
		"masked_chars": partResult.MaskedChars,
		"groups":       partResult.Groups,
	})
	if finishStep != nil {
		debug.LogMetric(adapter.Name(), "groups", partResult.Groups)
		finishStep(true, fmt.Sprintf("%d masked", partResult.MaskedChars))
	}
	return partResult, true
}
