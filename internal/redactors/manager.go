// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redactors

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"ooxml-mask/internal/observability"
)

// RedactionManager routes documents to the registered redactor for their extension
type RedactionManager struct {
	// redactors maps lower-case extensions to their redactor
	redactors map[string]Redactor

	observer *observability.StandardObserver

	outputManager *OutputStructureManager

	// auditLogManager is nil when no audit log was requested
	auditLogManager *RedactionAuditLogManager

	toolVersion string

	mu    sync.RWMutex
	stats *RedactionStats
}

// RedactionStats tracks what a manager has processed
type RedactionStats struct {
	mu sync.Mutex

	TotalFiles      int64
	ChangedFiles    int64
	FailedFiles     int64
	FilesWithIssues int64
	MaskedChars     int64
	ProcessingTime  time.Duration

	StartTime time.Time
}

// RedactionStatsSnapshot is a copy of RedactionStats safe to read
type RedactionStatsSnapshot struct {
	TotalFiles      int64         `json:"total_files" yaml:"total_files"`
	ChangedFiles    int64         `json:"changed_files" yaml:"changed_files"`
	FailedFiles     int64         `json:"failed_files" yaml:"failed_files"`
	FilesWithIssues int64         `json:"files_with_diagnostics" yaml:"files_with_diagnostics"`
	MaskedChars     int64         `json:"masked_chars" yaml:"masked_chars"`
	ProcessingTime  time.Duration `json:"processing_time_ns" yaml:"processing_time_ns"`
}

// NewRedactionManager creates a manager. auditLogManager may be nil.
func NewRedactionManager(outputManager *OutputStructureManager, auditLogManager *RedactionAuditLogManager, toolVersion string, observer *observability.StandardObserver) *RedactionManager {
	if observer == nil {
		observer = observability.NewStandardObserver(observability.ObservabilityMetrics, nil)
	}

	return &RedactionManager{
		redactors:       make(map[string]Redactor),
		observer:        observer,
		outputManager:   outputManager,
		auditLogManager: auditLogManager,
		toolVersion:     toolVersion,
		stats:           &RedactionStats{StartTime: time.Now()},
	}
}

// RegisterRedactor registers a redactor for each of its supported extensions
func (rm *RedactionManager) RegisterRedactor(redactor Redactor) error {
	if redactor == nil {
		return fmt.Errorf("redactor cannot be nil")
	}

	supportedTypes := redactor.GetSupportedTypes()
	if len(supportedTypes) == 0 {
		return fmt.Errorf("redactor must support at least one file type")
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	for _, fileType := range supportedTypes {
		normalizedType := strings.ToLower(fileType)
		if !strings.HasPrefix(normalizedType, ".") {
			normalizedType = "." + normalizedType
		}
		rm.redactors[normalizedType] = redactor
	}

	rm.logEvent("redactor_registered", true, map[string]interface{}{
		"redactor_name":   redactor.GetName(),
		"supported_types": supportedTypes,
	})
	return nil
}

// GetRedactorForFile returns the redactor registered for the file's extension
func (rm *RedactionManager) GetRedactorForFile(filePath string) (Redactor, error) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	ext := strings.ToLower(filepath.Ext(filePath))
	if ext == "" {
		return nil, fmt.Errorf("file has no extension: %s", filePath)
	}

	redactor, exists := rm.redactors[ext]
	if !exists {
		return nil, fmt.Errorf("no redactor registered for file type: %s", ext)
	}
	return redactor, nil
}

// SupportedExtensions returns the registered extensions in sorted order
func (rm *RedactionManager) SupportedExtensions() []string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	exts := make([]string, 0, len(rm.redactors))
	for ext := range rm.redactors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// OutputManager returns the manager's output naming policy
func (rm *RedactionManager) OutputManager() *OutputStructureManager {
	return rm.outputManager
}

// RedactFile masks one document and writes it next to the input or under
// the output directory
func (rm *RedactionManager) RedactFile(inputPath string) (*DocumentResult, error) {
	startTime := time.Now()

	redactor, err := rm.GetRedactorForFile(inputPath)
	if err != nil {
		rm.recordFailure(time.Since(startTime))
		return nil, NewRedactionError(ErrorConfiguration, "unsupported document", inputPath, rm.GetComponentName(), err)
	}

	outputPath, err := rm.outputManager.OutputPath(inputPath)
	if err != nil {
		rm.recordFailure(time.Since(startTime))
		return nil, NewRedactionError(ErrorFileSystem, "cannot name output", inputPath, rm.GetComponentName(), err)
	}
	if filepath.Clean(outputPath) == filepath.Clean(inputPath) {
		rm.recordFailure(time.Since(startTime))
		return nil, NewRedactionError(ErrorConfiguration, "output would overwrite the input", inputPath, rm.GetComponentName(), nil)
	}
	if err := rm.outputManager.EnsureDirectoryExists(outputPath); err != nil {
		rm.recordFailure(time.Since(startTime))
		return nil, NewRedactionError(ErrorFileSystem, "cannot create output directory", inputPath, rm.GetComponentName(), err)
	}

	result, err := redactor.RedactDocument(inputPath, outputPath)
	processingTime := time.Since(startTime)
	if err != nil {
		rm.recordFailure(processingTime)
		rm.logEvent("redaction_failed", false, map[string]interface{}{
			"file_path":     inputPath,
			"redactor_name": redactor.GetName(),
			"error":         err.Error(),
		})
		return nil, err
	}

	rm.stats.mu.Lock()
	rm.stats.TotalFiles++
	rm.stats.ProcessingTime += processingTime
	rm.stats.MaskedChars += int64(result.MaskedChars())
	if result.Changed {
		rm.stats.ChangedFiles++
	}
	if result.HasDiagnostics() {
		rm.stats.FilesWithIssues++
	}
	rm.stats.mu.Unlock()

	if rm.auditLogManager != nil {
		entry := NewRedactionAuditLog(result, rm.observer.RunID(), rm.toolVersion)
		if err := rm.auditLogManager.Add(entry); err != nil {
			return result, NewRedactionError(ErrorFileSystem, "cannot record audit entry", inputPath, rm.GetComponentName(), err)
		}
	}

	rm.logEvent("redaction_successful", true, map[string]interface{}{
		"file_path":    inputPath,
		"output_path":  outputPath,
		"changed":      result.Changed,
		"masked_chars": result.MaskedChars(),
		"diagnostics":  len(result.Diagnostics),
	})
	return result, nil
}

// RedactFiles processes paths one after another. A failed document does not
// stop the others; its error is returned at the same index.
func (rm *RedactionManager) RedactFiles(paths []string) ([]*DocumentResult, []error) {
	results := make([]*DocumentResult, len(paths))
	errs := make([]error, len(paths))
	for i, p := range paths {
		results[i], errs[i] = rm.RedactFile(p)
	}
	return results, errs
}

// SaveAuditLog writes the collected audit entries, if an audit log was requested
func (rm *RedactionManager) SaveAuditLog() error {
	if rm.auditLogManager == nil {
		return nil
	}
	return rm.auditLogManager.Save()
}

// GetStats returns a snapshot of the manager's counters
func (rm *RedactionManager) GetStats() RedactionStatsSnapshot {
	rm.stats.mu.Lock()
	defer rm.stats.mu.Unlock()
	return RedactionStatsSnapshot{
		TotalFiles:      rm.stats.TotalFiles,
		ChangedFiles:    rm.stats.ChangedFiles,
		FailedFiles:     rm.stats.FailedFiles,
		FilesWithIssues: rm.stats.FilesWithIssues,
		MaskedChars:     rm.stats.MaskedChars,
		ProcessingTime:  rm.stats.ProcessingTime,
	}
}

func (rm *RedactionManager) recordFailure(d time.Duration) {
	rm.stats.mu.Lock()
	defer rm.stats.mu.Unlock()
	rm.stats.TotalFiles++
	rm.stats.FailedFiles++
	rm.stats.ProcessingTime += d
}

// GetComponentName returns the component name for observability
func (rm *RedactionManager) GetComponentName() string {
	return "redaction_manager"
}

func (rm *RedactionManager) logEvent(operation string, success bool, metadata map[string]interface{}) {
	rm.observer.StartTiming(rm.GetComponentName(), operation, "")(success, metadata)
}
