// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redactors

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RedactionAuditLog records what a run did to one document. It holds counts,
// hashes and diagnostics, never document text or matched values.
type RedactionAuditLog struct {
	DocumentID         string    `json:"document_id"`
	RunID              string    `json:"run_id,omitempty"`
	RedactionTimestamp time.Time `json:"redaction_timestamp"`
	ToolVersion        string    `json:"tool_version"`

	OriginalPath     string `json:"original_path"`
	RedactedPath     string `json:"redacted_path"`
	DocumentType     string `json:"document_type"`
	OriginalFileHash string `json:"original_file_hash"`
	RedactedFileHash string `json:"redacted_file_hash"`

	RedactionSummary RedactionSummary  `json:"redaction_summary"`
	Parts            []PartAudit       `json:"parts"`
	Diagnostics      []DiagnosticAudit `json:"diagnostics"`
}

// RedactionSummary contains summary statistics for one document
type RedactionSummary struct {
	PartsProcessed int           `json:"parts_processed"`
	PartsChanged   int           `json:"parts_changed"`
	MaskedChars    int           `json:"masked_chars"`
	Groups         int           `json:"groups"`
	Diagnostics    int           `json:"diagnostics"`
	ProcessingTime time.Duration `json:"processing_time"`
}

// PartAudit summarizes one rewritten part
type PartAudit struct {
	PartName    string `json:"part_name"`
	Changed     bool   `json:"changed"`
	MaskedChars int    `json:"masked_chars"`
	Groups      int    `json:"groups"`
}

// DiagnosticAudit is a non-fatal problem. The underlying cause is left out
// because regex compile errors quote the rule pattern.
type DiagnosticAudit struct {
	Type      string `json:"type"`
	PartName  string `json:"part_name,omitempty"`
	Component string `json:"component,omitempty"`
	Message   string `json:"message"`
}

// NewRedactionAuditLog builds an audit entry from a finished document run
func NewRedactionAuditLog(result *DocumentResult, runID, toolVersion string) *RedactionAuditLog {
	log := &RedactionAuditLog{
		DocumentID:         uuid.NewString(),
		RunID:              runID,
		RedactionTimestamp: time.Now().UTC(),
		ToolVersion:        toolVersion,
		OriginalPath:       result.OriginalPath,
		RedactedPath:       result.OutputPath,
		DocumentType:       result.DocumentType,
		OriginalFileHash:   result.OriginalHash,
		RedactedFileHash:   result.OutputHash,
		Parts:              make([]PartAudit, 0, len(result.Parts)),
		Diagnostics:        make([]DiagnosticAudit, 0, len(result.Diagnostics)),
	}

	for _, p := range result.Parts {
		log.Parts = append(log.Parts, PartAudit{
			PartName:    p.PartName,
			Changed:     p.Changed,
			MaskedChars: p.MaskedChars,
			Groups:      p.Groups,
		})
		log.RedactionSummary.PartsProcessed++
		log.RedactionSummary.MaskedChars += p.MaskedChars
		log.RedactionSummary.Groups += p.Groups
		if p.Changed {
			log.RedactionSummary.PartsChanged++
		}
	}

	for _, d := range result.Diagnostics {
		log.Diagnostics = append(log.Diagnostics, DiagnosticAudit{
			Type:      d.Type.String(),
			PartName:  d.PartName,
			Component: d.Component,
			Message:   d.Message,
		})
	}
	log.RedactionSummary.Diagnostics = len(log.Diagnostics)
	log.RedactionSummary.ProcessingTime = result.ProcessingTime

	return log
}

// Validate checks the entry for completeness
func (ri *RedactionAuditLog) Validate() error {
	if ri.DocumentID == "" {
		return fmt.Errorf("document_id cannot be empty")
	}
	if ri.OriginalPath == "" {
		return fmt.Errorf("original_path cannot be empty")
	}
	if ri.RedactionTimestamp.IsZero() {
		return fmt.Errorf("redaction_timestamp cannot be zero")
	}
	for i, p := range ri.Parts {
		if p.PartName == "" {
			return fmt.Errorf("parts[%d].part_name cannot be empty", i)
		}
		if p.MaskedChars < 0 {
			return fmt.Errorf("parts[%d].masked_chars cannot be negative", i)
		}
	}
	return nil
}

// ToJSON converts the audit entry to indented JSON
func (ri *RedactionAuditLog) ToJSON() ([]byte, error) {
	return json.MarshalIndent(ri, "", "  ")
}

// FromJSON parses one audit entry
func FromJSON(data []byte) (*RedactionAuditLog, error) {
	var log RedactionAuditLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("failed to unmarshal redaction audit log: %w", err)
	}
	return &log, nil
}

// GenerateDocumentHash returns the hex SHA-256 of content
func GenerateDocumentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// RedactionAuditLogManager collects audit entries for a run and saves them as one JSON array
type RedactionAuditLogManager struct {
	mu      sync.Mutex
	path    string
	entries []*RedactionAuditLog
}

// NewRedactionAuditLogManager creates a manager writing to path
func NewRedactionAuditLogManager(path string) *RedactionAuditLogManager {
	return &RedactionAuditLogManager{path: path}
}

// Add validates and records an entry
func (m *RedactionAuditLogManager) Add(entry *RedactionAuditLog) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid audit entry: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

// Entries returns the recorded entries in insertion order
func (m *RedactionAuditLogManager) Entries() []*RedactionAuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*RedactionAuditLog, len(m.entries))
	copy(out, m.entries)
	return out
}

// Save writes all entries to the manager's path with owner-only permissions
func (m *RedactionAuditLogManager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.path == "" {
		return fmt.Errorf("audit log path cannot be empty")
	}
	entries := m.entries
	if entries == nil {
		entries = []*RedactionAuditLog{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode audit log: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0700); err != nil {
		return fmt.Errorf("failed to create audit log directory: %w", err)
	}
	if err := os.WriteFile(m.path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
