// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package observability records timing and outcome data for redaction runs.
package observability

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StandardObserver times operations and, in debug mode, writes one JSON line per operation
type StandardObserver struct {
	level  ObservabilityLevel
	writer io.Writer
	runID  string

	mu         sync.Mutex
	operations int
	failures   int

	DebugObserver *DebugObserver // set when the observer runs in debug mode
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// String returns the string representation of the level
func (l ObservabilityLevel) String() string {
	switch l {
	case ObservabilityOff:
		return "off"
	case ObservabilityMetrics:
		return "metrics"
	case ObservabilityDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// NewStandardObserver creates an observer. A nil writer discards output.
func NewStandardObserver(level ObservabilityLevel, writer io.Writer) *StandardObserver {
	if writer == nil {
		writer = io.Discard
	}
	return &StandardObserver{
		level:  level,
		writer: writer,
		runID:  uuid.NewString(),
	}
}

// RunID identifies every record written by this observer
func (o *StandardObserver) RunID() string {
	return o.runID
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation, filePath string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		data := StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			FilePath:   filePath,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		}
		if msg, ok := metadata["error"].(string); ok {
			data.Error = msg
		}

		o.LogOperation(data)
	}
}

// LogOperation counts the operation and writes it as JSON in debug mode
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if o.level == ObservabilityOff {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.operations++
	if !data.Success {
		o.failures++
	}

	data.RunID = o.runID
	if o.level == ObservabilityDebug {
		_ = json.NewEncoder(o.writer).Encode(data)
	}
}

// Counts returns how many operations were recorded and how many of them failed
func (o *StandardObserver) Counts() (operations, failures int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.operations, o.failures
}

// StandardObservabilityData is one timed operation
type StandardObservabilityData struct {
	Component   string                 `json:"component"`
	Operation   string                 `json:"operation"`
	RunID       string                 `json:"run_id"`
	FilePath    string                 `json:"file_path,omitempty"`
	DurationMs  int64                  `json:"duration_ms,omitempty"`
	Success     bool                   `json:"success"`
	Error       string                 `json:"error,omitempty"`
	MaskedChars int                    `json:"masked_chars,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
