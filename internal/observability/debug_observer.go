// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// DebugObserver prints an indented trace of documents, parts and groups
type DebugObserver struct {
	*StandardObserver
	indent int
}

// NewDebugObserver creates a debug observer whose StandardObserver points back at it
func NewDebugObserver(writer io.Writer) *DebugObserver {
	d := &DebugObserver{
		StandardObserver: NewStandardObserver(ObservabilityDebug, writer),
	}
	d.StandardObserver.DebugObserver = d
	return d
}

// StartStep begins a processing step with indentation
func (d *DebugObserver) StartStep(component, step, target string) func(success bool, details string) {
	start := time.Now()
	fmt.Fprintf(d.writer, "%s> %s: %s (%s)\n", d.pad(), component, step, target)
	d.indent++

	return func(success bool, details string) {
		d.indent--
		took := time.Since(start).Milliseconds()
		if success {
			fmt.Fprintf(d.writer, "%sok %s: %s (%dms) %s\n", d.pad(), component, step, took, details)
		} else {
			fmt.Fprintf(d.writer, "%sFAIL %s: %s (%dms) %s\n", d.pad(), component, step, took, details)
		}
	}
}

// LogDetail logs a detail within the current step
func (d *DebugObserver) LogDetail(component, detail string) {
	fmt.Fprintf(d.writer, "%s  - %s: %s\n", d.pad(), component, detail)
}

// LogMetric logs a metric value
func (d *DebugObserver) LogMetric(component, metric string, value interface{}) {
	fmt.Fprintf(d.writer, "%s  # %s: %s = %v\n", d.pad(), component, metric, value)
}

func (d *DebugObserver) pad() string {
	return strings.Repeat("  ", d.indent)
}
