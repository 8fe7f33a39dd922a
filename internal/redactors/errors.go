// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redactors

import (
	"errors"
	"fmt"
	"time"
)

// Sentinels matched by errors.Is against a *RedactionError of the same type
var (
	ErrPartNotFound   = errors.New("part not found")
	ErrXMLParse       = errors.New("xml parse error")
	ErrInvalidPattern = errors.New("invalid pattern")
	ErrContract       = errors.New("contract violation")
)

// RedactionErrorType defines the type of redaction error
type RedactionErrorType int

const (
	// ErrorPartNotFound indicates an expected package part is absent
	ErrorPartNotFound RedactionErrorType = iota

	// ErrorXMLParse indicates a part is not well-formed XML
	ErrorXMLParse

	// ErrorInvalidPattern indicates a regex rule that does not compile
	ErrorInvalidPattern

	// ErrorContractViolation indicates masked text that does not line up with its group
	ErrorContractViolation

	// ErrorFileSystem indicates a file system or archive operation failure
	ErrorFileSystem

	// ErrorConfiguration indicates a configuration error
	ErrorConfiguration
)

// String returns the string representation of the error type
func (ret RedactionErrorType) String() string {
	switch ret {
	case ErrorPartNotFound:
		return "part_not_found"
	case ErrorXMLParse:
		return "xml_parse"
	case ErrorInvalidPattern:
		return "invalid_pattern"
	case ErrorContractViolation:
		return "contract_violation"
	case ErrorFileSystem:
		return "file_system"
	case ErrorConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// MarshalText lets the type render by name in JSON and YAML reports
func (ret RedactionErrorType) MarshalText() ([]byte, error) {
	return []byte(ret.String()), nil
}

func (ret RedactionErrorType) sentinel() error {
	switch ret {
	case ErrorPartNotFound:
		return ErrPartNotFound
	case ErrorXMLParse:
		return ErrXMLParse
	case ErrorInvalidPattern:
		return ErrInvalidPattern
	case ErrorContractViolation:
		return ErrContract
	default:
		return nil
	}
}

// RedactionError represents an error that occurred during redaction
type RedactionError struct {
	// Type is the type of error
	Type RedactionErrorType

	// Message is the error message. It never carries document text.
	Message string

	// FilePath is the path to the document being processed
	FilePath string

	// PartName is the package part the error belongs to, if any
	PartName string

	// Component is the component that generated the error
	Component string

	// Recoverable indicates whether the run can go on past this error
	Recoverable bool

	// Timestamp is when the error occurred
	Timestamp time.Time

	// Cause is the underlying error that caused this error
	Cause error
}

// Error implements the error interface
func (re *RedactionError) Error() string {
	msg := fmt.Sprintf("[%s] %s", re.Type.String(), re.Message)
	if re.PartName != "" {
		msg += fmt.Sprintf(" (part: %s)", re.PartName)
	}
	if re.FilePath != "" {
		msg += fmt.Sprintf(" (file: %s)", re.FilePath)
	}
	if re.Cause != nil {
		msg += ": " + re.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error unwrapping
func (re *RedactionError) Unwrap() error {
	return re.Cause
}

// Is matches the sentinel for the error's type
func (re *RedactionError) Is(target error) bool {
	s := re.Type.sentinel()
	return s != nil && target == s
}

// NewRedactionError creates a new RedactionError
func NewRedactionError(errorType RedactionErrorType, message, filePath, component string, cause error) *RedactionError {
	return &RedactionError{
		Type:        errorType,
		Message:     message,
		FilePath:    filePath,
		Component:   component,
		Recoverable: isRecoverable(errorType),
		Timestamp:   time.Now(),
		Cause:       cause,
	}
}

// NewPartError creates a RedactionError scoped to one package part
func NewPartError(errorType RedactionErrorType, message, partName, component string, cause error) *RedactionError {
	re := NewRedactionError(errorType, message, "", component, cause)
	re.PartName = partName
	return re
}

// isRecoverable determines if an error type is recoverable
func isRecoverable(errorType RedactionErrorType) bool {
	switch errorType {
	case ErrorPartNotFound, ErrorXMLParse, ErrorInvalidPattern, ErrorContractViolation:
		return true
	default:
		return false
	}
}

// RedactionErrorCollection gathers the diagnostics of one run
type RedactionErrorCollection struct {
	errors []*RedactionError
}

// NewRedactionErrorCollection creates a new error collection
func NewRedactionErrorCollection() *RedactionErrorCollection {
	return &RedactionErrorCollection{}
}

// Add appends errors to the collection, skipping nils
func (rec *RedactionErrorCollection) Add(errs ...*RedactionError) {
	for _, err := range errs {
		if err != nil {
			rec.errors = append(rec.errors, err)
		}
	}
}

// SetFilePath stamps every collected error that has no file path yet
func (rec *RedactionErrorCollection) SetFilePath(path string) {
	for _, err := range rec.errors {
		if err.FilePath == "" {
			err.FilePath = path
		}
	}
}

// GetErrors returns all errors in insertion order
func (rec *RedactionErrorCollection) GetErrors() []*RedactionError {
	return rec.errors
}

// HasErrors returns true if the collection contains any errors
func (rec *RedactionErrorCollection) HasErrors() bool {
	return len(rec.errors) > 0
}

// HasUnrecoverableErrors returns true if the collection contains any unrecoverable errors
func (rec *RedactionErrorCollection) HasUnrecoverableErrors() bool {
	for _, err := range rec.errors {
		if !err.Recoverable {
			return true
		}
	}
	return false
}

// GetErrorsByType returns all errors of the specified type
func (rec *RedactionErrorCollection) GetErrorsByType(errorType RedactionErrorType) []*RedactionError {
	var result []*RedactionError
	for _, err := range rec.errors {
		if err.Type == errorType {
			result = append(result, err)
		}
	}
	return result
}

// Count returns the number of errors in the collection
func (rec *RedactionErrorCollection) Count() int {
	return len(rec.errors)
}
