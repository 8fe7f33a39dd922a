// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redactors

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ooxml-mask/internal/observability"
)

// DefaultSuffix is inserted between a document's base name and its extension
const DefaultSuffix = "_masked"

// OutputStructureManager decides where masked documents are written
type OutputStructureManager struct {
	// baseOutputDir is where outputs go; empty means next to the input
	baseOutputDir string

	suffix string

	observer *observability.StandardObserver
}

// NewOutputStructureManager creates a manager. An empty suffix selects DefaultSuffix.
func NewOutputStructureManager(baseOutputDir, suffix string, observer *observability.StandardObserver) (*OutputStructureManager, error) {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	if strings.ContainsAny(suffix, `/\`) {
		return nil, fmt.Errorf("output suffix cannot contain path separators: %q", suffix)
	}

	cleanDir := ""
	if baseOutputDir != "" {
		cleanDir = filepath.Clean(baseOutputDir)
	}

	if observer == nil {
		observer = observability.NewStandardObserver(observability.ObservabilityMetrics, nil)
	}

	return &OutputStructureManager{
		baseOutputDir: cleanDir,
		suffix:        suffix,
		observer:      observer,
	}, nil
}

// OutputPath returns <base><suffix><ext> for originalPath, in the output
// directory when one is configured
func (osm *OutputStructureManager) OutputPath(originalPath string) (string, error) {
	finishTiming := osm.observer.StartTiming("output_manager", "output_path", originalPath)

	if originalPath == "" {
		finishTiming(false, map[string]interface{}{"error": "empty path"})
		return "", fmt.Errorf("original path cannot be empty")
	}

	clean := filepath.Clean(originalPath)
	dir, name := filepath.Split(clean)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	outName := base + osm.suffix + ext

	if osm.baseOutputDir != "" {
		dir = osm.baseOutputDir
	}
	out := filepath.Join(dir, outName)

	finishTiming(true, map[string]interface{}{"output_path": out})
	return out, nil
}

// IsOutput reports whether path already carries the output suffix
func (osm *OutputStructureManager) IsOutput(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(strings.TrimSuffix(name, filepath.Ext(name)), osm.suffix)
}

// EnsureDirectoryExists creates the parent directory of path if needed
func (osm *OutputStructureManager) EnsureDirectoryExists(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("path exists but is not a directory: %s", dir)
		}
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// Suffix returns the output suffix
func (osm *OutputStructureManager) Suffix() string {
	return osm.suffix
}

// GetComponentName returns the component name for observability
func (osm *OutputStructureManager) GetComponentName() string {
	return "output_structure_manager"
}
