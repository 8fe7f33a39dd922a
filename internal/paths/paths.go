// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ConfigDirEnv overrides the configuration directory on every platform
const ConfigDirEnv = "OOXML_MASK_CONFIG_DIR"

const appDirName = "ooxml-mask"

// GetConfigDir returns the ooxml-mask configuration directory: the
// OOXML_MASK_CONFIG_DIR override, else the user configuration directory
// (XDG_CONFIG_HOME or ~/.config on Unix, APPDATA on Windows).
func GetConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return filepath.Clean(dir)
	}

	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appDirName)
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "."+appDirName)
	}
	return "." + appDirName
}

// GetConfigFile returns the path to the main config file
func GetConfigFile() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// GetRulesFile returns the path of the default rule table
func GetRulesFile() string {
	return filepath.Join(GetConfigDir(), "rules.json")
}

// NormalizePath cleans a path and expands a leading ~ to the home directory
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return filepath.Clean(path)
}

// ValidatePath validates a path for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return nil
	}

	if strings.ContainsRune(path, 0) {
		return &PathValidationError{Path: path, Reason: "contains null byte"}
	}

	if runtime.GOOS == "windows" {
		for i, char := range path {
			if strings.ContainsRune(`<>"|?*`, char) || (char == ':' && i != 1) {
				return &PathValidationError{Path: path, Reason: "contains invalid character: " + string(char)}
			}
		}
	}
	return nil
}

// PathValidationError represents a path validation error
type PathValidationError struct {
	Path   string
	Reason string
}

func (e *PathValidationError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Reason
}
