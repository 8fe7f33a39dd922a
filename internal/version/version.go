// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const development = "0.0.0-development"

// Build information, overridden with -ldflags "-X ooxml-mask/internal/version.Version=..."
var (
	Version   = development
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns formatted version information
func Info() string {
	version, commit := resolve()
	return fmt.Sprintf("ooxml-mask %s (commit: %s, built: %s, go: %s, platform: %s/%s)",
		version, commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns just the version number. It is also the tool version
// recorded in audit logs.
func Short() string {
	version, _ := resolve()
	return version
}

// resolve falls back to the module and VCS data embedded by `go install`
// when no ldflags were given
func resolve() (version, commit string) {
	version, commit = Version, GitCommit
	if version != development && commit != "unknown" {
		return version, commit
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version, commit
	}
	if version == development && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	if commit == "unknown" {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				commit = setting.Value
			}
		}
	}
	return version, commit
}
