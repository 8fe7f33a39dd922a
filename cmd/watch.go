// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"ooxml-mask/internal/config"
	"ooxml-mask/internal/formatters"
	"ooxml-mask/internal/redactors"
	"ooxml-mask/internal/watch"
)

// watchDirectory masks documents as they settle in dir until ctx is done.
// Documents are handled one at a time; cancellation is checked between them.
func watchDirectory(ctx context.Context, manager *redactors.RedactionManager, dir string, debounce time.Duration,
	report *formatters.Report, final *finalConfiguration, out io.Writer) error {
	if debounce <= 0 {
		debounce = config.DefaultDebounce
	}

	watcher, err := watch.New(dir, watch.Options{
		Debounce: debounce,
		Accept: func(path string) bool {
			return supportedInput(manager, path)
		},
		IncludeExisting: true,
	})
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", dir, err)
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	if !final.quiet {
		fmt.Fprintf(out, "Watching %s (press Ctrl+C to stop)\n", watcher.Dir())
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			result := recordResult(report, event.Path, manager)
			if !final.quiet {
				fmt.Fprintln(out, describeResult(event.Path, result))
			}
		case err, ok := <-watcher.Errors():
			if !ok {
				return nil
			}
			report.Failures = append(report.Failures, formatters.Failure{Path: dir, Err: err})
		}
	}
}

// describeResult is the one-line progress note printed per watched document
func describeResult(path string, result *redactors.DocumentResult) string {
	name := filepath.Base(path)
	switch {
	case result == nil:
		return fmt.Sprintf("  failed  %s", name)
	case result.HasDiagnostics():
		return fmt.Sprintf("  issues  %s -> %s (%d diagnostics)", name, filepath.Base(result.OutputPath), len(result.Diagnostics))
	case result.Changed:
		return fmt.Sprintf("  masked  %s -> %s (%d characters)", name, filepath.Base(result.OutputPath), result.MaskedChars())
	default:
		return fmt.Sprintf("  clean   %s -> %s", name, filepath.Base(result.OutputPath))
	}
}
