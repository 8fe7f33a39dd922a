// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func onlyDocx(path string) bool {
	return strings.HasSuffix(path, ".docx") && !strings.HasSuffix(path, "_masked.docx")
}

func startWatcher(t *testing.T, dir string, includeExisting bool) *Watcher {
	t.Helper()
	w, err := New(dir, Options{Debounce: 50 * time.Millisecond, Accept: onlyDocx, IncludeExisting: includeExisting})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func nextEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a watch event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, w *Watcher, wait time.Duration) {
	t.Helper()
	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event for %s", ev.Path)
	case <-time.After(wait):
	}
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.docx")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0600))

	h1, size, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), size)

	require.NoError(t, os.WriteFile(path, []byte("other"), 0600))
	h2, _, err := HashFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	_, _, err = HashFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestNew_Validation(t *testing.T) {
	dir := t.TempDir()
	_, err := New(dir, Options{})
	assert.Error(t, err)

	file := filepath.Join(dir, "f.docx")
	require.NoError(t, os.WriteFile(file, nil, 0600))
	_, err = New(file, Options{Debounce: time.Second})
	assert.Error(t, err)

	_, err = New(filepath.Join(dir, "missing"), Options{Debounce: time.Second})
	assert.Error(t, err)
}

func TestWatcher_ReportsAcceptedFiles(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, false)

	target := filepath.Join(dir, "report.docx")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report_masked.docx"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "~$report.docx"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(target, []byte("document"), 0600))

	ev := nextEvent(t, w)
	assert.Equal(t, target, ev.Path)
	assert.Equal(t, int64(8), ev.Size)
	assertNoEvent(t, w, 300*time.Millisecond)
}

func TestWatcher_SameContentIsReportedOnce(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, false)

	target := filepath.Join(dir, "report.docx")
	require.NoError(t, os.WriteFile(target, []byte("v1"), 0600))
	nextEvent(t, w)

	require.NoError(t, os.WriteFile(target, []byte("v1"), 0600))
	assertNoEvent(t, w, 300*time.Millisecond)

	require.NoError(t, os.WriteFile(target, []byte("v2"), 0600))
	assert.Equal(t, target, nextEvent(t, w).Path)
}

func TestWatcher_IncludeExisting(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "old.docx")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0600))

	w := startWatcher(t, dir, true)
	assert.Equal(t, existing, nextEvent(t, w).Path)
}
