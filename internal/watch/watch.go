// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package watch reports documents that appear in a directory once they have
// stopped changing.
package watch

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is a file that stayed unchanged for the debounce period
type Event struct {
	Path      string
	Size      int64
	Hash      [32]byte
	Timestamp time.Time
}

// Options configures a Watcher
type Options struct {
	// Debounce is how long a file must stay quiet before it is reported
	Debounce time.Duration

	// Accept filters the files worth reporting. Nil accepts every file.
	Accept func(path string) bool

	// IncludeExisting also reports files present when Start runs
	IncludeExisting bool
}

// Watcher monitors one directory
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dir       string
	opts      Options

	// path -> time of the last write seen
	pending map[string]time.Time
	// path -> content hash last reported, so touching a file does not report it twice
	reported map[string][32]byte
	mu       sync.Mutex

	events chan Event
	errors chan error

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a watcher for dir. Nothing is watched until Start.
func New(dir string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		return nil, fmt.Errorf("debounce must be positive, got %v", opts.Debounce)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating file watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		dir:       absDir,
		opts:      opts,
		pending:   make(map[string]time.Time),
		reported:  make(map[string][32]byte),
		events:    make(chan Event, 100),
		errors:    make(chan error, 10),
		done:      make(chan struct{}),
	}, nil
}

// Dir returns the absolute path of the watched directory
func (w *Watcher) Dir() string {
	return w.dir
}

// Events returns the channel of stable files
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of watch errors
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Start begins watching the directory
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return fmt.Errorf("error watching %s: %w", w.dir, err)
	}

	if w.opts.IncludeExisting {
		entries, err := os.ReadDir(w.dir)
		if err != nil {
			return err
		}
		now := time.Now()
		for _, entry := range entries {
			if !entry.IsDir() {
				w.touch(filepath.Join(w.dir, entry.Name()), now)
			}
		}
	}

	w.wg.Add(2)
	go w.eventLoop()
	go w.debounceLoop()
	return nil
}

// Stop shuts the watcher down and closes its channels
func (w *Watcher) Stop() error {
	close(w.done)
	w.wg.Wait()
	close(w.events)
	close(w.errors)
	return w.fsWatcher.Close()
}

func (w *Watcher) accept(path string) bool {
	base := filepath.Base(path)
	// office lock files and hidden temp files
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".") {
		return false
	}
	return w.opts.Accept == nil || w.opts.Accept(path)
}

func (w *Watcher) touch(path string, at time.Time) {
	if !w.accept(path) {
		return
	}
	w.mu.Lock()
	w.pending[path] = at
	w.mu.Unlock()
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil || info.IsDir() {
				continue
			}
			w.touch(event.Name, time.Now())

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		}
	}
}

func (w *Watcher) sendError(err error) {
	select {
	case w.errors <- err:
	default:
	}
}

func (w *Watcher) debounceLoop() {
	defer w.wg.Done()

	interval := w.opts.Debounce / 2
	if interval > time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case now := <-ticker.C:
			w.checkStableFiles(now)
		}
	}
}

// checkStableFiles reports files quiet for the debounce period. Hashing runs
// without the lock; a write seen meanwhile puts the file back in the queue.
func (w *Watcher) checkStableFiles(now time.Time) {
	threshold := now.Add(-w.opts.Debounce)

	type candidate struct {
		path    string
		lastMod time.Time
	}
	var stable []candidate
	w.mu.Lock()
	for path, lastMod := range w.pending {
		if lastMod.Before(threshold) {
			stable = append(stable, candidate{path, lastMod})
		}
	}
	w.mu.Unlock()

	for _, c := range stable {
		hash, size, err := HashFile(c.path)

		w.mu.Lock()
		if current, ok := w.pending[c.path]; !ok || !current.Equal(c.lastMod) {
			w.mu.Unlock()
			continue
		}
		if err != nil {
			delete(w.pending, c.path)
			w.mu.Unlock()
			if !os.IsNotExist(err) {
				w.sendError(err)
			}
			continue
		}
		if prev, ok := w.reported[c.path]; ok && prev == hash {
			delete(w.pending, c.path)
			w.mu.Unlock()
			continue
		}

		select {
		case w.events <- Event{Path: c.path, Size: size, Hash: hash, Timestamp: now}:
			delete(w.pending, c.path)
			w.reported[c.path] = hash
		default:
			// consumer is behind; retry on the next tick
		}
		w.mu.Unlock()
	}
}

// HashFile computes the SHA-256 of a file
func HashFile(path string) ([32]byte, int64, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return [32]byte{}, 0, err
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return [32]byte{}, 0, err
	}

	var hash [32]byte
	copy(hash[:], h.Sum(nil))
	return hash, size, nil
}
