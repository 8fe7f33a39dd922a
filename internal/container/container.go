// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package container reads and rewrites OOXML packages. Entries keep their
// order, names, methods, timestamps and comments; only replaced parts get
// new bytes.
package container

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"ooxml-mask/internal/security"
)

var (
	ErrNotPackage    = errors.New("container: not a zip package")
	ErrLimitExceeded = errors.New("container: limit exceeded")
	ErrNoPart        = errors.New("container: no such part")
)

// Limits bounds what Open will decompress
type Limits struct {
	// MaxPartSize caps the uncompressed size of a single entry
	MaxPartSize int64
	// MaxParts caps the number of entries
	MaxParts int
}

// DefaultLimits returns the limits used when a field is zero
func DefaultLimits() Limits {
	return Limits{
		MaxPartSize: 256 << 20, // 256 MiB
		MaxParts:    10_000,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxPartSize <= 0 {
		l.MaxPartSize = d.MaxPartSize
	}
	if l.MaxParts <= 0 {
		l.MaxParts = d.MaxParts
	}
	return l
}

type entry struct {
	header   zip.FileHeader
	data     *security.SecureBuffer
	replaced bool
}

// Package is an OOXML package held in memory
type Package struct {
	entries []*entry
	index   map[string]int
	comment string
}

// Open reads a package from data
func Open(data []byte, limits Limits) (*Package, error) {
	limits = limits.withDefaults()

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPackage, err)
	}
	if len(r.File) > limits.MaxParts {
		return nil, fmt.Errorf("%w: %d entries, limit %d", ErrLimitExceeded, len(r.File), limits.MaxParts)
	}

	pkg := &Package{
		entries: make([]*entry, 0, len(r.File)),
		index:   make(map[string]int, len(r.File)),
		comment: r.Comment,
	}
	for _, f := range r.File {
		content, err := readEntry(f, limits.MaxPartSize)
		if err != nil {
			pkg.Wipe()
			return nil, err
		}
		if _, dup := pkg.index[f.Name]; !dup {
			pkg.index[f.Name] = len(pkg.entries)
		}
		pkg.entries = append(pkg.entries, &entry{
			header: f.FileHeader,
			data:   security.NewSecureBuffer(content),
		})
	}
	return pkg, nil
}

// OpenFile reads a package from disk
func OpenFile(path string, limits Limits) (*Package, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read package: %w", err)
	}
	pkg, err := Open(data, limits)
	security.WipeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pkg, nil
}

func readEntry(f *zip.File, maxSize int64) ([]byte, error) {
	if f.UncompressedSize64 > uint64(maxSize) {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrLimitExceeded, f.Name, f.UncompressedSize64, maxSize)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	// the header size may lie; read at most one byte past the limit
	content, err := io.ReadAll(io.LimitReader(rc, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %s: %w", f.Name, err)
	}
	if int64(len(content)) > maxSize {
		security.WipeBytes(content)
		return nil, fmt.Errorf("%w: %s inflates past %d bytes", ErrLimitExceeded, f.Name, maxSize)
	}
	return content, nil
}

// Names returns the entry names in archive order
func (p *Package) Names() []string {
	names := make([]string, 0, len(p.entries))
	for _, e := range p.entries {
		names = append(names, e.header.Name)
	}
	return names
}

// Has reports whether the package holds an entry named name
func (p *Package) Has(name string) bool {
	_, ok := p.index[name]
	return ok
}

// ReadPart returns an entry's content as text
func (p *Package) ReadPart(name string) (string, error) {
	i, ok := p.index[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoPart, name)
	}
	return p.entries[i].data.String(), nil
}

// ReplacePart sets an entry's new content. The entry keeps its header.
func (p *Package) ReplacePart(name, text string) error {
	i, ok := p.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoPart, name)
	}
	e := p.entries[i]
	e.data.Clear()
	e.data = security.NewSecureBuffer([]byte(text))
	e.replaced = true
	return nil
}

// Replaced returns the names of replaced entries in archive order
func (p *Package) Replaced() []string {
	var names []string
	for _, e := range p.entries {
		if e.replaced {
			names = append(names, e.header.Name)
		}
	}
	return names
}

// Bytes serializes the package
func (p *Package) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.writeTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile serializes the package to path with owner-only permissions
func (p *Package) WriteFile(path string) error {
	data, err := p.Bytes()
	if err != nil {
		return err
	}
	defer security.WipeBytes(data)
	if err := os.WriteFile(filepath.Clean(path), data, 0600); err != nil {
		return fmt.Errorf("failed to write package: %w", err)
	}
	return nil
}

func (p *Package) writeTo(w io.Writer) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	for _, e := range p.entries {
		fh := e.header
		// the writer regenerates sizes, checksum and the timestamp extra field
		fh.Extra = nil
		fh.CRC32 = 0
		fh.CompressedSize64 = 0
		fh.UncompressedSize64 = 0

		fw, err := zw.CreateHeader(&fh)
		if err != nil {
			return fmt.Errorf("failed to create entry %s: %w", fh.Name, err)
		}
		if _, err := fw.Write(e.data.Bytes()); err != nil {
			return fmt.Errorf("failed to write entry %s: %w", fh.Name, err)
		}
	}

	if p.comment != "" {
		if err := zw.SetComment(p.comment); err != nil {
			return fmt.Errorf("failed to set archive comment: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish package: %w", err)
	}
	return nil
}

// Wipe zeroes every entry's content. The package is unusable afterwards.
func (p *Package) Wipe() {
	for _, e := range p.entries {
		e.data.Clear()
	}
}
