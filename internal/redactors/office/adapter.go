// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package office

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"ooxml-mask/internal/container"
	"ooxml-mask/internal/masking"
	"ooxml-mask/internal/ooxml"
	"ooxml-mask/internal/redactors"
	"ooxml-mask/internal/runs"
)

const componentName = "office_redactor"

// PartLister is the view of a package an adapter needs to pick its parts
type PartLister interface {
	Names() []string
	Has(name string) bool
}

// GroupSpec is one subtree matched as a single continuous string
type GroupSpec struct {
	Root   int
	Policy runs.Policy
}

// Adapter knows where one document type keeps its text and how that text is grouped
type Adapter interface {
	// Name returns the adapter's name
	Name() string

	// Parts returns the parts to rewrite in processing order, plus a
	// PartNotFound diagnostic for each expected part that is absent
	Parts(pkg PartLister) ([]string, []*redactors.RedactionError)

	// Groups returns the groups of a parsed part in document order
	Groups(tree *ooxml.Tree) []GroupSpec
}

// RewritePart masks one part through adapter's grouping. Everything outside
// rewritten leaf content is returned byte for byte. The error, when not nil,
// is a *redactors.RedactionError of type ErrorXMLParse or ErrorContractViolation.
func RewritePart(adapter Adapter, partName, raw string, set *masking.RuleSet) (*redactors.PartResult, error) {
	tree, err := ooxml.Parse(partName, raw)
	if err != nil {
		return nil, redactors.NewPartError(redactors.ErrorXMLParse, "part is not well-formed XML", partName, componentName, err)
	}

	result := &redactors.PartResult{PartName: partName, RewrittenText: raw}
	if set == nil || set.Empty() {
		result.Groups = countGroups(tree, adapter)
		return result, nil
	}

	edits := make(map[int]string)
	for _, gs := range adapter.Groups(tree) {
		g, err := runs.Assemble(tree, gs.Root, gs.Policy)
		if err != nil {
			return nil, redactors.NewPartError(redactors.ErrorXMLParse, "text content cannot be decoded", partName, componentName, err)
		}
		if g.Empty() {
			continue
		}
		result.Groups++

		masked := set.Mask(g.Logical)
		if masked == g.Logical {
			continue
		}

		texts, err := runs.Redistribute(&g, masked)
		if err != nil {
			return nil, redactors.NewPartError(redactors.ErrorContractViolation, "masked text does not fit its group", partName, componentName, err)
		}
		for i, frag := range g.Fragments {
			if texts[i] == frag.Text {
				continue
			}
			content, err := tree.ReplaceInnerText(frag.Node, texts[i])
			if err != nil {
				return nil, redactors.NewPartError(redactors.ErrorContractViolation, "masked text does not fit its run", partName, componentName, err)
			}
			edits[frag.Node] = content
		}
		result.MaskedChars += masking.CountMasked(g.Logical, masked, set.Glyph())
	}

	if len(edits) == 0 {
		return result, nil
	}

	rendered, err := tree.Render(edits)
	if err != nil {
		return nil, redactors.NewPartError(redactors.ErrorContractViolation, "rewritten content cannot be spliced", partName, componentName, err)
	}
	result.RewrittenText = rendered
	result.Changed = true
	return result, nil
}

func countGroups(tree *ooxml.Tree, adapter Adapter) int {
	n := 0
	for _, gs := range adapter.Groups(tree) {
		if g, err := runs.Assemble(tree, gs.Root, gs.Policy); err == nil && !g.Empty() {
			n++
		}
	}
	return n
}

// RedactPart rewrites one part with the default adapter for docType
func RedactPart(docType container.DocumentType, partName, raw string, set *masking.RuleSet) (*redactors.PartResult, error) {
	adapter, err := AdapterFor(docType, Options{})
	if err != nil {
		return nil, err
	}
	return RewritePart(adapter, partName, raw, set)
}

// AdapterFor returns the adapter for docType configured by opts
func AdapterFor(docType container.DocumentType, opts Options) (Adapter, error) {
	switch docType {
	case container.DocumentTypeDOCX:
		return NewWordAdapter(opts.Word), nil
	case container.DocumentTypePPTX:
		return NewPresentationAdapter(opts.Presentation), nil
	case container.DocumentTypeXLSX:
		return NewSpreadsheetAdapter(), nil
	default:
		return nil, redactors.NewRedactionError(redactors.ErrorConfiguration,
			fmt.Sprintf("no adapter for document type %s", docType), "", componentName, errors.ErrUnsupported)
	}
}

// numberedParts returns the names matching re, ordered by the integer in
// re's first group. Names with equal numbers keep lexical order.
func numberedParts(names []string, re *regexp.Regexp) []string {
	type numbered struct {
		name string
		n    int
	}
	var found []numbered
	for _, name := range names {
		m := re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		found = append(found, numbered{name, n})
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].n != found[j].n {
			return found[i].n < found[j].n
		}
		return found[i].name < found[j].name
	})

	out := make([]string, len(found))
	for i, f := range found {
		out[i] = f.name
	}
	return out
}

func missingPart(pattern string) *redactors.RedactionError {
	return redactors.NewPartError(redactors.ErrorPartNotFound, "expected part is missing", pattern, componentName, nil)
}

func element(ns ooxml.Namespace, locals ...string) func(*ooxml.Node) bool {
	return func(n *ooxml.Node) bool {
		for _, l := range locals {
			if n.Is(ns, l) {
				return true
			}
		}
		return false
	}
}
