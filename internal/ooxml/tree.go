// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ooxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ErrMalformed is returned when a part's markup cannot be parsed
var ErrMalformed = errors.New("malformed XML part")

// ErrNotEditable is returned when an edit targets a node whose content cannot be replaced in place
var ErrNotEditable = errors.New("node content is not editable")

// NodeKind distinguishes element nodes from character data nodes
type NodeKind int

const (
	// KindElement is an XML element
	KindElement NodeKind = iota
	// KindText is a run of character data (text, entity references or CDATA)
	KindText
)

// Node is one entry of a parsed part's node arena. Nodes refer to each other
// by index into Tree.Nodes, never by pointer, so rewriting a part never
// invalidates a reference held by a fragment.
type Node struct {
	Kind NodeKind

	// Name is the element name with Space holding the resolved namespace URI
	Name xml.Name

	// Parent is the index of the enclosing element, -1 for top-level nodes
	Parent int

	// Children lists child node indexes in document order
	Children []int

	// Start and End delimit the node's full byte span in Tree.Source
	Start int
	End   int

	// InnerStart and InnerEnd delimit an element's content (between its tags)
	InnerStart int
	InnerEnd   int

	// SelfClosing is set for elements written as <name/>
	SelfClosing bool
}

// Is reports whether the node is an element with the given local name in one of the namespaces
func (n *Node) Is(ns Namespace, local string) bool {
	return n.Kind == KindElement && n.Name.Local == local && ns.Has(n.Name.Space)
}

// Tree is the node arena of one parsed OOXML part
type Tree struct {
	// PartName is the container path this tree was parsed from
	PartName string

	// Source is the raw part text; spans index into it
	Source string

	// Nodes is the arena, in document order
	Nodes []Node

	// Root is the index of the document element
	Root int
}

// Parse builds the node arena for a part. The part must be well-formed XML;
// anything else is reported as ErrMalformed naming the part.
func Parse(partName, text string) (*Tree, error) {
	tree := &Tree{PartName: partName, Source: text, Root: -1}

	decoder := xml.NewDecoder(strings.NewReader(text))
	decoder.Strict = true

	var stack []int
	for {
		start := int(decoder.InputOffset())
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, partName, err)
		}
		end := int(decoder.InputOffset())

		parent := -1
		if len(stack) > 0 {
			parent = stack[len(stack)-1]
		}

		switch t := token.(type) {
		case xml.StartElement:
			idx := tree.add(Node{
				Kind:       KindElement,
				Name:       t.Name,
				Parent:     parent,
				Start:      start,
				End:        end,
				InnerStart: end,
				InnerEnd:   end,
			})
			if parent < 0 && tree.Root < 0 {
				tree.Root = idx
			}
			stack = append(stack, idx)

		case xml.EndElement:
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			n := &tree.Nodes[idx]
			if start == end {
				// the decoder synthesises the end token of <name/> without consuming input
				n.SelfClosing = true
				n.InnerEnd = n.InnerStart
			} else {
				n.InnerEnd = start
			}
			n.End = end

		case xml.CharData:
			if parent < 0 {
				continue
			}
			tree.add(Node{Kind: KindText, Parent: parent, Start: start, End: end})
		}
	}

	if len(stack) > 0 {
		return nil, fmt.Errorf("%w: %s: unclosed element <%s>", ErrMalformed, partName, tree.Nodes[stack[len(stack)-1]].Name.Local)
	}
	if tree.Root < 0 {
		return nil, fmt.Errorf("%w: %s: no document element", ErrMalformed, partName)
	}
	return tree, nil
}

func (t *Tree) add(n Node) int {
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, n)
	if n.Parent >= 0 {
		t.Nodes[n.Parent].Children = append(t.Nodes[n.Parent].Children, idx)
	}
	return idx
}

// Node returns the node at idx
func (t *Tree) Node(idx int) *Node {
	return &t.Nodes[idx]
}

// InnerText decodes an element's content to the characters a reader sees.
func (t *Tree) InnerText(idx int) (string, error) {
	n := &t.Nodes[idx]
	if n.Kind != KindElement {
		return DecodeText(t.Source[n.Start:n.End])
	}
	text, err := DecodeText(t.Source[n.InnerStart:n.InnerEnd])
	if err != nil {
		return "", fmt.Errorf("%s: <%s> at offset %d: %w", t.PartName, n.Name.Local, n.Start, err)
	}
	return text, nil
}

// ReplaceInnerText returns an element's content rewritten to decode to text,
// in the form Render takes. See ReplaceText.
func (t *Tree) ReplaceInnerText(idx int, text string) (string, error) {
	n := &t.Nodes[idx]
	if n.Kind != KindElement {
		return "", fmt.Errorf("%w: %s: node %d is not an element", ErrNotEditable, t.PartName, idx)
	}
	content, err := ReplaceText(t.Source[n.InnerStart:n.InnerEnd], text)
	if err != nil {
		return "", fmt.Errorf("%s: <%s> at offset %d: %w", t.PartName, n.Name.Local, n.Start, err)
	}
	return content, nil
}

// HasElementChildren reports whether an element contains other elements
func (t *Tree) HasElementChildren(idx int) bool {
	for _, c := range t.Nodes[idx].Children {
		if t.Nodes[c].Kind == KindElement {
			return true
		}
	}
	return false
}

// Find returns, in document order, every element under root (root included)
// accepted by match. Matching elements are not descended into.
func (t *Tree) Find(root int, match func(*Node) bool) []int {
	var found []int
	var walk func(int)
	walk = func(idx int) {
		n := &t.Nodes[idx]
		if n.Kind != KindElement {
			return
		}
		if match(n) {
			found = append(found, idx)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return found
}

// Render splices replacement content into the original source. edits maps an
// element index to its new, already escaped, inner content. Bytes outside the
// edited content spans are copied unchanged.
func (t *Tree) Render(edits map[int]string) (string, error) {
	if len(edits) == 0 {
		return t.Source, nil
	}

	targets := make([]int, 0, len(edits))
	for idx := range edits {
		if idx < 0 || idx >= len(t.Nodes) || t.Nodes[idx].Kind != KindElement {
			return "", fmt.Errorf("%w: %s: node %d is not an element", ErrNotEditable, t.PartName, idx)
		}
		if t.Nodes[idx].SelfClosing && edits[idx] != "" {
			return "", fmt.Errorf("%w: %s: <%s/> is self-closing", ErrNotEditable, t.PartName, t.Nodes[idx].Name.Local)
		}
		targets = append(targets, idx)
	}
	sort.Slice(targets, func(i, j int) bool {
		return t.Nodes[targets[i]].InnerStart < t.Nodes[targets[j]].InnerStart
	})

	var out strings.Builder
	out.Grow(len(t.Source))
	cursor := 0
	for _, idx := range targets {
		n := &t.Nodes[idx]
		if n.SelfClosing {
			continue
		}
		if n.InnerStart < cursor {
			return "", fmt.Errorf("%w: %s: overlapping edit at offset %d", ErrNotEditable, t.PartName, n.InnerStart)
		}
		out.WriteString(t.Source[cursor:n.InnerStart])
		out.WriteString(edits[idx])
		cursor = n.InnerEnd
	}
	out.WriteString(t.Source[cursor:])
	return out.String(), nil
}
