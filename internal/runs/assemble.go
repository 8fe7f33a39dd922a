// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package runs rebuilds the logical text of a run-segmented OOXML subtree and
// writes masked text back across the original run boundaries.
package runs

import (
	"strings"

	"ooxml-mask/internal/ooxml"
)

// Policy tells the assembler how a format segments its text
type Policy struct {
	// Leaf accepts the elements whose content is text a reader sees. A
	// matching element with element children is walked into instead.
	Leaf func(*ooxml.Node) bool

	// Separator accepts paragraph, break and tab elements. They contribute
	// nothing to the logical string and do not split the group; leaves
	// nested inside a separator still count.
	Separator func(*ooxml.Node) bool

	// Skip accepts subtrees that belong to another group
	Skip func(*ooxml.Node) bool
}

// Fragment is one leaf element's share of a group's text
type Fragment struct {
	// Node is the arena index of the leaf element this fragment rewrites
	Node int

	// Text is the leaf's decoded original content
	Text string

	// Length is the number of maskable characters in Text (CR and LF excluded)
	Length int
}

// Position locates one logical character inside a fragment
type Position struct {
	// Fragment indexes Group.Fragments
	Fragment int

	// Offset is the byte offset of the character within the fragment's Text
	Offset int
}

// Group is an ordered run of fragments matched as one continuous string
type Group struct {
	// Root is the arena index of the element the group was assembled from
	Root int

	Fragments []Fragment

	// Separators lists separator elements met inside the group, in document order
	Separators []int

	// Logical is the flattened text the masking rules see
	Logical string

	index []Position
}

// Len returns the logical length in characters
func (g *Group) Len() int {
	return len(g.index)
}

// Empty reports whether the group has nothing to match against
func (g *Group) Empty() bool {
	return len(g.index) == 0
}

// Locate maps a logical character index to its fragment and offset within the fragment's text
func (g *Group) Locate(i int) (Position, bool) {
	if i < 0 || i >= len(g.index) {
		return Position{}, false
	}
	return g.index[i], true
}

// Assemble walks the subtree at root in document order and collects its text
// fragments. An error means a leaf's content could not be decoded.
func Assemble(tree *ooxml.Tree, root int, p Policy) (Group, error) {
	a := &assembler{tree: tree, policy: p, group: Group{Root: root}}
	if err := a.walk(root); err != nil {
		return Group{}, err
	}
	a.group.Logical = a.logical.String()
	return a.group, nil
}

type assembler struct {
	tree    *ooxml.Tree
	policy  Policy
	group   Group
	logical strings.Builder
}

func (a *assembler) walk(idx int) error {
	n := a.tree.Node(idx)
	if n.Kind != ooxml.KindElement {
		return nil
	}

	switch {
	case a.policy.Skip != nil && a.policy.Skip(n):
		return nil

	case a.policy.Leaf != nil && a.policy.Leaf(n) && !a.tree.HasElementChildren(idx):
		return a.addLeaf(idx)

	case a.policy.Separator != nil && a.policy.Separator(n):
		a.group.Separators = append(a.group.Separators, idx)
	}

	for _, c := range n.Children {
		if err := a.walk(c); err != nil {
			return err
		}
	}
	return nil
}

func (a *assembler) addLeaf(idx int) error {
	text, err := a.tree.InnerText(idx)
	if err != nil {
		return err
	}

	frag := Fragment{Node: idx, Text: text}
	fragIdx := len(a.group.Fragments)
	for offset, r := range text {
		if isLineBreak(r) {
			continue
		}
		a.logical.WriteRune(r)
		a.group.index = append(a.group.index, Position{Fragment: fragIdx, Offset: offset})
		frag.Length++
	}
	a.group.Fragments = append(a.group.Fragments, frag)
	return nil
}

func isLineBreak(r rune) bool {
	return r == '\r' || r == '\n'
}
