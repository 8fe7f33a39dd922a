// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package runs

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ooxml-mask/internal/ooxml"
)

const drawingNS = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"`

var textBoxPolicy = Policy{
	Leaf: func(n *ooxml.Node) bool { return n.Is(ooxml.DrawingML, "t") },
	Separator: func(n *ooxml.Node) bool {
		return n.Is(ooxml.DrawingML, "br")
	},
}

func parse(t *testing.T, src string) *ooxml.Tree {
	t.Helper()
	tree, err := ooxml.Parse("test.xml", src)
	require.NoError(t, err)
	return tree
}

func TestAssemble_ConcatenatesFragmentsInOrder(t *testing.T) {
	tree := parse(t, `<a:p `+drawingNS+`><a:r><a:t>042-</a:t></a:r><a:r><a:rPr b="1"/><a:t>595-7557</a:t></a:r></a:p>`)

	g, err := Assemble(tree, tree.Root, textBoxPolicy)
	require.NoError(t, err)

	assert.Equal(t, "042-595-7557", g.Logical)
	require.Len(t, g.Fragments, 2)
	assert.Equal(t, "042-", g.Fragments[0].Text)
	assert.Equal(t, 4, g.Fragments[0].Length)
	assert.Equal(t, 8, g.Fragments[1].Length)
	assert.Equal(t, 12, g.Len())

	pos, ok := g.Locate(5)
	require.True(t, ok)
	assert.Equal(t, Position{Fragment: 1, Offset: 1}, pos)

	_, ok = g.Locate(12)
	assert.False(t, ok)
}

func TestAssemble_SeparatorContributesNothing(t *testing.T) {
	tree := parse(t, `<a:p `+drawingNS+`><a:r><a:t>tokyo</a:t></a:r><a:br><a:rPr lang="ja-JP"/></a:br><a:r><a:t>1-2-3</a:t></a:r></a:p>`)

	g, err := Assemble(tree, tree.Root, textBoxPolicy)
	require.NoError(t, err)

	assert.Equal(t, "tokyo1-2-3", g.Logical)
	require.Len(t, g.Separators, 1)
	assert.Equal(t, `<a:br><a:rPr lang="ja-JP"/></a:br>`, nodeSource(tree, g.Separators[0]))
}

func TestAssemble_ParagraphSeparatorsKeepNestedRuns(t *testing.T) {
	src := `<a:txBody ` + drawingNS + `><a:p><a:r><a:t>042-</a:t></a:r></a:p><a:p><a:r><a:t>595</a:t></a:r></a:p></a:txBody>`
	tree := parse(t, src)
	p := Policy{
		Leaf: textBoxPolicy.Leaf,
		Separator: func(n *ooxml.Node) bool {
			return n.Is(ooxml.DrawingML, "p") || n.Is(ooxml.DrawingML, "br")
		},
	}

	g, err := Assemble(tree, tree.Root, p)
	require.NoError(t, err)
	assert.Equal(t, "042-595", g.Logical)
	assert.Len(t, g.Separators, 2)
	assert.Len(t, g.Fragments, 2)
}

func TestAssemble_LeafWithElementChildrenIsWalked(t *testing.T) {
	tree := parse(t, `<a:p `+drawingNS+`><a:t>outer<a:t>inner</a:t></a:t></a:p>`)

	g, err := Assemble(tree, tree.Root, textBoxPolicy)
	require.NoError(t, err)
	assert.Equal(t, "inner", g.Logical)
}

func TestAssemble_ExcludesEmbeddedLineBreaks(t *testing.T) {
	tree := parse(t, "<a:p "+drawingNS+"><a:r><a:t>ab\ncd</a:t></a:r></a:p>")

	g, err := Assemble(tree, tree.Root, textBoxPolicy)
	require.NoError(t, err)

	assert.Equal(t, "abcd", g.Logical)
	assert.Equal(t, 4, g.Fragments[0].Length)

	pos, ok := g.Locate(2)
	require.True(t, ok)
	assert.Equal(t, 3, pos.Offset)
}

func TestAssemble_SkipPrunesSubtree(t *testing.T) {
	tree := parse(t, `<si><t>東京</t><rPh><t>トウキョウ</t></rPh></si>`)
	p := Policy{
		Leaf: func(n *ooxml.Node) bool { return n.Name.Local == "t" },
		Skip: func(n *ooxml.Node) bool { return n.Name.Local == "rPh" },
	}

	g, err := Assemble(tree, tree.Root, p)
	require.NoError(t, err)
	assert.Equal(t, "東京", g.Logical)
	assert.Equal(t, 2, g.Len())
}

func TestAssemble_EmptySubtree(t *testing.T) {
	tree := parse(t, `<a:p `+drawingNS+`><a:pPr/><a:endParaRPr/></a:p>`)

	g, err := Assemble(tree, tree.Root, textBoxPolicy)
	require.NoError(t, err)
	assert.True(t, g.Empty())
	assert.Equal(t, "", g.Logical)

	texts, err := Redistribute(&g, "")
	require.NoError(t, err)
	assert.Empty(t, texts)
}

func TestAssemble_Idempotent(t *testing.T) {
	tree := parse(t, `<a:p `+drawingNS+`><a:r><a:t>one</a:t></a:r><a:r><a:t>two</a:t></a:r></a:p>`)

	first, err := Assemble(tree, tree.Root, textBoxPolicy)
	require.NoError(t, err)
	second, err := Assemble(tree, tree.Root, textBoxPolicy)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRedistribute_CrossFragmentMask(t *testing.T) {
	tree := parse(t, `<a:p `+drawingNS+`><a:r><a:t>042-</a:t></a:r><a:r><a:t>595-7557</a:t></a:r></a:p>`)
	g, err := Assemble(tree, tree.Root, textBoxPolicy)
	require.NoError(t, err)

	texts, err := Redistribute(&g, strings.Repeat("■", 12))
	require.NoError(t, err)
	assert.Equal(t, []string{"■■■■", "■■■■■■■■"}, texts)
	assert.True(t, Changed(&g, texts))
}

func TestRedistribute_KeepsLineBreaksInPlace(t *testing.T) {
	tree := parse(t, "<a:p "+drawingNS+"><a:r><a:t>ab\ncd</a:t></a:r><a:r><a:t>ef</a:t></a:r></a:p>")
	g, err := Assemble(tree, tree.Root, textBoxPolicy)
	require.NoError(t, err)

	texts, err := Redistribute(&g, "a■■dE■")
	require.NoError(t, err)
	assert.Equal(t, []string{"a■\n■d", "E■"}, texts)
}

func TestRedistribute_UnchangedTextIsNotChanged(t *testing.T) {
	tree := parse(t, `<a:p `+drawingNS+`><a:r><a:t>keep</a:t></a:r></a:p>`)
	g, err := Assemble(tree, tree.Root, textBoxPolicy)
	require.NoError(t, err)

	texts, err := Redistribute(&g, g.Logical)
	require.NoError(t, err)
	assert.False(t, Changed(&g, texts))
}

func TestRedistribute_LengthMismatchFailsLoudly(t *testing.T) {
	tree := parse(t, `<a:p `+drawingNS+`><a:r><a:t>042-</a:t></a:r><a:r><a:t>595</a:t></a:r></a:p>`)
	g, err := Assemble(tree, tree.Root, textBoxPolicy)
	require.NoError(t, err)

	for _, masked := range []string{"■■■", "■■■■■■■■"} {
		_, err := Redistribute(&g, masked)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrLengthMismatch))
	}
}

func TestRedistribute_CorruptFragmentLength(t *testing.T) {
	tree := parse(t, `<a:p `+drawingNS+`><a:r><a:t>ab</a:t></a:r><a:r><a:t>cd</a:t></a:r></a:p>`)
	g, err := Assemble(tree, tree.Root, textBoxPolicy)
	require.NoError(t, err)

	g.Fragments[0].Length = 1
	g.Fragments[1].Length = 3
	_, err = Redistribute(&g, "wxyz")
	assert.True(t, errors.Is(err, ErrLengthMismatch))
}

func nodeSource(tree *ooxml.Tree, idx int) string {
	n := &tree.Nodes[idx]
	return tree.Source[n.Start:n.End]
}
