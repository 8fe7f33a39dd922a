// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ooxml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeText(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "call now", "call now"},
		{"predefined entities", "a &amp; b &lt;c&gt; &quot;d&quot; &apos;e&apos;", `a & b <c> "d" 'e'`},
		{"decimal reference", "&#65;&#x42;&#X43;", "ABC"},
		{"cdata", "x<![CDATA[<&>]]>y", "x<&>y"},
		{"comment dropped", "a<!-- hidden -->b", "ab"},
		{"literal crlf", "a\r\nb\rc", "a\nb\nc"},
		{"referenced cr", "a&#xD;b", "a\rb"},
		{"multibyte", "東京&amp;大阪", "東京&大阪"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeText(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeText_Errors(t *testing.T) {
	for _, raw := range []string{"a &amp b", "&nbsp;", "&#xZZ;", "<b>x</b>", "<![CDATA[x"} {
		t.Run(raw, func(t *testing.T) {
			_, err := DecodeText(raw)
			assert.Error(t, err)
		})
	}
}

func TestEscapeText(t *testing.T) {
	assert.Equal(t, "plain", EscapeText("plain"))
	assert.Equal(t, "a &amp; b &lt;c&gt; \"q\" 'x'", EscapeText(`a & b <c> "q" 'x'`))
	assert.Equal(t, "line\nnext&#xD;", EscapeText("line\nnext\r"))
}

func TestEscapeDecodeRoundTrip(t *testing.T) {
	for _, s := range []string{"", "R&D <draft>", "■■■ & ■■", "tab\tand\nnewline", "cr\rkept"} {
		decoded, err := DecodeText(EscapeText(s))
		require.NoError(t, err)
		assert.Equal(t, s, decoded)
	}
}

func TestReplaceText(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		text string
		want string
	}{
		{"unchanged", "a&amp;b", "a&b", "a&amp;b"},
		{"comment kept", "sec<!--c-->ret", "■■■■■■", "■■■<!--c-->■■■"},
		{"processing instruction kept", "a<?pi x?>b", "■b", "■<?pi x?>b"},
		{"literal crlf kept", "ab\r\ncd", "■b\n■d", "■b\r\n■d"},
		{"referenced cr kept", "a&#xD;b", "■\r■", "■&#xD;■"},
		{"unchanged reference kept", "&#65;B", "A■", "&#65;■"},
		{"changed reference escaped", "a&amp;b", "■■■", "■■■"},
		{"markup characters escaped", "xyz", "<&>", "&lt;&amp;&gt;"},
		{"untouched cdata kept", "<![CDATA[a<b]]>z", "a<b■", "<![CDATA[a<b]]>■"},
		{"changed cdata escaped", "<![CDATA[a<b]]>", "■<b", "■&lt;b"},
		{"changed cdata keeps crlf", "<![CDATA[ab\r\ncd]]>", "■b\ncd", "■b\r\ncd"},
		{"changed cdata keeps lone cr", "<![CDATA[a\rb]]>", "a\n■", "a\r■"},
		{"multibyte", "東京", "■京", "■京"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReplaceText(tc.raw, tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			decoded, err := DecodeText(got)
			require.NoError(t, err)
			assert.Equal(t, tc.text, decoded)
		})
	}
}

func TestReplaceText_LengthMismatch(t *testing.T) {
	for _, text := range []string{"a", "abc"} {
		_, err := ReplaceText("ab", text)
		assert.ErrorIs(t, err, ErrLengthMismatch)
	}
	_, err := ReplaceText("a<b/>", "ab")
	assert.Error(t, err)
}

func TestIsXMLChar(t *testing.T) {
	assert.True(t, IsXMLChar('■'))
	assert.True(t, IsXMLChar('\t'))
	assert.False(t, IsXMLChar(0x01))
	assert.False(t, IsXMLChar(0xFFFE))
}
