// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ooxml

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrLengthMismatch is returned by ReplaceText when the replacement does not
// have one character per decoded character
var ErrLengthMismatch = errors.New("replacement length does not match content")

var predefinedEntities = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": `"`,
	"apos": "'",
}

// DecodeText resolves entity and character references and unwraps CDATA
// sections in raw element content. Comments and processing instructions are
// dropped. Line endings are normalised the way an XML processor sees them:
// a literal CR or CRLF reads as LF, while &#xD; stays a CR.
func DecodeText(raw string) (string, error) {
	if !strings.ContainsAny(raw, "&<\r") {
		return raw, nil
	}

	var b strings.Builder
	b.Grow(len(raw))
	err := scanText(raw, func(p piece) error {
		b.WriteString(p.text)
		return nil
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// ReplaceText rewrites raw element content so it decodes to text. Every
// character that did not change keeps its source bytes, so references, line
// endings, comments and processing instructions stay as written. A CDATA
// section with any changed character is written out escaped. text must have
// as many characters as the decoded content.
func ReplaceText(raw, text string) (string, error) {
	var b strings.Builder
	b.Grow(len(raw))
	rest := text
	err := scanText(raw, func(p piece) error {
		end := 0
		for n := utf8.RuneCountInString(p.text); n > 0; n-- {
			if end >= len(rest) {
				return ErrLengthMismatch
			}
			_, size := utf8.DecodeRuneInString(rest[end:])
			end += size
		}
		next := rest[:end]
		rest = rest[end:]
		switch {
		case next == p.text:
			b.WriteString(p.src)
		case strings.HasPrefix(p.src, cdataOpen):
			b.WriteString(escapeCDATA(p.src[len(cdataOpen):len(p.src)-len(cdataClose)], next))
		default:
			b.WriteString(EscapeText(next))
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if rest != "" {
		return "", ErrLengthMismatch
	}
	return b.String(), nil
}

// escapeCDATA writes a changed CDATA body out as escaped text, keeping the
// body's own line endings. text is the decoded replacement of body.
func escapeCDATA(body, text string) string {
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		r, size := utf8.DecodeRuneInString(text)
		text = text[size:]
		if body[i] == '\r' {
			end := i + 1
			if end < len(body) && body[end] == '\n' {
				end++
			}
			if r == '\n' {
				b.WriteString(body[i:end])
			} else {
				b.WriteString(EscapeText(string(r)))
			}
			i = end
			continue
		}
		b.WriteString(EscapeText(string(r)))
		_, n := utf8.DecodeRuneInString(body[i:])
		i += n
	}
	return b.String()
}

const (
	cdataOpen  = "<![CDATA["
	cdataClose = "]]>"
)

// piece is one unit of element content: a character, a reference, a line
// ending, a CDATA section, or markup that decodes to nothing
type piece struct {
	src  string
	text string
}

func scanText(raw string, emit func(piece) error) error {
	for i := 0; i < len(raw); {
		c := raw[i]
		var p piece
		switch {
		case c == '\r':
			end := i + 1
			if end < len(raw) && raw[end] == '\n' {
				end++
			}
			p = piece{src: raw[i:end], text: "\n"}

		case c == '&':
			end := strings.IndexByte(raw[i:], ';')
			if end < 0 {
				return fmt.Errorf("unterminated entity reference at offset %d", i)
			}
			s, err := resolveReference(raw[i+1 : i+end])
			if err != nil {
				return fmt.Errorf("offset %d: %w", i, err)
			}
			p = piece{src: raw[i : i+end+1], text: s}

		case strings.HasPrefix(raw[i:], cdataOpen):
			body := raw[i+len(cdataOpen):]
			end := strings.Index(body, "]]>")
			if end < 0 {
				return fmt.Errorf("unterminated CDATA section at offset %d", i)
			}
			text := strings.ReplaceAll(strings.ReplaceAll(body[:end], "\r\n", "\n"), "\r", "\n")
			p = piece{src: raw[i : i+len(cdataOpen)+end+len(cdataClose)], text: text}

		case strings.HasPrefix(raw[i:], "<!--"):
			end := strings.Index(raw[i:], "-->")
			if end < 0 {
				return fmt.Errorf("unterminated comment at offset %d", i)
			}
			p = piece{src: raw[i : i+end+len("-->")]}

		case strings.HasPrefix(raw[i:], "<?"):
			end := strings.Index(raw[i:], "?>")
			if end < 0 {
				return fmt.Errorf("unterminated processing instruction at offset %d", i)
			}
			p = piece{src: raw[i : i+end+len("?>")]}

		case c == '<':
			return fmt.Errorf("unexpected markup at offset %d", i)

		default:
			_, size := utf8.DecodeRuneInString(raw[i:])
			p = piece{src: raw[i : i+size], text: raw[i : i+size]}
		}
		if err := emit(p); err != nil {
			return err
		}
		i += len(p.src)
	}
	return nil
}

func resolveReference(ref string) (string, error) {
	if s, ok := predefinedEntities[ref]; ok {
		return s, nil
	}
	if !strings.HasPrefix(ref, "#") {
		return "", fmt.Errorf("unknown entity &%s;", ref)
	}

	var code uint64
	var err error
	if strings.HasPrefix(ref, "#x") || strings.HasPrefix(ref, "#X") {
		code, err = strconv.ParseUint(ref[2:], 16, 32)
	} else {
		code, err = strconv.ParseUint(ref[1:], 10, 32)
	}
	if err != nil || !utf8.ValidRune(rune(code)) {
		return "", fmt.Errorf("invalid character reference &%s;", ref)
	}
	return string(rune(code)), nil
}

// EscapeText encodes decoded text for use as element content. Only the
// characters that would otherwise change the markup are escaped, plus CR so a
// decoded &#xD; survives the round trip.
func EscapeText(s string) string {
	if !strings.ContainsAny(s, "&<>\r") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 16)
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '\r':
			b.WriteString("&#xD;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsXMLChar reports whether r may appear in XML 1.0 character data
func IsXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}
