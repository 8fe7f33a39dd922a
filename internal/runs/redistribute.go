// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package runs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLengthMismatch signals that masked text does not line up with the
// group's fragments. It is a contract violation by the caller, never a data error.
var ErrLengthMismatch = errors.New("masked text length does not match group")

// Redistribute slices masked back across the group's fragments and returns
// each fragment's new decoded text, index-aligned with g.Fragments. Each
// fragment consumes exactly Length characters; its CR and LF characters stay
// where they were.
func Redistribute(g *Group, masked string) ([]string, error) {
	chars := []rune(masked)
	if len(chars) != g.Len() {
		return nil, fmt.Errorf("%w: masked text has %d characters, group holds %d", ErrLengthMismatch, len(chars), g.Len())
	}

	out := make([]string, len(g.Fragments))
	cursor := 0
	for i, frag := range g.Fragments {
		if cursor+frag.Length > len(chars) {
			return nil, fmt.Errorf("%w: fragment %d needs %d characters at offset %d, %d left", ErrLengthMismatch, i, frag.Length, cursor, len(chars)-cursor)
		}

		var b strings.Builder
		b.Grow(len(frag.Text))
		taken := 0
		for _, r := range frag.Text {
			if isLineBreak(r) {
				b.WriteRune(r)
				continue
			}
			if taken == frag.Length {
				return nil, fmt.Errorf("%w: fragment %d holds more characters than its recorded length %d", ErrLengthMismatch, i, frag.Length)
			}
			b.WriteRune(chars[cursor+taken])
			taken++
		}
		if taken != frag.Length {
			return nil, fmt.Errorf("%w: fragment %d recorded %d characters, text holds %d", ErrLengthMismatch, i, frag.Length, taken)
		}

		out[i] = b.String()
		cursor += frag.Length
	}

	if cursor != len(chars) {
		return nil, fmt.Errorf("%w: %d characters left after the last fragment", ErrLengthMismatch, len(chars)-cursor)
	}
	return out, nil
}

// Changed reports whether any redistributed text differs from its fragment's original
func Changed(g *Group, texts []string) bool {
	for i, frag := range g.Fragments {
		if i < len(texts) && texts[i] != frag.Text {
			return true
		}
	}
	return false
}
