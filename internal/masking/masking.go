// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package masking replaces every character matched by a rule with a mask
// glyph, keeping the text's length in characters unchanged.
package masking

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"ooxml-mask/internal/ooxml"
	"ooxml-mask/internal/redactors"
	"ooxml-mask/internal/rules"
)

// DefaultGlyph is BLACK SQUARE, U+25A0
const DefaultGlyph = '■'

const componentName = "masking"

// RuleSet is an ordered list of compiled rules. It is read-only once built
// and safe for concurrent use.
type RuleSet struct {
	glyph    string
	patterns []*regexp.Regexp
	sources  []rules.Rule
}

// Option configures Compile
type Option func(*RuleSet) error

// WithGlyph replaces the mask glyph. The glyph must be a legal XML character.
func WithGlyph(glyph rune) Option {
	return func(rs *RuleSet) error {
		if err := ValidateGlyph(glyph); err != nil {
			return err
		}
		rs.glyph = string(glyph)
		return nil
	}
}

// ValidateGlyph checks that glyph can stand in for a masked character in XML text
func ValidateGlyph(glyph rune) error {
	switch {
	case glyph == utf8.RuneError:
		return fmt.Errorf("mask glyph is not a valid character")
	case glyph == '\r' || glyph == '\n':
		return fmt.Errorf("mask glyph cannot be a line break")
	case !ooxml.IsXMLChar(glyph):
		return fmt.Errorf("mask glyph %U is not allowed in XML", glyph)
	}
	return nil
}

// ParseGlyph accepts a string holding exactly one character
func ParseGlyph(s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("mask glyph must be exactly one character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if err := ValidateGlyph(r); err != nil {
		return 0, err
	}
	return r, nil
}

// Compile turns rules into a RuleSet. Disabled and empty rules are dropped.
// A regex that does not compile yields one InvalidPattern diagnostic and is
// left out; the remaining rules still apply. The error return is reserved
// for a bad option.
func Compile(rs []rules.Rule, opts ...Option) (*RuleSet, []*redactors.RedactionError, error) {
	set := &RuleSet{glyph: string(DefaultGlyph)}
	for _, opt := range opts {
		if err := opt(set); err != nil {
			return nil, nil, err
		}
	}

	var diags []*redactors.RedactionError
	for i, r := range rs {
		if !r.Usable() {
			continue
		}

		expr := r.Pattern
		if r.Mode == rules.ModeLiteral {
			expr = regexp.QuoteMeta(r.Pattern)
		}

		re, err := regexp.Compile(expr)
		if err != nil {
			diags = append(diags, redactors.NewRedactionError(
				redactors.ErrorInvalidPattern,
				fmt.Sprintf("rule %d is not a valid regular expression", i+1),
				"", componentName, err))
			continue
		}

		set.patterns = append(set.patterns, re)
		set.sources = append(set.sources, r)
	}
	return set, diags, nil
}

// Glyph returns the mask glyph as a one-character string
func (s *RuleSet) Glyph() string {
	return s.glyph
}

// Len returns the number of rules that take part in masking
func (s *RuleSet) Len() int {
	return len(s.patterns)
}

// Empty reports whether masking is a no-op
func (s *RuleSet) Empty() bool {
	return len(s.patterns) == 0
}

// Rules returns the rules that compiled, in application order
func (s *RuleSet) Rules() []rules.Rule {
	out := make([]rules.Rule, len(s.sources))
	copy(out, s.sources)
	return out
}

// Mask applies every rule in order to the current text. A later rule sees
// the glyphs written by an earlier one. The result has as many characters
// as text.
func (s *RuleSet) Mask(text string) string {
	if text == "" {
		return text
	}
	for _, re := range s.patterns {
		text = re.ReplaceAllStringFunc(text, s.cover)
	}
	return text
}

func (s *RuleSet) cover(match string) string {
	return strings.Repeat(s.glyph, utf8.RuneCountInString(match))
}

// Mask compiles rules with the default glyph and applies them to text
func Mask(text string, rs []rules.Rule) (string, []*redactors.RedactionError) {
	set, diags, _ := Compile(rs)
	return set.Mask(text), diags
}

// CountMasked counts positions holding the glyph in masked but not in
// original. Both strings must have the same length in characters.
func CountMasked(original, masked string, glyph string) int {
	g, _ := utf8.DecodeRuneInString(glyph)
	mr := []rune(masked)
	n := 0
	i := 0
	for _, r := range original {
		if i >= len(mr) {
			break
		}
		if mr[i] == g && r != g {
			n++
		}
		i++
	}
	return n
}
