// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Mode selects how a rule's pattern is matched
type Mode int

const (
	// ModeLiteral matches the pattern text exactly, metacharacters included
	ModeLiteral Mode = iota
	// ModeRegex compiles the pattern as a regular expression
	ModeRegex
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeLiteral:
		return "literal"
	case ModeRegex:
		return "regex"
	default:
		return "unknown"
	}
}

// ParseMode converts a string to Mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "literal":
		return ModeLiteral, nil
	case "regex", "regexp":
		return ModeRegex, nil
	default:
		return ModeLiteral, fmt.Errorf("unknown rule mode %q", s)
	}
}

// Rule is one masking rule. Rules are read-only for the duration of a run.
type Rule struct {
	Pattern string
	Mode    Mode
	Enabled bool
}

// Literal returns an enabled literal rule
func Literal(pattern string) Rule {
	return Rule{Pattern: pattern, Mode: ModeLiteral, Enabled: true}
}

// Regex returns an enabled regular expression rule
func Regex(pattern string) Rule {
	return Rule{Pattern: pattern, Mode: ModeRegex, Enabled: true}
}

// Usable reports whether the rule takes part in a masking pass
func (r Rule) Usable() bool {
	return r.Enabled && r.Pattern != ""
}

// PrioritizeLiterals reorders literal rules by descending length so a longer
// literal is applied before a shorter one it contains. Literals only trade
// places among the positions literals already occupy; regex rules and equal
// length literals keep their order.
func PrioritizeLiterals(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)

	var slots []int
	var literals []Rule
	for i, r := range out {
		if r.Mode == ModeLiteral {
			slots = append(slots, i)
			literals = append(literals, r)
		}
	}
	sort.SliceStable(literals, func(i, j int) bool {
		return utf8.RuneCountInString(literals[i].Pattern) > utf8.RuneCountInString(literals[j].Pattern)
	})
	for k, slot := range slots {
		out[slot] = literals[k]
	}
	return out
}
