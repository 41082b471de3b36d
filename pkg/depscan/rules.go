// Package depscan guesses which database objects a block of SQL refers to.
//
// It is a lexical heuristic, not a parser: an ordered list of regular
// expressions is run over the raw text and every named capture group of every
// match becomes a dependency reference. Comments, string literals and scopes
// are not understood, so false positives and misses are expected. The rule
// list is part of the manifest contract; changing it changes which
// dependencies downstream builds see.
package depscan

import (
	"regexp"
	"strings"
)

// Rule is one lexical pattern. Each named capture group in Pattern yields a
// reference whose kind is the group name.
type Rule struct {
	// Pattern is matched against the whole source text.
	Pattern *regexp.Regexp
	// NotPrecededBy drops a match when the text immediately before it ends
	// with this string. RE2 has no lookbehind, so exclusions live here.
	NotPrecededBy string
}

// excluded reports whether the match starting at start is ruled out.
func (r Rule) excluded(source string, start int) bool {
	if r.NotPrecededBy == "" {
		return false
	}
	return strings.HasSuffix(source[:start], r.NotPrecededBy)
}

// DefaultRules is the rule set used for exported manifests, in evaluation order.
var DefaultRules = []Rule{
	{Pattern: regexp.MustCompile(`RETURNS (?P<type>[a-z_]+)`)},
	{Pattern: regexp.MustCompile(`FROM (?P<from>[\.a-z_]+)`), NotPrecededBy: "DISTINCT "},
	{Pattern: regexp.MustCompile(`JOIN (?P<join>[\.a-z_]+)`)},
	{Pattern: regexp.MustCompile(`::(?P<type>[\.A-Z_]+)`)},
}
