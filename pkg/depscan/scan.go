package depscan

import "github.com/leapstack-labs/dbexport/pkg/core"

// Scanner applies a fixed list of rules to source text.
type Scanner struct {
	rules []Rule
}

// New creates a scanner over rules. With no rules it uses DefaultRules.
func New(rules ...Rule) *Scanner {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Scanner{rules: rules}
}

var defaultScanner = New()

// Extract runs DefaultRules over source.
func Extract(source string) []core.DependencyReference {
	return defaultScanner.Scan(source)
}

// Scan returns the references found in source. Each rule rescans the full
// text; results are grouped by rule, then by match position. Duplicates are kept.
func (s *Scanner) Scan(source string) []core.DependencyReference {
	if source == "" {
		return nil
	}

	var refs []core.DependencyReference
	for _, rule := range s.rules {
		names := rule.Pattern.SubexpNames()
		for _, loc := range rule.Pattern.FindAllStringSubmatchIndex(source, -1) {
			if rule.excluded(source, loc[0]) {
				continue
			}
			for i, name := range names {
				if name == "" || loc[2*i] < 0 {
					continue
				}
				refs = append(refs, core.DependencyReference{
					Kind:     name,
					Referent: source[loc[2*i]:loc[2*i+1]],
				})
			}
		}
	}
	return refs
}
