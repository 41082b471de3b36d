// Package manifest renders and reads the dependency header that prefixes
// every exported object file.
//
// The header is a block comment holding a small declaration:
//
//	/*
//	def {
//	  depends_on = [
//	        "from.public.orders",
//	    "join.public.customers"
//	  ]
//	}
//	*/
//
// The layout, including the deeper indent on the first entry, is consumed
// verbatim by downstream build tooling and must not change.
package manifest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/dbexport/pkg/core"
	"github.com/leapstack-labs/dbexport/pkg/depscan"
)

const (
	headerOpen  = "/*\ndef {\n  depends_on = [\n"
	headerClose = "\n  ]\n}\n*/\n"
	entryIndent = "    "
)

// ErrNoManifest is returned by Parse when content does not start with a header.
var ErrNoManifest = errors.New("no manifest header")

// Manifest is a parsed exported file.
type Manifest struct {
	DependsOn []core.DependencyReference
	Source    string
}

// Annotate extracts dependencies from source and returns the header followed
// by the untouched source. An absent or empty source yields "".
func Annotate(source *string) string {
	if source == nil || *source == "" {
		return ""
	}
	return Header(depscan.Extract(*source)) + *source
}

// Header renders the manifest block for deps.
func Header(deps []core.DependencyReference) string {
	entries := make([]string, len(deps))
	for i, d := range deps {
		entries[i] = entryIndent + `"` + d.String() + `"`
	}

	var b strings.Builder
	b.WriteString(headerOpen)
	b.WriteString(entryIndent)
	b.WriteString(strings.Join(entries, ",\n"))
	b.WriteString(headerClose)
	return b.String()
}

// Parse splits an exported file into its declared dependencies and source.
func Parse(content string) (*Manifest, error) {
	if !strings.HasPrefix(content, headerOpen) {
		return nil, ErrNoManifest
	}
	rest := content[len(headerOpen):]

	end := strings.Index(rest, headerClose)
	if end < 0 {
		return nil, fmt.Errorf("unterminated manifest header: %w", ErrNoManifest)
	}

	m := &Manifest{Source: rest[end+len(headerClose):]}
	for i, line := range strings.Split(rest[:end], "\n") {
		entry := strings.TrimSuffix(strings.TrimSpace(line), ",")
		if entry == "" {
			continue
		}
		value, err := strconv.Unquote(entry)
		if err != nil {
			return nil, fmt.Errorf("manifest entry %d: %q is not a quoted string", i+1, entry)
		}
		ref, ok := core.ParseDependencyReference(value)
		if !ok {
			return nil, fmt.Errorf("manifest entry %d: %q is not kind.referent", i+1, value)
		}
		m.DependsOn = append(m.DependsOn, ref)
	}
	return m, nil
}
