package core

import "strings"

// DependencyReference names another object that a source text appears to use.
// Kind is the heuristic category (type, from, join), not an ObjectKind.
type DependencyReference struct {
	Kind     string
	Referent string
}

// String renders the reference the way manifests store it: "kind.referent".
func (d DependencyReference) String() string {
	return d.Kind + "." + d.Referent
}

// ParseDependencyReference splits "kind.referent" at the first dot.
func ParseDependencyReference(s string) (DependencyReference, bool) {
	kind, referent, ok := strings.Cut(s, ".")
	if !ok || kind == "" || referent == "" {
		return DependencyReference{}, false
	}
	return DependencyReference{Kind: kind, Referent: referent}, true
}

// ExportRecord is the derived, per-run result of classifying one object.
type ExportRecord struct {
	Object  SchemaObject
	Path    string
	Builtin bool
	Content string
}
