package core

import "fmt"

// ObjectKind identifies the kind of an exportable catalog object.
type ObjectKind int

// Object kinds, in export order.
const (
	KindView ObjectKind = iota
	KindMaterializedView
	KindFunction
)

// ObjectKinds returns every object kind in the order the exporter visits them.
func ObjectKinds() []ObjectKind {
	return []ObjectKind{KindView, KindMaterializedView, KindFunction}
}

// String returns a human readable name for the kind.
func (k ObjectKind) String() string {
	switch k {
	case KindView:
		return "view"
	case KindMaterializedView:
		return "materialized view"
	case KindFunction:
		return "function"
	default:
		return fmt.Sprintf("ObjectKind(%d)", int(k))
	}
}

// Tag returns the tag used in exported file names.
// "matereialized" is misspelled on purpose: downstream build tooling matches on it.
func (k ObjectKind) Tag() string {
	switch k {
	case KindView:
		return "view"
	case KindMaterializedView:
		return "matereialized"
	case KindFunction:
		return "func"
	default:
		return ""
	}
}

// Valid reports whether k is one of the known kinds.
func (k ObjectKind) Valid() bool {
	return k >= KindView && k <= KindFunction
}

// KindFromTag is the inverse of Tag.
func KindFromTag(tag string) (ObjectKind, bool) {
	for _, k := range ObjectKinds() {
		if k.Tag() == tag {
			return k, true
		}
	}
	return 0, false
}

// Languages whose objects have no exportable SQL source.
const (
	LanguageC        = "c"
	LanguageInternal = "internal"
	LanguageSQL      = "sql"
)

// SchemaObject is one view, materialized view or function read from the catalog.
// Values are built once per run and never mutated.
type SchemaObject struct {
	Schema   string     `validate:"required"`
	Name     string     `validate:"required"`
	Kind     ObjectKind `validate:"gte=0,lte=2"`
	Source   *string
	Language string `validate:"required"`
}

// ID returns the schema-qualified name of the object.
func (o SchemaObject) ID() string {
	return o.Schema + "." + o.Name
}

// IsBuiltin reports whether the object has no user source to export:
// either the source is absent or it is implemented natively.
func (o SchemaObject) IsBuiltin() bool {
	if o.Source == nil {
		return true
	}
	return o.Language == LanguageC || o.Language == LanguageInternal
}

// StringPtr returns a pointer to s. Handy for building objects with a source.
func StringPtr(s string) *string {
	return &s
}
