package core

// Schema groups the exportable objects of one catalog namespace.
type Schema struct {
	Name              string
	Views             []SchemaObject
	MaterializedViews []SchemaObject
	Functions         []SchemaObject
}

// Objects returns the objects of the given kind, in catalog order.
func (s Schema) Objects(kind ObjectKind) []SchemaObject {
	switch kind {
	case KindView:
		return s.Views
	case KindMaterializedView:
		return s.MaterializedViews
	case KindFunction:
		return s.Functions
	default:
		return nil
	}
}

// Add appends obj to the collection matching its kind.
func (s *Schema) Add(obj SchemaObject) {
	switch obj.Kind {
	case KindView:
		s.Views = append(s.Views, obj)
	case KindMaterializedView:
		s.MaterializedViews = append(s.MaterializedViews, obj)
	case KindFunction:
		s.Functions = append(s.Functions, obj)
	}
}

// Len returns the number of objects across all kinds.
func (s Schema) Len() int {
	return len(s.Views) + len(s.MaterializedViews) + len(s.Functions)
}

// Snapshot is a read-only view of the catalog taken at the start of a run.
type Snapshot struct {
	Schemas []Schema
}

// Schema returns the schema with the given name.
func (s *Snapshot) Schema(name string) (Schema, bool) {
	if s == nil {
		return Schema{}, false
	}
	for _, sc := range s.Schemas {
		if sc.Name == name {
			return sc, true
		}
	}
	return Schema{}, false
}

// ObjectCount returns the number of objects in the snapshot.
func (s *Snapshot) ObjectCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, sc := range s.Schemas {
		n += sc.Len()
	}
	return n
}
