package export

import (
	"path/filepath"

	"github.com/leapstack-labs/dbexport/pkg/core"
)

// ObjectPath returns the file an object is exported to:
//
//	<root>/[<schema>/]<name>.<tag>.sql
//
// Objects of the default schema sit directly under root.
func ObjectPath(root, defaultSchema string, obj core.SchemaObject) string {
	dir := root
	if obj.Schema != defaultSchema {
		dir = filepath.Join(root, obj.Schema)
	}
	return filepath.Join(dir, obj.Name+"."+obj.Kind.Tag()+".sql")
}
