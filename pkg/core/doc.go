// Package core defines the shared language of dbexport.
//
// This package contains:
//   - Catalog entities (SchemaObject, Schema, Snapshot)
//   - Dependency references produced by the extractor
//   - Export records derived from catalog objects
//
// pkg/core imports only the standard library. All other packages depend on
// core, not the reverse.
package core
