package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/dbexport/internal/dag"
	"github.com/leapstack-labs/dbexport/pkg/core"
	"github.com/leapstack-labs/dbexport/pkg/manifest"
)

// TreeEntry is one exported file read back from disk.
type TreeEntry struct {
	Object    core.SchemaObject // Schema, Name and Kind only
	Path      string
	DependsOn []core.DependencyReference
}

// ReadTree parses every exported file under root.
// Files directly under root belong to defaultSchema; files one directory down
// belong to the schema named by that directory. Other files are ignored.
func ReadTree(root, defaultSchema string) ([]TreeEntry, error) {
	var entries []TreeEntry

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		obj, ok := objectFromPath(rel, defaultSchema)
		if !ok {
			return nil
		}

		content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from WalkDir under root
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		entry := TreeEntry{Object: obj, Path: path}
		m, err := manifest.Parse(string(content))
		switch {
		case err == nil:
			entry.DependsOn = m.DependsOn
		case errors.Is(err, manifest.ErrNoManifest) && len(content) == 0:
			// empty source exported as an empty file
		default:
			return fmt.Errorf("%s: %w", path, err)
		}

		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// objectFromPath maps "<name>.<tag>.sql" or "<schema>/<name>.<tag>.sql" back
// to the object it was exported from.
func objectFromPath(rel, defaultSchema string) (core.SchemaObject, bool) {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	schema := defaultSchema
	switch len(parts) {
	case 1:
	case 2:
		schema = parts[0]
	default:
		return core.SchemaObject{}, false
	}

	base, ok := strings.CutSuffix(parts[len(parts)-1], ".sql")
	if !ok {
		return core.SchemaObject{}, false
	}
	dot := strings.LastIndex(base, ".")
	if dot <= 0 {
		return core.SchemaObject{}, false
	}
	kind, ok := core.KindFromTag(base[dot+1:])
	if !ok {
		return core.SchemaObject{}, false
	}
	return core.SchemaObject{Schema: schema, Name: base[:dot], Kind: kind}, true
}

// BuildGraph links entries by their manifests. A reference resolves to an
// exported object by schema-qualified name; bare names resolve against
// defaultSchema. References to anything not exported are ignored.
// Objects sharing a schema-qualified name share a node.
func BuildGraph(entries []TreeEntry, defaultSchema string) (*dag.Graph, error) {
	g := dag.NewGraph()
	for _, e := range entries {
		g.AddNode(e.Object.ID(), e)
	}

	for _, e := range entries {
		child := e.Object.ID()
		for _, dep := range e.DependsOn {
			parent := resolve(dep.Referent, defaultSchema)
			if parent == child || !g.HasNode(parent) {
				continue
			}
			if err := g.AddEdge(parent, child); err != nil {
				return nil, fmt.Errorf("failed to add dependency %s -> %s: %w", parent, child, err)
			}
		}
	}
	return g, nil
}

func resolve(referent, defaultSchema string) string {
	referent = strings.ToLower(referent)
	if strings.Contains(referent, ".") {
		return referent
	}
	return defaultSchema + "." + referent
}
