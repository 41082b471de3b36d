package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dbexport/pkg/core"
)

func exportFixture(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "db", "app")

	public := core.Schema{Name: "public"}
	public.Add(obj("public", "orders", core.KindView, core.StringPtr("SELECT * FROM raw_orders"), "sql"))
	public.Add(obj("public", "order_totals", core.KindMaterializedView,
		core.StringPtr("SELECT o.id FROM orders o JOIN billing.invoices i ON i.order_id = o.id"), "sql"))
	public.Add(obj("public", "empty", core.KindView, core.StringPtr(""), "sql"))

	billing := core.Schema{Name: "billing"}
	billing.Add(obj("billing", "invoices", core.KindView, core.StringPtr("SELECT * FROM public.orders"), "sql"))

	_, err := New(Options{Root: root, Schemas: []string{"public", "billing"}}).
		Run(&core.Snapshot{Schemas: []core.Schema{public, billing}})
	require.NoError(t, err)

	// unrelated files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.sql"), []byte("--"), 0o644))
	return root
}

func TestReadTree(t *testing.T) {
	root := exportFixture(t)

	entries, err := ReadTree(root, "public")
	require.NoError(t, err)
	require.Len(t, entries, 4)

	byID := make(map[string]TreeEntry)
	for _, e := range entries {
		byID[e.Object.ID()+"/"+e.Object.Kind.Tag()] = e
	}

	invoices := byID["billing.invoices/view"]
	assert.Equal(t, filepath.Join(root, "billing", "invoices.view.sql"), invoices.Path)
	assert.Equal(t, []core.DependencyReference{{Kind: "from", Referent: "public.orders"}}, invoices.DependsOn)

	totals := byID["public.order_totals/matereialized"]
	assert.Equal(t, core.KindMaterializedView, totals.Object.Kind)
	assert.Len(t, totals.DependsOn, 2)

	empty := byID["public.empty/view"]
	assert.Empty(t, empty.DependsOn)
}

func TestObjectFromPath(t *testing.T) {
	tests := []struct {
		rel  string
		want core.SchemaObject
		ok   bool
	}{
		{"foo.view.sql", core.SchemaObject{Schema: "public", Name: "foo", Kind: core.KindView}, true},
		{"billing/bar.func.sql", core.SchemaObject{Schema: "billing", Name: "bar", Kind: core.KindFunction}, true},
		{"my.dotted.matereialized.sql", core.SchemaObject{Schema: "public", Name: "my.dotted", Kind: core.KindMaterializedView}, true},
		{"notes.sql", core.SchemaObject{}, false},
		{"foo.table.sql", core.SchemaObject{}, false},
		{"foo.view.txt", core.SchemaObject{}, false},
		{"a/b/foo.view.sql", core.SchemaObject{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			got, ok := objectFromPath(tt.rel, "public")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildGraph(t *testing.T) {
	root := exportFixture(t)
	entries, err := ReadTree(root, "public")
	require.NoError(t, err)

	g, err := BuildGraph(entries, "public")
	require.NoError(t, err)

	assert.Equal(t, 4, g.NodeCount())
	assert.Equal(t, []string{"public.orders"}, g.GetParents("billing.invoices"))
	assert.Equal(t, []string{"billing.invoices", "public.orders"}, g.GetParents("public.order_totals"))
	assert.Empty(t, g.GetParents("public.orders"), "raw_orders is not exported")

	levels, err := g.GetExecutionLevels()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"public.empty", "public.orders"},
		{"billing.invoices"},
		{"public.order_totals"},
	}, levels)
}

func TestBuildGraph_Cycle(t *testing.T) {
	entries := []TreeEntry{
		{
			Object:    core.SchemaObject{Schema: "public", Name: "a", Kind: core.KindView},
			DependsOn: []core.DependencyReference{{Kind: "from", Referent: "b"}},
		},
		{
			Object:    core.SchemaObject{Schema: "public", Name: "b", Kind: core.KindView},
			DependsOn: []core.DependencyReference{{Kind: "from", Referent: "public.a"}, {Kind: "from", Referent: "a"}},
		},
	}

	g, err := BuildGraph(entries, "public")
	require.NoError(t, err)
	assert.Equal(t, 2, g.EdgeCount())

	_, err = g.GetExecutionLevels()
	require.Error(t, err)
}
