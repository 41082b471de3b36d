package export

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dbexport/internal/testutil"
	"github.com/leapstack-labs/dbexport/pkg/core"
)

// memFS records writes and fails the ones listed in fail.
type memFS struct {
	dirs   []string
	files  map[string]string
	order  []string
	fail   map[string]error
	mkdirs error
}

func newMemFS() *memFS {
	return &memFS{files: make(map[string]string), fail: make(map[string]error)}
}

func (m *memFS) MkdirAll(path string, _ fs.FileMode) error {
	if m.mkdirs != nil {
		return m.mkdirs
	}
	m.dirs = append(m.dirs, path)
	return nil
}

func (m *memFS) WriteFile(name string, data []byte, _ fs.FileMode) error {
	if err := m.fail[name]; err != nil {
		return err
	}
	m.files[name] = string(data)
	m.order = append(m.order, name)
	return nil
}

func obj(schema, name string, kind core.ObjectKind, source *string, language string) core.SchemaObject {
	return core.SchemaObject{Schema: schema, Name: name, Kind: kind, Source: source, Language: language}
}

func TestObjectPath(t *testing.T) {
	tests := []struct {
		name     string
		obj      core.SchemaObject
		expected string
	}{
		{"default schema view", obj("public", "foo", core.KindView, nil, "sql"), "db/app/foo.view.sql"},
		{"other schema function", obj("billing", "bar", core.KindFunction, nil, "sql"), "db/app/billing/bar.func.sql"},
		{"materialized view", obj("static", "totals", core.KindMaterializedView, nil, "sql"), "db/app/static/totals.matereialized.sql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ObjectPath("db/app", "public", tt.obj))
		})
	}
}

func TestPipeline_Record(t *testing.T) {
	p := New(Options{})

	tests := []struct {
		name        string
		obj         core.SchemaObject
		builtin     bool
		wantContent string
	}{
		{
			name:    "absent source is builtin",
			obj:     obj("public", "abs", core.KindFunction, nil, "sql"),
			builtin: true,
		},
		{
			name:    "c language is builtin",
			obj:     obj("public", "crypt", core.KindFunction, core.StringPtr("crypt"), "c"),
			builtin: true,
		},
		{
			name:    "internal language is builtin",
			obj:     obj("public", "now", core.KindFunction, core.StringPtr("now"), "internal"),
			builtin: true,
		},
		{
			name:        "empty source is exported as an empty file",
			obj:         obj("public", "empty", core.KindView, core.StringPtr(""), "sql"),
			wantContent: "",
		},
		{
			name: "view gets a manifest header",
			obj:  obj("public", "v", core.KindView, core.StringPtr("SELECT * FROM foo JOIN bar"), "sql"),
			wantContent: "/*\ndef {\n  depends_on = [\n" +
				"        \"from.foo\",\n    \"join.bar\"" +
				"\n  ]\n}\n*/\nSELECT * FROM foo JOIN bar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := p.Record(tt.obj)
			assert.Equal(t, tt.builtin, rec.Builtin)
			assert.Equal(t, tt.wantContent, rec.Content)
			assert.Equal(t, ObjectPath(DefaultRoot, DefaultSchema, tt.obj), rec.Path)
		})
	}
}

func TestPipeline_Plan_Order(t *testing.T) {
	schema := core.Schema{Name: "public"}
	schema.Add(obj("public", "f1", core.KindFunction, core.StringPtr("SELECT 1"), "sql"))
	schema.Add(obj("public", "m1", core.KindMaterializedView, core.StringPtr("SELECT 1"), "sql"))
	schema.Add(obj("public", "v2", core.KindView, core.StringPtr("SELECT 1"), "sql"))
	schema.Add(obj("public", "v1", core.KindView, core.StringPtr("SELECT 1"), "sql"))

	records := New(Options{}).Plan(schema)
	var names []string
	for _, r := range records {
		names = append(names, r.Object.Name)
	}
	assert.Equal(t, []string{"v2", "v1", "m1", "f1"}, names)
}

func testSnapshot() *core.Snapshot {
	public := core.Schema{Name: "public"}
	public.Add(obj("public", "orders_view", core.KindView, core.StringPtr("SELECT * FROM orders"), "sql"))
	public.Add(obj("public", "abs", core.KindFunction, nil, "internal"))
	public.Add(obj("public", "total", core.KindFunction, core.StringPtr("RETURNS numeric"), "sql"))

	security := core.Schema{Name: "security"}
	security.Add(obj("security", "users", core.KindView, core.StringPtr("SELECT * FROM auth.users"), "sql"))

	// snapshot order differs from the allow-list order on purpose
	return &core.Snapshot{Schemas: []core.Schema{public, security}}
}

func TestPipeline_Run(t *testing.T) {
	mfs := newMemFS()
	var out bytes.Buffer

	p := New(Options{FS: mfs, Out: &out, Logger: testutil.NewTestLogger(t)})
	report, err := p.Run(testSnapshot())
	require.NoError(t, err)

	assert.Equal(t, []string{"security", "public"}, report.Schemas)
	assert.Equal(t, []string{
		"db/app/security/users.view.sql",
		"db/app/orders_view.view.sql",
		"db/app/total.func.sql",
	}, report.Written)
	assert.Equal(t, 1, report.Builtin)
	assert.Equal(t, report.Written, mfs.order)
	assert.NotContains(t, mfs.files, "db/app/abs.func.sql")

	assert.Equal(t, "Exporting schema security...\n"+
		"   [1] writing db/app/security/users.view.sql\n"+
		"Exporting schema public...\n"+
		"   [2] writing db/app/orders_view.view.sql\n"+
		"   [3] writing db/app/total.func.sql\n", out.String())

	assert.Contains(t, mfs.dirs, "db/app/security")
	assert.Contains(t, mfs.dirs, "db/app")
}

func TestPipeline_Run_WriteFailure(t *testing.T) {
	public := core.Schema{Name: "public"}
	public.Add(obj("public", "a", core.KindView, core.StringPtr("SELECT 1"), "sql"))
	public.Add(obj("public", "b", core.KindView, core.StringPtr("SELECT 2"), "sql"))
	public.Add(obj("public", "c", core.KindView, core.StringPtr("SELECT 3"), "sql"))
	static := core.Schema{Name: "static"}
	static.Add(obj("static", "d", core.KindView, core.StringPtr("SELECT 4"), "sql"))

	mfs := newMemFS()
	mfs.fail["db/app/b.view.sql"] = os.ErrPermission

	p := New(Options{Schemas: []string{"public", "static"}, FS: mfs})
	report, err := p.Run(&core.Snapshot{Schemas: []core.Schema{public, static}})
	require.Error(t, err)

	// the rest of the failing schema is still attempted, the next schema is not
	assert.Equal(t, []string{"db/app/a.view.sql", "db/app/c.view.sql"}, report.Written)
	assert.Equal(t, []string{"public"}, report.Schemas)
	assert.NotContains(t, mfs.files, "db/app/static/d.view.sql")

	var werr *WriteError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, "db/app/b.view.sql", werr.Path)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Contains(t, err.Error(), "export of schema public failed")
}

func TestPipeline_Run_MkdirFailure(t *testing.T) {
	mfs := newMemFS()
	mfs.mkdirs = errors.New("read-only file system")

	report, err := New(Options{FS: mfs}).Run(testSnapshot())
	require.Error(t, err)
	assert.Empty(t, report.Written)
	assert.Empty(t, mfs.files)
}

func TestPipeline_Run_SkipsMissingSchemas(t *testing.T) {
	report, err := New(Options{Schemas: []string{"nope"}, FS: newMemFS()}).Run(testSnapshot())
	require.NoError(t, err)
	assert.Empty(t, report.Schemas)
	assert.Empty(t, report.Written)
}

func TestPipeline_Run_OnDisk_Idempotent(t *testing.T) {
	root := filepath.Join(t.TempDir(), "db", "app")
	p := New(Options{Root: root})

	first, err := p.Run(testSnapshot())
	require.NoError(t, err)
	require.Len(t, first.Written, 3)

	contents := make(map[string][]byte)
	for _, path := range first.Written {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		contents[path] = data
	}

	second, err := p.Run(testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, first.Written, second.Written)

	for _, path := range second.Written {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, contents[path], data, "re-export changed %s", path)
	}

	data, err := os.ReadFile(filepath.Join(root, "total.func.sql"))
	require.NoError(t, err)
	assert.Equal(t, "/*\ndef {\n  depends_on = [\n        \"type.numeric\"\n  ]\n}\n*/\nRETURNS numeric", string(data))
}

func TestPipeline_Run_OverloadedFunctionsShareAPath(t *testing.T) {
	public := core.Schema{Name: "public"}
	public.Add(obj("public", "area", core.KindFunction, core.StringPtr("SELECT 1 -- circle"), "sql"))
	public.Add(obj("public", "area", core.KindFunction, core.StringPtr("SELECT 2 -- square"), "sql"))

	logger, rec := testutil.NewRecordingLogger(t)
	mfs := newMemFS()
	report, err := New(Options{Schemas: []string{"public"}, FS: mfs, Logger: logger}).
		Run(&core.Snapshot{Schemas: []core.Schema{public}})
	require.NoError(t, err)

	assert.Len(t, report.Written, 2)
	assert.Contains(t, mfs.files["db/app/area.func.sql"], "square", "the last overload wins")
	assert.Equal(t, []string{"path written twice in one run"}, rec.Messages(slog.LevelWarn))
}
