package catalog

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dbexport/pkg/core"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		url      string
		wantType string
		wantDSN  string
	}{
		{"postgres://user:pw@localhost:5432/app", "postgres", "postgres://user:pw@localhost:5432/app"},
		{"postgresql://localhost/app?sslmode=disable", "postgres", "postgresql://localhost/app?sslmode=disable"},
		{"POSTGRES://localhost/app", "postgres", "POSTGRES://localhost/app"},
		{"duckdb:///var/data/app.duckdb", "duckdb", "/var/data/app.duckdb"},
		{"duckdb://", "duckdb", ""},
		{"sqlite:///tmp/app.db", "sqlite", "/tmp/app.db"},
		{"sqlite://:memory:", "sqlite", ":memory:"},
		{"file:app.db?mode=ro", "sqlite", "file:app.db?mode=ro"},
		{"mysql://root@localhost/app", "mysql", "mysql://root@localhost/app"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			cfg, err := ParseURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, cfg.Type)
			assert.Equal(t, tt.wantDSN, cfg.DSN)
		})
	}
}

func TestParseURL_NoScheme(t *testing.T) {
	_, err := ParseURL("localhost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scheme")
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "postgres://app:xxxxx@db:5432/app", Redact("postgres://app:secret@db:5432/app"))
	assert.Equal(t, "postgres://db/app", Redact("postgres://db/app"))
	assert.Equal(t, "sqlite:///tmp/x.db", Redact("sqlite:///tmp/x.db"))
}

type stubProvider struct{}

func (stubProvider) Connect(context.Context, Config) error { return nil }
func (stubProvider) Close() error                          { return nil }
func (stubProvider) DialectName() string                   { return "stub" }
func (stubProvider) Snapshot(context.Context, []string) (*core.Snapshot, error) {
	return &core.Snapshot{}, nil
}

func TestRegistry(t *testing.T) {
	Register("stub", func(*slog.Logger) Provider { return stubProvider{} })

	assert.True(t, IsRegistered("stub"))
	assert.Contains(t, ListProviders(), "stub")

	p, err := NewProvider(Config{Type: "stub"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "stub", p.DialectName())
}

func TestNewProvider_Errors(t *testing.T) {
	_, err := NewProvider(Config{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not specified")

	_, err = NewProvider(Config{Type: "oracle"}, nil)
	require.Error(t, err)

	var unknown *UnknownProviderError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "oracle", unknown.Type)
	assert.Contains(t, err.Error(), "DB_URL")
}

func TestNewObject(t *testing.T) {
	tests := []struct {
		name     string
		schema   string
		objName  string
		kind     core.ObjectKind
		source   sql.NullString
		language string
		fields   []string
	}{
		{
			name:     "valid view",
			schema:   "public",
			objName:  "v",
			kind:     core.KindView,
			source:   sql.NullString{String: "SELECT 1", Valid: true},
			language: "sql",
		},
		{
			name:     "null source is allowed",
			schema:   "public",
			objName:  "abs",
			kind:     core.KindFunction,
			language: "internal",
		},
		{
			name:     "missing schema and name",
			kind:     core.KindView,
			language: "sql",
			fields:   []string{"schema", "name"},
		},
		{
			name:    "missing language",
			schema:  "public",
			objName: "f",
			kind:    core.KindFunction,
			fields:  []string{"language"},
		},
		{
			name:     "unknown kind",
			schema:   "public",
			objName:  "t",
			kind:     core.ObjectKind(9),
			language: "sql",
			fields:   []string{"kind"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := NewObject(tt.schema, tt.objName, tt.kind, tt.source, tt.language)
			if len(tt.fields) == 0 {
				require.NoError(t, err)
				assert.Equal(t, tt.objName, obj.Name)
				assert.Equal(t, tt.source.Valid, obj.Source != nil)
				return
			}

			var invalid *InvalidObjectError
			require.True(t, errors.As(err, &invalid), "expected InvalidObjectError, got %v", err)
			assert.Equal(t, tt.fields, invalid.Fields)
		})
	}
}
