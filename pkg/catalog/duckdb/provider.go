// Package duckdb reads views and macros from a DuckDB catalog.
//
// DuckDB has no materialized views. Macros are exported as functions; macros
// shipped with DuckDB itself report the internal language and are skipped by
// the exporter.
package duckdb

import (
	"context"
	"log/slog"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/leapstack-labs/dbexport/pkg/catalog"
	"github.com/leapstack-labs/dbexport/pkg/core"
)

// Queries are the duckdb_* table function statements used for a snapshot.
var Queries = catalog.Queries{
	Schemas: `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE catalog_name = current_database()`,
	Views: `
		SELECT view_name, sql, 'sql'
		FROM duckdb_views()
		WHERE NOT internal
		  AND database_name = current_database()
		  AND schema_name = ?
		ORDER BY view_name`,
	Functions: `
		SELECT function_name, macro_definition,
		       CASE WHEN internal THEN 'internal' ELSE 'sql' END
		FROM duckdb_functions()
		WHERE function_type IN ('macro', 'table_macro')
		  AND database_name = current_database()
		  AND schema_name = ?
		ORDER BY function_name`,
}

// Provider implements catalog.Provider for DuckDB.
type Provider struct {
	catalog.BaseSQLProvider
}

// New creates a new DuckDB provider.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Provider{
		BaseSQLProvider: catalog.BaseSQLProvider{Logger: logger},
	}
}

// DialectName returns the registry name of this provider.
func (p *Provider) DialectName() string {
	return "duckdb"
}

// Connect opens the database file at cfg.DSN.
// Use ":memory:" (or an empty DSN) for an in-memory database.
func (p *Provider) Connect(ctx context.Context, cfg catalog.Config) error {
	if cfg.DSN == "" {
		cfg.DSN = ":memory:"
	}
	p.Logger.Debug("connecting to duckdb", slog.String("path", cfg.DSN))
	return p.Open(ctx, "duckdb", cfg)
}

// Snapshot reads the allow-listed schemas.
func (p *Provider) Snapshot(ctx context.Context, schemas []string) (*core.Snapshot, error) {
	return p.SnapshotWith(ctx, Queries, schemas)
}
