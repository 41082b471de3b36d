// Package postgres reads views, materialized views and functions from a
// PostgreSQL catalog.
package postgres

import (
	"context"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/leapstack-labs/dbexport/pkg/catalog"
	"github.com/leapstack-labs/dbexport/pkg/core"
)

// Queries are the pg_catalog statements used for a snapshot.
// Only plain functions (prokind 'f') are read; procedures and aggregates are not.
var Queries = catalog.Queries{
	Schemas: `SELECT nspname FROM pg_catalog.pg_namespace`,
	Views: `
		SELECT c.relname, pg_catalog.pg_get_viewdef(c.oid, true), 'sql'
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind = 'v' AND n.nspname = $1
		ORDER BY c.relname`,
	MaterializedViews: `
		SELECT c.relname, pg_catalog.pg_get_viewdef(c.oid, true), 'sql'
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind = 'm' AND n.nspname = $1
		ORDER BY c.relname`,
	Functions: `
		SELECT p.proname, pg_catalog.pg_get_functiondef(p.oid), l.lanname
		FROM pg_catalog.pg_proc p
		JOIN pg_catalog.pg_namespace n ON n.oid = p.pronamespace
		JOIN pg_catalog.pg_language l ON l.oid = p.prolang
		WHERE p.prokind = 'f' AND n.nspname = $1
		ORDER BY p.proname, p.oid`,
}

// Provider implements catalog.Provider for PostgreSQL.
type Provider struct {
	catalog.BaseSQLProvider
}

// New creates a new PostgreSQL provider.
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
	return "postgres"
}

// Connect opens a pgx connection using cfg.DSN, a postgres:// URL or a
// key=value connection string.
func (p *Provider) Connect(ctx context.Context, cfg catalog.Config) error {
	p.Logger.Debug("connecting to postgres", slog.String("dsn", catalog.Redact(cfg.DSN)))
	return p.Open(ctx, "pgx", cfg)
}

// Snapshot reads the allow-listed schemas.
func (p *Provider) Snapshot(ctx context.Context, schemas []string) (*core.Snapshot, error) {
	return p.SnapshotWith(ctx, Queries, schemas)
}
