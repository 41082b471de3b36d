// Package sqlite reads views from a SQLite database.
//
// SQLite has neither materialized views nor SQL functions, and only the main
// schema is read.
package sqlite

import (
	"context"
	"log/slog"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/leapstack-labs/dbexport/pkg/catalog"
	"github.com/leapstack-labs/dbexport/pkg/core"
)

// Queries are the sqlite_master statements used for a snapshot.
var Queries = catalog.Queries{
	Schemas: `SELECT name FROM pragma_database_list WHERE name = 'main'`,
	Views: `
		SELECT name, sql, 'sql'
		FROM sqlite_master
		WHERE type = 'view' AND ? = 'main'
		ORDER BY name`,
}

// Provider implements catalog.Provider for SQLite.
type Provider struct {
	catalog.BaseSQLProvider
}

// New creates a new SQLite provider.
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
	return "sqlite"
}

// Connect opens the database file at cfg.DSN.
func (p *Provider) Connect(ctx context.Context, cfg catalog.Config) error {
	if cfg.DSN == "" {
		cfg.DSN = ":memory:"
	}
	p.Logger.Debug("connecting to sqlite", slog.String("path", cfg.DSN))
	return p.Open(ctx, "sqlite", cfg)
}

// Snapshot reads the main schema if it is allow-listed.
func (p *Provider) Snapshot(ctx context.Context, schemas []string) (*core.Snapshot, error) {
	return p.SnapshotWith(ctx, Queries, schemas)
}
