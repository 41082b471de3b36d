package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/dbexport/pkg/core"
)

// Queries are the catalog statements of one dialect.
//
// Schemas returns one column, the schema name. The object queries take the
// schema name as their only parameter and return name, source and language,
// ordered the way objects should be exported. An empty object query means the
// dialect has no objects of that kind.
type Queries struct {
	Schemas           string
	Views             string
	MaterializedViews string
	Functions         string
}

// forKind returns the object query for kind.
func (q Queries) forKind(kind core.ObjectKind) string {
	switch kind {
	case core.KindView:
		return q.Views
	case core.KindMaterializedView:
		return q.MaterializedViews
	case core.KindFunction:
		return q.Functions
	default:
		return ""
	}
}

// BaseSQLProvider provides the database/sql plumbing shared by providers.
// Embed it in concrete providers to get Close and the snapshot walk.
type BaseSQLProvider struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLProvider) Close() error {
	if b.DB != nil {
		b.logger().Debug("closing catalog connection")
		return b.DB.Close()
	}
	return nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLProvider) IsConnected() bool {
	return b.DB != nil
}

// Open opens driverName with the configured DSN and pings it.
func (b *BaseSQLProvider) Open(ctx context.Context, driverName string, cfg Config) error {
	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open %s connection: %w", cfg.Type, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping %s: %w", cfg.Type, err)
	}
	b.DB = db
	b.Cfg = cfg
	return nil
}

// SnapshotWith reads the allow-listed schemas using q.
// Schemas missing from the catalog are skipped; the snapshot keeps the
// allow-list order.
func (b *BaseSQLProvider) SnapshotWith(ctx context.Context, q Queries, schemas []string) (*core.Snapshot, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	present, err := b.schemaNames(ctx, q.Schemas)
	if err != nil {
		return nil, err
	}

	snap := &core.Snapshot{}
	for _, name := range schemas {
		if !present[name] {
			b.logger().Debug("schema not in catalog, skipping", slog.String("schema", name))
			continue
		}

		schema := core.Schema{Name: name}
		for _, kind := range core.ObjectKinds() {
			query := q.forKind(kind)
			if query == "" {
				continue
			}
			objects, err := b.objects(ctx, query, name, kind)
			if err != nil {
				return nil, err
			}
			for _, obj := range objects {
				schema.Add(obj)
			}
		}

		b.logger().Debug("read schema",
			slog.String("schema", name),
			slog.Int("views", len(schema.Views)),
			slog.Int("materialized_views", len(schema.MaterializedViews)),
			slog.Int("functions", len(schema.Functions)))
		snap.Schemas = append(snap.Schemas, schema)
	}
	return snap, nil
}

func (b *BaseSQLProvider) schemaNames(ctx context.Context, query string) (map[string]bool, error) {
	rows, err := b.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	defer func() { _ = rows.Close() }()

	names := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan schema name: %w", err)
		}
		names[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schemas: %w", err)
	}
	return names, nil
}

func (b *BaseSQLProvider) objects(ctx context.Context, query, schema string, kind core.ObjectKind) ([]core.SchemaObject, error) {
	rows, err := b.DB.QueryContext(ctx, query, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to query %ss in schema %s: %w", kind, schema, err)
	}
	defer func() { _ = rows.Close() }()

	var objects []core.SchemaObject
	for rows.Next() {
		var (
			name     string
			source   sql.NullString
			language string
		)
		if err := rows.Scan(&name, &source, &language); err != nil {
			return nil, fmt.Errorf("failed to scan %s in schema %s: %w", kind, schema, err)
		}
		obj, err := NewObject(schema, name, kind, source, language)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %ss in schema %s: %w", kind, schema, err)
	}
	return objects, nil
}

func (b *BaseSQLProvider) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}
