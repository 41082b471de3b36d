package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dbexport/internal/cli/config"
	"github.com/leapstack-labs/dbexport/pkg/catalog"
	"github.com/leapstack-labs/dbexport/pkg/core"

	// Register catalog providers
	_ "github.com/leapstack-labs/dbexport/pkg/catalog/duckdb"
	_ "github.com/leapstack-labs/dbexport/pkg/catalog/postgres"
	_ "github.com/leapstack-labs/dbexport/pkg/catalog/sqlite"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Out    io.Writer
	ErrOut io.Writer
}

// NewCommandContext collects the loaded config, the logger and the output
// streams of cmd.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Cfg:    getConfig(),
		Logger: config.GetLogger(cmd.Context()),
		Out:    cmd.OutOrStdout(),
		ErrOut: cmd.ErrOrStderr(),
	}
}

// JSON reports whether machine-readable output was requested.
func (c *CommandContext) JSON() bool {
	return c.Cfg.OutputFormat == config.OutputJSON
}

// Snapshot connects to the configured catalog, reads the allow-listed schemas
// and disconnects. The connection line goes to progress.
func (c *CommandContext) Snapshot(ctx context.Context, progress io.Writer) (*core.Snapshot, error) {
	cc, err := c.Cfg.CatalogConfig()
	if err != nil {
		return nil, err
	}

	provider, err := catalog.NewProvider(cc, c.Logger)
	if err != nil {
		return nil, err
	}

	_, _ = fmt.Fprintf(progress, "connecting to %s\n", catalog.Redact(c.Cfg.DatabaseURL))
	if err := provider.Connect(ctx, cc); err != nil {
		return nil, err
	}
	defer func() { _ = provider.Close() }()

	snap, err := provider.Snapshot(ctx, c.Cfg.Schemas)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c.Logger.Debug("catalog snapshot taken",
		slog.String("catalog", provider.DialectName()),
		slog.Int("schemas", len(snap.Schemas)),
		slog.Int("objects", snap.ObjectCount()))
	return snap, nil
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to
// defaults plus DB_URL.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		DatabaseURL:   os.Getenv(config.DatabaseURLEnv),
		Schemas:       config.DefaultSchemas(),
		OutputDir:     config.DefaultOutputDir,
		DefaultSchema: config.DefaultSchema,
		OutputFormat:  config.DefaultOutput,
	}
}
