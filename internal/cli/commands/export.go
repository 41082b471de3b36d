package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dbexport/internal/export"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export views, materialized views and functions to SQL files",
		Long: `Read every view, materialized view and function of the allow-listed
schemas and write each one to its own file under the output directory.

Each file starts with a header listing the objects its source appears to
depend on. Builtin objects (no source, or written in C or internal) are
skipped. Existing files are overwritten.

The connection string is read from DB_URL (or database_url in dbexport.yaml).`,
		Example: `  # Export using DB_URL
  DB_URL=postgres://app@localhost/app dbexport export

  # Export a DuckDB file
  DB_URL=duckdb:///var/data/app.duckdb dbexport export --schemas main`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd)
		},
	}
}

type exportSummary struct {
	Schemas []string `json:"schemas"`
	Written []string `json:"written"`
	Builtin int      `json:"builtin_skipped"`
}

func runExport(cmd *cobra.Command) error {
	c := NewCommandContext(cmd)
	if err := c.Cfg.RequireDatabaseURL(); err != nil {
		return err
	}

	// keep stdout clean for the JSON summary
	progress := c.Out
	if c.JSON() {
		progress = c.ErrOut
	}

	snap, err := c.Snapshot(cmd.Context(), progress)
	if err != nil {
		return err
	}

	pipeline := export.New(export.Options{
		Root:          c.Cfg.OutputDir,
		DefaultSchema: c.Cfg.DefaultSchema,
		Schemas:       c.Cfg.Schemas,
		Out:           progress,
		Logger:        c.Logger,
	})

	report, err := pipeline.Run(snap)
	if err != nil {
		return err
	}

	if c.JSON() {
		return writeJSON(c.Out, exportSummary{
			Schemas: nonNil(report.Schemas),
			Written: nonNil(report.Written),
			Builtin: report.Builtin,
		})
	}
	_, _ = fmt.Fprintf(c.Out, "Exported %d objects from %d schemas to %s (%d builtin skipped)\n",
		len(report.Written), len(report.Schemas), c.Cfg.OutputDir, report.Builtin)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
