// Package export turns a catalog snapshot into annotated source files.
package export

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/leapstack-labs/dbexport/pkg/core"
	"github.com/leapstack-labs/dbexport/pkg/manifest"
)

// Defaults used when Options leaves a field empty.
const (
	DefaultRoot   = "db/app"
	DefaultSchema = "public"
)

// DefaultSchemas is the schema allow-list used when none is configured.
var DefaultSchemas = []string{"static", "security", "public"}

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Options configures a Pipeline.
type Options struct {
	Root          string   // output directory, DefaultRoot if empty
	DefaultSchema string   // schema written directly under Root
	Schemas       []string // allow-list, in processing order
	FS            FileSystem
	Out           io.Writer // progress lines
	Logger        *slog.Logger
}

// Pipeline writes the exportable objects of a snapshot to disk.
type Pipeline struct {
	opts   Options
	logger *slog.Logger
}

// New creates a pipeline, filling unset options with defaults.
func New(opts Options) *Pipeline {
	if opts.Root == "" {
		opts.Root = DefaultRoot
	}
	if opts.DefaultSchema == "" {
		opts.DefaultSchema = DefaultSchema
	}
	if len(opts.Schemas) == 0 {
		opts.Schemas = DefaultSchemas
	}
	if opts.FS == nil {
		opts.FS = OSFileSystem{}
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{opts: opts, logger: logger}
}

// Report summarises a run.
type Report struct {
	Schemas []string // schemas processed, in order
	Written []string // paths written, in order
	Builtin int      // objects skipped as builtin
}

// WriteError is returned when an exported file could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Record classifies obj and, unless it is builtin, renders its annotated source.
func (p *Pipeline) Record(obj core.SchemaObject) core.ExportRecord {
	rec := core.ExportRecord{
		Object:  obj,
		Path:    ObjectPath(p.opts.Root, p.opts.DefaultSchema, obj),
		Builtin: obj.IsBuiltin(),
	}
	if !rec.Builtin {
		rec.Content = manifest.Annotate(obj.Source)
	}
	return rec
}

// Plan returns the records of a schema: views, then materialized views,
// then functions, each in catalog order.
func (p *Pipeline) Plan(schema core.Schema) []core.ExportRecord {
	records := make([]core.ExportRecord, 0, schema.Len())
	for _, kind := range core.ObjectKinds() {
		for _, obj := range schema.Objects(kind) {
			records = append(records, p.Record(obj))
		}
	}
	return records
}

// Run exports every allow-listed schema present in snap.
//
// A failed write does not stop the rest of its schema. Failures of a schema
// are returned together and no later schema is processed; files already
// written are left in place.
func (p *Pipeline) Run(snap *core.Snapshot) (*Report, error) {
	report := &Report{}

	for _, name := range p.opts.Schemas {
		schema, ok := snap.Schema(name)
		if !ok {
			p.logger.Debug("schema not in snapshot", slog.String("schema", name))
			continue
		}

		_, _ = fmt.Fprintf(p.opts.Out, "Exporting schema %s...\n", name)
		report.Schemas = append(report.Schemas, name)

		if err := p.runSchema(schema, report); err != nil {
			return report, fmt.Errorf("export of schema %s failed: %w", name, err)
		}
	}

	p.logger.Info("export completed",
		slog.Int("schemas", len(report.Schemas)),
		slog.Int("written", len(report.Written)),
		slog.Int("builtin", report.Builtin))
	return report, nil
}

func (p *Pipeline) runSchema(schema core.Schema, report *Report) error {
	var errs []error
	seen := make(map[string]string)

	for _, rec := range p.Plan(schema) {
		if rec.Builtin {
			report.Builtin++
			continue
		}

		// Overloaded functions share a path; the last one read wins.
		if prev, dup := seen[rec.Path]; dup {
			p.logger.Warn("path written twice in one run",
				slog.String("path", rec.Path),
				slog.String("previous", prev),
				slog.String("object", rec.Object.ID()))
		}
		seen[rec.Path] = rec.Object.ID()

		if err := p.write(rec); err != nil {
			p.logger.Error("write failed", slog.String("path", rec.Path), slog.String("error", err.Error()))
			errs = append(errs, err)
			continue
		}

		report.Written = append(report.Written, rec.Path)
		_, _ = fmt.Fprintf(p.opts.Out, "   [%d] writing %s\n", len(report.Written), rec.Path)
	}

	return errors.Join(errs...)
}

func (p *Pipeline) write(rec core.ExportRecord) error {
	if err := p.opts.FS.MkdirAll(filepath.Dir(rec.Path), dirPerm); err != nil {
		return &WriteError{Path: rec.Path, Err: err}
	}
	if err := p.opts.FS.WriteFile(rec.Path, []byte(rec.Content), filePerm); err != nil {
		return &WriteError{Path: rec.Path, Err: err}
	}
	return nil
}
