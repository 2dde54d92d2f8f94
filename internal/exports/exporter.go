package exports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/pestilab/internal/labels"
	"github.com/JaimeStill/pestilab/pkg/formatting"
)

// Options configures generated files.
type Options struct {
	// Title heads PDF and Word exports.
	Title string
	// Subject prefixes file names.
	Subject string
	// ChunkSize is the number of PDF rows per section.
	ChunkSize int
	// Concurrency bounds parallel generation in Bundle.
	Concurrency int
}

// DefaultOptions returns the standard export options.
func DefaultOptions() Options {
	return Options{
		Title:       "PestiLab – Labels Export",
		Subject:     "PestiLab_Labels",
		ChunkSize:   500,
		Concurrency: 2,
	}
}

// Exporter generates export files. It never modifies the rows it is given.
type Exporter struct {
	opts    Options
	today   func() string
	metrics *Metrics
	logger  *slog.Logger
}

// NewExporter creates an Exporter. today supplies the date used in file
// names.
func NewExporter(opts Options, today func() string, metrics *Metrics, logger *slog.Logger) *Exporter {
	def := DefaultOptions()
	if opts.Title == "" {
		opts.Title = def.Title
	}
	if opts.Subject == "" {
		opts.Subject = def.Subject
	}
	if opts.ChunkSize < 1 {
		opts.ChunkSize = def.ChunkSize
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = def.Concurrency
	}

	return &Exporter{
		opts:    opts,
		today:   today,
		metrics: metrics,
		logger:  logger.With("system", "exports"),
	}
}

// Export generates one file. Empty input fails with ErrEmptyRows; any
// failure while writing, including a panic, fails with ErrExportFailed and
// yields no artifact.
func (e *Exporter) Export(ctx context.Context, format Format, rows []labels.ExportRow) (artifact *Artifact, err error) {
	if len(rows) == 0 {
		e.metrics.observe(format, "empty", 0)
		return nil, ErrEmptyRows
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			artifact = nil
			err = e.fail(format, len(rows), fmt.Errorf("panic: %v", r))
		}
	}()

	var buf bytes.Buffer
	if err := e.write(&buf, format, rows); err != nil {
		return nil, e.fail(format, len(rows), err)
	}

	artifact = &Artifact{
		Format:      format,
		Filename:    FileName(e.opts.Subject, e.today(), format),
		ContentType: format.ContentType(),
		Rows:        len(rows),
		Data:        buf.Bytes(),
	}

	if format == FormatPDF {
		artifact.Sections = len(Chunk(rows, e.opts.ChunkSize))
		if n, err := api.PageCount(bytes.NewReader(artifact.Data), nil); err == nil {
			artifact.Pages = &n
		} else {
			e.logger.Warn("failed to count PDF pages", "error", err)
		}
	}

	e.metrics.observe(format, "ok", len(rows))
	e.logger.Info("export generated",
		"format", format,
		"filename", artifact.Filename,
		"rows", len(rows),
		"size", formatting.FormatBytes(int64(len(artifact.Data)), 1),
	)
	return artifact, nil
}

// Bundle generates several formats of the same rows concurrently. The
// result follows the order of formats with duplicates removed.
func (e *Exporter) Bundle(ctx context.Context, formats []Format, rows []labels.ExportRow) ([]*Artifact, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyRows
	}

	unique := make([]Format, 0, len(formats))
	seen := make(map[Format]bool, len(formats))
	for _, f := range formats {
		if !seen[f] {
			seen[f] = true
			unique = append(unique, f)
		}
	}

	out := make([]*Artifact, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for i, f := range unique {
		g.Go(func() error {
			a, err := e.Export(gctx, f, rows)
			if err != nil {
				return err
			}
			out[i] = a
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Exporter) write(w io.Writer, format Format, rows []labels.ExportRow) error {
	switch format {
	case FormatPDF:
		return WritePDF(w, rows, e.opts.Title, e.opts.ChunkSize)
	case FormatWord:
		return WriteWord(w, rows, e.opts.Title)
	case FormatZIP:
		return WriteZIP(w, rows)
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatXLSX:
		return WriteXLSX(w, rows)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func (e *Exporter) fail(format Format, rows int, cause error) error {
	e.metrics.observe(format, "failed", rows)
	e.logger.Error("export failed", "format", format, "rows", rows, "error", cause)
	return fmt.Errorf("%w: %s: %w", ErrExportFailed, format, cause)
}
