package exports

import (
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/pestilab/pkg/query"
	"github.com/JaimeStill/pestilab/pkg/repository"
)

// Record is an archived export file.
type Record struct {
	ID          uuid.UUID `json:"id"`
	Format      Format    `json:"format"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	PageCount   *int      `json:"page_count"`
	RowCount    int       `json:"row_count"`
	StorageKey  string    `json:"storage_key"`
	CreatedAt   time.Time `json:"created_at"`
}

func newProjection(schema string) *query.ProjectionMap {
	return query.
		NewProjectionMap(schema, "exports", "e").
		Project("id", "ID").
		Project("format", "Format").
		Project("filename", "Filename").
		Project("content_type", "ContentType").
		Project("size_bytes", "SizeBytes").
		Project("page_count", "PageCount").
		Project("row_count", "RowCount").
		Project("storage_key", "StorageKey").
		Project("created_at", "CreatedAt")
}

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters narrows archive listings. Nil fields are ignored.
type Filters struct {
	Format *string    `json:"format,omitempty"`
	From   *time.Time `json:"from,omitempty"`
	To     *time.Time `json:"to,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Format", f.Format).
		WhereBetween("CreatedAt", f.From, f.To)
}

// FiltersFromQuery reads format, from, and to (RFC 3339 or YYYY-MM-DD).
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("format"); s != "" {
		if format, err := ParseFormat(s); err == nil {
			v := string(format)
			f.Format = &v
		}
	}
	f.From = parseTime(values.Get("from"))
	f.To = parseTime(values.Get("to"))

	return f
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func scanRecord(s repository.Scanner) (Record, error) {
	var r Record
	err := s.Scan(
		&r.ID,
		&r.Format,
		&r.Filename,
		&r.ContentType,
		&r.SizeBytes,
		&r.PageCount,
		&r.RowCount,
		&r.StorageKey,
		&r.CreatedAt,
	)
	return r, err
}
