package query_test

import (
	"testing"
	"time"

	"github.com/JaimeStill/pestilab/pkg/query"
)

func exportsProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "exports", "e").
		Project("id", "id").
		Project("format", "format").
		Project("filename", "filename").
		Project("created_at", "created_at")
}

func ptr(s string) *string { return &s }

func TestProjectionMap(t *testing.T) {
	p := exportsProjection()

	if got, want := p.From(), "public.exports e"; got != want {
		t.Errorf("From() = %q, want %q", got, want)
	}
	if got, want := p.Columns(), "e.id, e.format, e.filename, e.created_at"; got != want {
		t.Errorf("Columns() = %q, want %q", got, want)
	}
	if got := p.Column("unknown"); got != "unknown" {
		t.Errorf("Column(unknown) = %q, want passthrough", got)
	}
	if p.Known("unknown") {
		t.Error("Known(unknown) = true")
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []query.SortField
	}{
		{"empty", "", nil},
		{"single asc", "filename", []query.SortField{{Field: "filename"}}},
		{"single desc", "-created_at", []query.SortField{{Field: "created_at", Descending: true}}},
		{"mixed with spaces", " format , -created_at ,", []query.SortField{
			{Field: "format"},
			{Field: "created_at", Descending: true},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := query.ParseSortFields(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuildCountNumbersParameters(t *testing.T) {
	b := query.NewBuilder(exportsProjection()).
		WhereEquals("format", "pdf").
		WhereSearch(ptr("Labels"), "filename", "format")

	sql, args := b.BuildCount()
	want := "SELECT COUNT(*) FROM public.exports e WHERE e.format = $1 AND (e.filename ILIKE $2 OR e.format ILIKE $3)"
	if sql != want {
		t.Errorf("sql = %q\nwant  %q", sql, want)
	}
	if len(args) != 3 || args[0] != "pdf" || args[1] != "%Labels%" {
		t.Errorf("args = %v", args)
	}
}

func TestNilConditionsIgnored(t *testing.T) {
	var format *string
	b := query.NewBuilder(exportsProjection()).
		WhereEquals("format", format).
		WhereSearch(nil, "filename").
		WhereSearch(ptr(""), "filename").
		WhereBetween("created_at", nil, nil)

	sql, args := b.BuildCount()
	if sql != "SELECT COUNT(*) FROM public.exports e" {
		t.Errorf("sql = %q", sql)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestBuildPage(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := query.NewBuilder(exportsProjection(), query.SortField{Field: "created_at", Descending: true}).
		WhereBetween("created_at", &from, nil)

	sql, args := b.BuildPage(3, 20)
	want := "SELECT e.id, e.format, e.filename, e.created_at FROM public.exports e WHERE e.created_at >= $1 ORDER BY e.created_at DESC LIMIT 20 OFFSET 40"
	if sql != want {
		t.Errorf("sql = %q\nwant  %q", sql, want)
	}
	if len(args) != 1 {
		t.Errorf("args = %v", args)
	}
}

func TestOrderByFieldsDropsUnknown(t *testing.T) {
	b := query.NewBuilder(exportsProjection(), query.SortField{Field: "created_at", Descending: true}).
		OrderByFields([]query.SortField{{Field: "filename"}, {Field: "password"}})

	sql, _ := b.BuildPage(1, 10)
	want := "SELECT e.id, e.format, e.filename, e.created_at FROM public.exports e ORDER BY e.filename ASC LIMIT 10 OFFSET 0"
	if sql != want {
		t.Errorf("sql = %q\nwant  %q", sql, want)
	}
}

func TestBuildSingle(t *testing.T) {
	sql, args := query.NewBuilder(exportsProjection()).BuildSingle("id", "abc")
	want := "SELECT e.id, e.format, e.filename, e.created_at FROM public.exports e WHERE e.id = $1"
	if sql != want {
		t.Errorf("sql = %q", sql)
	}
	if len(args) != 1 || args[0] != "abc" {
		t.Errorf("args = %v", args)
	}
}

func TestSQLiteDialect(t *testing.T) {
	p := query.NewProjectionMap("main", "exports", "e").
		Project("id", "id").
		Project("filename", "filename")

	b := query.NewBuilder(p).
		WithDialect(query.SQLite).
		WhereEquals("id", "x").
		WhereSearch(ptr("lab"), "filename")

	sql, _ := b.BuildCount()
	want := "SELECT COUNT(*) FROM main.exports e WHERE e.id = ?1 AND (e.filename LIKE ?2)"
	if sql != want {
		t.Errorf("sql = %q\nwant  %q", sql, want)
	}

	single, _ := query.NewBuilder(p).WithDialect(query.SQLite).BuildSingle("id", "x")
	if single != "SELECT e.id, e.filename FROM main.exports e WHERE e.id = ?1" {
		t.Errorf("single = %q", single)
	}
}
