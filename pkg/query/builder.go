package query

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

const slot = "$%d"

type condition struct {
	clause string
	args   []any
}

// SortField is a single ORDER BY entry keyed by view field name.
type SortField struct {
	Field      string
	Descending bool
}

// Builder accumulates WHERE conditions and renders numbered-parameter SQL.
type Builder struct {
	dialect     Dialect
	projection  *ProjectionMap
	conditions  []condition
	sort        []SortField
	defaultSort []SortField
}

// NewBuilder creates a Builder for projection with an optional default sort.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		dialect:     Postgres,
		projection:  projection,
		defaultSort: defaultSort,
	}
}

// WithDialect switches parameter and operator rendering to d.
func (b *Builder) WithDialect(d Dialect) *Builder {
	b.dialect = d
	return b
}

// ParseSortFields parses "name,-created_at" into sort fields. A leading "-"
// means descending.
func ParseSortFields(s string) []SortField {
	if s == "" {
		return nil
	}

	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, desc := strings.CutPrefix(part, "-")
		fields = append(fields, SortField{Field: name, Descending: desc})
	}
	return fields
}

// BuildCount renders a COUNT(*) over the current conditions.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.where()
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", b.projection.From(), where), args
}

// BuildPage renders an ordered SELECT with LIMIT and OFFSET for a 1-based page.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	where, args := b.where()
	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s LIMIT %d OFFSET %d",
		b.projection.Columns(),
		b.projection.From(),
		where,
		b.orderBy(),
		pageSize,
		(page-1)*pageSize,
	)
	return sql, args
}

// BuildSingle renders a SELECT for the row whose idField equals id.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = %s",
		b.projection.Columns(),
		b.projection.From(),
		b.projection.Column(idField),
		b.dialect.Param(1),
	)
	return sql, []any{id}
}

// OrderByFields overrides the default sort. Fields that are not projected
// are dropped.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.sort = b.sort[:0]
	for _, f := range fields {
		if b.projection.Known(f.Field) {
			b.sort = append(b.sort, f)
		}
	}
	return b
}

// WhereEquals adds field = value. Nil values are ignored.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	b.add(fmt.Sprintf("%s = %s", b.projection.Column(field), slot), value)
	return b
}

// WhereSearch adds an ILIKE match across fields joined by OR. Nil or empty
// search is ignored.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}

	pattern := "%" + *search + "%"
	clauses := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, field := range fields {
		clauses[i] = fmt.Sprintf("%s %s %s", b.projection.Column(field), b.dialect.Like, slot)
		args[i] = pattern
	}

	b.add("("+strings.Join(clauses, " OR ")+")", args...)
	return b
}

// WhereBetween bounds field by an inclusive lower and exclusive upper time.
// Either bound may be nil.
func (b *Builder) WhereBetween(field string, from, to *time.Time) *Builder {
	col := b.projection.Column(field)
	if from != nil {
		b.add(fmt.Sprintf("%s >= %s", col, slot), *from)
	}
	if to != nil {
		b.add(fmt.Sprintf("%s < %s", col, slot), *to)
	}
	return b
}

func (b *Builder) add(clause string, args ...any) {
	b.conditions = append(b.conditions, condition{clause: clause, args: args})
}

func (b *Builder) orderBy() string {
	fields := b.sort
	if len(fields) == 0 {
		fields = b.defaultSort
	}
	if len(fields) == 0 {
		return ""
	}

	parts := make([]string, len(fields))
	for i, f := range fields {
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		parts[i] = b.projection.Column(f.Field) + " " + dir
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func (b *Builder) where() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	var args []any
	clauses := make([]string, len(b.conditions))
	for i, cond := range b.conditions {
		clause := cond.clause
		for _, arg := range cond.args {
			args = append(args, arg)
			clause = strings.Replace(clause, slot, b.dialect.Param(len(args)), 1)
		}
		clauses[i] = clause
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}
