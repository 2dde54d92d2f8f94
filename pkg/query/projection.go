// Package query builds parameterized SELECT statements over a projected table.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps view field names to qualified columns (alias.column).
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	columns map[string]string
	order   []string
}

// NewProjectionMap creates a ProjectionMap for schema.table aliased as alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:  schema,
		table:   table,
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project maps column to the view field name.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := p.alias + "." + column
	p.columns[viewName] = qualified
	p.order = append(p.order, qualified)
	return p
}

// From returns the qualified table reference used in FROM clauses.
func (p *ProjectionMap) From() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Column returns the qualified column for viewName. Unknown names are
// returned unchanged.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.columns[viewName]; ok {
		return col
	}
	return viewName
}

// Known reports whether viewName was projected.
func (p *ProjectionMap) Known(viewName string) bool {
	_, ok := p.columns[viewName]
	return ok
}

// Columns returns the projected columns in declaration order.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.order, ", ")
}
