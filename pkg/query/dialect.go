package query

import "fmt"

// Dialect captures the SQL differences between supported databases.
type Dialect struct {
	Name string
	// Prefix precedes the 1-based parameter index ($1 or ?1).
	Prefix string
	// Like is the case-insensitive pattern operator.
	Like string
}

var (
	Postgres = Dialect{Name: "postgres", Prefix: "$", Like: "ILIKE"}
	SQLite   = Dialect{Name: "sqlite", Prefix: "?", Like: "LIKE"}
)

// Param renders the placeholder for parameter n.
func (d Dialect) Param(n int) string {
	return fmt.Sprintf("%s%d", d.Prefix, n)
}
