// Package querybuilder assembles the few SQL shapes the postgres document
// store issues: filtered selects, upserting inserts, and JSONB-merging
// updates. Fragments carry ? placeholders; ToSQL numbers them into pq's $n
// form in one pass.
package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// Condition is one WHERE fragment with its arguments.
type Condition struct {
	expr string
	args []any
}

func Eq(column string, value any) Condition {
	return Condition{expr: column + " = ?", args: []any{value}}
}

// Expr covers conditions the helpers do not, such as JSONB field extraction.
// Each ? in expr consumes one of args.
func Expr(expr string, args ...any) Condition {
	return Condition{expr: expr, args: args}
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select needs columns")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select needs a table")
	}

	var buf strings.Builder
	var args []any
	buf.WriteString("SELECT ")
	buf.WriteString(strings.Join(b.columns, ", "))
	buf.WriteString(" FROM ")
	buf.WriteString(b.table)
	writeWhere(&buf, &args, b.where)
	if len(b.orderBy) > 0 {
		buf.WriteString(" ORDER BY ")
		buf.WriteString(strings.Join(b.orderBy, ", "))
	}

	return numberPlaceholders(buf.String(), args)
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Suffix appends raw SQL after the VALUES list, typically an ON CONFLICT
// clause.
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert needs a table")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert needs columns")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert needs values")
	}

	var buf strings.Builder
	args := make([]any, 0, len(b.rows)*len(b.columns))
	buf.WriteString("INSERT INTO ")
	buf.WriteString(b.table)
	buf.WriteString(" (")
	buf.WriteString(strings.Join(b.columns, ", "))
	buf.WriteString(") VALUES ")

	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values for %d columns", i, len(row), len(b.columns))
		}
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("(?")
		buf.WriteString(strings.Repeat(", ?", len(row)-1))
		buf.WriteString(")")
		args = append(args, row...)
	}

	if b.suffix != "" {
		buf.WriteString(" ")
		buf.WriteString(b.suffix)
	}

	return numberPlaceholders(buf.String(), args)
}

type UpdateBuilder struct {
	table string
	sets  []Condition
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, Eq(column, value))
	return b
}

// SetExpr assigns column from a SQL expression, as in
// SetExpr("fields", "fields || ?::jsonb", payload).
func (b *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, Condition{expr: column + " = " + expr, args: args})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update needs a table")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update needs set clauses")
	}

	var buf strings.Builder
	var args []any
	buf.WriteString("UPDATE ")
	buf.WriteString(b.table)
	buf.WriteString(" SET ")
	for i, s := range b.sets {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(s.expr)
		args = append(args, s.args...)
	}
	writeWhere(&buf, &args, b.where)

	return numberPlaceholders(buf.String(), args)
}

func writeWhere(buf *strings.Builder, args *[]any, conditions []Condition) {
	for i, c := range conditions {
		if i == 0 {
			buf.WriteString(" WHERE ")
		} else {
			buf.WriteString(" AND ")
		}
		buf.WriteString(c.expr)
		*args = append(*args, c.args...)
	}
}

// numberPlaceholders rewrites every ? into $1..$n and checks the count
// against the collected arguments.
func numberPlaceholders(sql string, args []any) (string, []any, error) {
	var out strings.Builder
	out.Grow(len(sql))
	n := 0
	for i := 0; i < len(sql); i++ {
		if sql[i] != '?' {
			out.WriteByte(sql[i])
			continue
		}
		n++
		out.WriteByte('$')
		out.WriteString(strconv.Itoa(n))
	}
	if n != len(args) {
		return "", nil, fmt.Errorf("%d placeholders for %d arguments", n, len(args))
	}
	return out.String(), args, nil
}
