// Package paging builds the paginated, filterable list queries shared by
// every list endpoint: one WHERE clause, one argument list, a COUNT query and
// a page query that both reuse them.
package paging

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

// Params is a 1-based page request.
type Params struct {
	Page  int
	Limit int
}

// FromQuery reads page and limit through get (usually echo.Context.QueryParam).
// Missing or malformed values fall back to page 1 and defaultLimit; limit is
// clamped to [1, maxLimit].
func FromQuery(get func(string) string, defaultLimit, maxLimit int) Params {
	p := Params{Page: 1, Limit: defaultLimit}
	if v, err := strconv.Atoi(strings.TrimSpace(get("page"))); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(get("limit"))); err == nil && v > 0 {
		p.Limit = v
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Limit < 1 {
		p.Limit = 1
	}
	return p
}

// Offset returns the row offset of the first item on the page.
func (p Params) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta is the pagination block returned alongside every list.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewMeta computes page metadata for total matching rows.
func NewMeta(p Params, total int) Meta {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}

// Result is the list envelope: {items, pagination}.
type Result[T any] struct {
	Items      []T  `json:"items"`
	Pagination Meta `json:"pagination"`
}

// Empty returns a result with no items and zeroed totals.
func Empty[T any](p Params) Result[T] {
	return Result[T]{Items: []T{}, Pagination: NewMeta(p, 0)}
}

// Filter accumulates AND predicates and their positional arguments. The
// order of Where calls is the order of placeholders in the final SQL.
type Filter struct {
	preds []string
	args  []any
}

// Where appends pred (which may contain ? placeholders) and its args.
func (f *Filter) Where(pred string, args ...any) *Filter {
	f.preds = append(f.preds, pred)
	f.args = append(f.args, args...)
	return f
}

// WhereIf appends pred only when cond is true. An absent filter adds nothing.
func (f *Filter) WhereIf(cond bool, pred string, args ...any) *Filter {
	if cond {
		f.Where(pred, args...)
	}
	return f
}

// Search appends a LIKE match of term against any of cols. Blank terms are
// ignored.
func (f *Filter) Search(term string, cols ...string) *Filter {
	term = strings.TrimSpace(term)
	if term == "" || len(cols) == 0 {
		return f
	}
	like := "%" + escapeLike(term) + "%"
	parts := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		parts[i] = c + ` LIKE ? ESCAPE '\'`
		args[i] = like
	}
	return f.Where("("+strings.Join(parts, " OR ")+")", args...)
}

// Clause returns " WHERE a AND b" or the empty string.
func (f *Filter) Clause() string {
	if f == nil || len(f.preds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.preds, " AND ")
}

// Args returns a copy of the bound arguments in placeholder order.
func (f *Filter) Args() []any {
	if f == nil {
		return nil
	}
	return append([]any(nil), f.args...)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Sort resolves user-supplied sort_by/sort_order against a whitelist of
// column expressions. Unknown keys fall back to def; unknown orders to
// defOrder.
func Sort(allowed map[string]string, by, order, def, defOrder string) string {
	col, ok := allowed[strings.ToLower(strings.TrimSpace(by))]
	if !ok {
		col = allowed[def]
		if col == "" {
			col = def
		}
	}
	dir := strings.ToUpper(strings.TrimSpace(order))
	if dir != "ASC" && dir != "DESC" {
		dir = strings.ToUpper(defOrder)
		if dir != "ASC" {
			dir = "DESC"
		}
	}
	return col + " " + dir
}

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Scanner is the subset of *sql.Rows used by row scan functions.
type Scanner interface {
	Scan(dest ...any) error
}

// Spec describes one list query. From is everything after FROM (table and
// joins); Select is the column list; OrderBy is appended as-is and must come
// from code or Sort, never from raw input.
type Spec struct {
	Select  string
	From    string
	OrderBy string
}

// Query runs the count and page queries for spec with filter f and scans
// each row with scan.
func Query[T any](ctx context.Context, q Querier, spec Spec, f *Filter, p Params, scan func(Scanner) (T, error)) (Result[T], error) {
	where := f.Clause()
	args := f.Args()

	var total int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+spec.From+where, args...).Scan(&total); err != nil {
		return Result[T]{}, err
	}

	items := make([]T, 0, min(p.Limit, max(total, 0)))
	if total > p.Offset() {
		query := "SELECT " + spec.Select + " FROM " + spec.From + where
		if spec.OrderBy != "" {
			query += " ORDER BY " + spec.OrderBy
		}
		query += " LIMIT ? OFFSET ?"
		rows, err := q.QueryContext(ctx, query, append(args, p.Limit, p.Offset())...)
		if err != nil {
			return Result[T]{}, err
		}
		defer rows.Close()
		for rows.Next() {
			item, err := scan(rows)
			if err != nil {
				return Result[T]{}, err
			}
			items = append(items, item)
		}
		if err := rows.Err(); err != nil {
			return Result[T]{}, err
		}
	}
	return Result[T]{Items: items, Pagination: NewMeta(p, total)}, nil
}
