package paging

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestFromQuery(t *testing.T) {
	tests := []struct {
		query string
		want  Params
	}{
		{"", Params{Page: 1, Limit: 10}},
		{"page=3&limit=5", Params{Page: 3, Limit: 5}},
		{"page=0&limit=-2", Params{Page: 1, Limit: 10}},
		{"page=abc&limit=xyz", Params{Page: 1, Limit: 10}},
		{"limit=500", Params{Page: 1, Limit: 100}},
	}
	for _, tt := range tests {
		v, _ := url.ParseQuery(tt.query)
		got := FromQuery(v.Get, 10, 100)
		if got != tt.want {
			t.Errorf("FromQuery(%q) = %+v, want %+v", tt.query, got, tt.want)
		}
	}
}

func TestNewMeta(t *testing.T) {
	tests := []struct {
		p     Params
		total int
		want  Meta
	}{
		{Params{1, 10}, 0, Meta{Page: 1, Limit: 10}},
		{Params{1, 10}, 10, Meta{Page: 1, Limit: 10, Total: 10, TotalPages: 1}},
		{Params{1, 10}, 11, Meta{Page: 1, Limit: 10, Total: 11, TotalPages: 2, HasNext: true}},
		{Params{2, 5}, 11, Meta{Page: 2, Limit: 5, Total: 11, TotalPages: 3, HasNext: true, HasPrev: true}},
		{Params{9, 5}, 11, Meta{Page: 9, Limit: 5, Total: 11, TotalPages: 3, HasPrev: true}},
	}
	for _, tt := range tests {
		if got := NewMeta(tt.p, tt.total); got != tt.want {
			t.Errorf("NewMeta(%+v, %d) = %+v, want %+v", tt.p, tt.total, got, tt.want)
		}
	}
}

func TestFilterClauseOrder(t *testing.T) {
	var f Filter
	if f.Clause() != "" {
		t.Fatalf("empty filter should produce no WHERE clause, got %q", f.Clause())
	}
	f.Search("oak", "title", "body").
		WhereIf(false, "status = ?", "skip").
		WhereIf(true, "published = ?", 1)

	want := ` WHERE (title LIKE ? ESCAPE '\' OR body LIKE ? ESCAPE '\') AND published = ?`
	if f.Clause() != want {
		t.Errorf("Clause = %q, want %q", f.Clause(), want)
	}
	args := f.Args()
	if len(args) != 3 || args[0] != "%oak%" || args[1] != "%oak%" || args[2] != 1 {
		t.Errorf("Args = %v", args)
	}
}

func TestSearchEscapesWildcards(t *testing.T) {
	var f Filter
	f.Search("50%_off", "name")
	if got := f.Args()[0]; got != `%50\%\_off%` {
		t.Errorf("escaped arg = %q", got)
	}
}

func TestSort(t *testing.T) {
	allowed := map[string]string{"created_at": "r.created_at", "rating": "r.rating"}
	if got := Sort(allowed, "rating", "asc", "created_at", "desc"); got != "r.rating ASC" {
		t.Errorf("Sort = %q", got)
	}
	if got := Sort(allowed, "rating; DROP TABLE x", "sideways", "created_at", "desc"); got != "r.created_at DESC" {
		t.Errorf("Sort fallback = %q", got)
	}
}

type row struct {
	ID   int
	Name string
}

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "paging.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.Exec(`CREATE TABLE things (id INTEGER PRIMARY KEY, name TEXT NOT NULL, kind TEXT NOT NULL)`); err != nil {
		t.Fatalf("schema: %v", err)
	}
	for i := 1; i <= 12; i++ {
		kind := "tree"
		if i%3 == 0 {
			kind = "stump"
		}
		if _, err := db.Exec(`INSERT INTO things (name, kind) VALUES (?, ?)`, fmt.Sprintf("thing-%02d", i), kind); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	return db
}

func scanRow(s Scanner) (row, error) {
	var r row
	err := s.Scan(&r.ID, &r.Name)
	return r, err
}

func TestQuery(t *testing.T) {
	db := setupDB(t)
	spec := Spec{Select: "id, name", From: "things", OrderBy: "id ASC"}
	ctx := context.Background()

	var f Filter
	f.Where("kind = ?", "tree")
	res, err := Query(ctx, db, spec, &f, Params{Page: 2, Limit: 3}, scanRow)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Pagination.Total != 8 || res.Pagination.TotalPages != 3 {
		t.Errorf("pagination = %+v, want total 8 over 3 pages", res.Pagination)
	}
	if len(res.Items) != 3 || res.Items[0].Name != "thing-04" {
		t.Errorf("items = %+v", res.Items)
	}

	res, err = Query(ctx, db, spec, &f, Params{Page: 10, Limit: 3}, scanRow)
	if err != nil {
		t.Fatalf("Query beyond range: %v", err)
	}
	if res.Items == nil || len(res.Items) != 0 {
		t.Errorf("beyond range items = %#v, want empty non-nil", res.Items)
	}
	if res.Pagination.Total != 8 || res.Pagination.HasNext {
		t.Errorf("beyond range pagination = %+v", res.Pagination)
	}

	var none Filter
	none.Where("kind = ?", "hedge")
	res, err = Query(ctx, db, spec, &none, Params{Page: 1, Limit: 5}, scanRow)
	if err != nil {
		t.Fatalf("Query no match: %v", err)
	}
	want := Meta{Page: 1, Limit: 5}
	if res.Items == nil || len(res.Items) != 0 || res.Pagination != want {
		t.Errorf("no match = %#v", res)
	}
}
