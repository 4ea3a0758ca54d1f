package querybuilder

import (
	"reflect"
	"testing"
)

func TestSelect_ByPath(t *testing.T) {
	sql, args, err := Select("path", "fields", "updated_at").
		From("documents").
		Where(Eq("path", "groups/g-001")).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}

	want := "SELECT path, fields, updated_at FROM documents WHERE path = $1"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"groups/g-001"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestSelect_FieldFiltersAndOrder(t *testing.T) {
	sql, args, err := Select("path", "fields", "updated_at").
		From("documents").
		Where(
			Eq("collection", "matches"),
			Expr("fields->>'competitionId' = ?", "mundial-2026"),
			Expr("fields->>'scheduledTime' >= ?", "2026-06-11T19:00:00.000000000Z"),
		).
		OrderBy("fields->>'scheduledTime'").
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}

	want := "SELECT path, fields, updated_at FROM documents" +
		" WHERE collection = $1" +
		" AND fields->>'competitionId' = $2" +
		" AND fields->>'scheduledTime' >= $3" +
		" ORDER BY fields->>'scheduledTime'"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"matches", "mundial-2026", "2026-06-11T19:00:00.000000000Z"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestSelect_RequiresColumnsAndTable(t *testing.T) {
	if _, _, err := Select().From("documents").ToSQL(); err == nil {
		t.Fatal("expected error for missing columns")
	}
	if _, _, err := Select("path").ToSQL(); err == nil {
		t.Fatal("expected error for missing table")
	}
}

func TestInsert_UpsertDocument(t *testing.T) {
	sql, args, err := InsertInto("documents").
		Columns("path", "collection", "fields", "updated_at").
		Values("matches/m-001", "matches", []byte(`{}`), "2026-06-11T18:00:00.000000000Z").
		Suffix("ON CONFLICT (path) DO UPDATE SET fields = EXCLUDED.fields, updated_at = EXCLUDED.updated_at").
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}

	want := "INSERT INTO documents (path, collection, fields, updated_at) VALUES ($1, $2, $3, $4)" +
		" ON CONFLICT (path) DO UPDATE SET fields = EXCLUDED.fields, updated_at = EXCLUDED.updated_at"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if len(args) != 4 {
		t.Fatalf("args = %v", args)
	}
}

func TestInsert_MultiRowNumbering(t *testing.T) {
	sql, args, err := InsertInto("documents").
		Columns("path", "collection").
		Values("users/u-1", "users").
		Values("users/u-2", "users").
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}

	want := "INSERT INTO documents (path, collection) VALUES ($1, $2), ($3, $4)"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"users/u-1", "users", "users/u-2", "users"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestInsert_RowArityMismatch(t *testing.T) {
	_, _, err := InsertInto("documents").
		Columns("path", "collection").
		Values("users/u-1").
		ToSQL()
	if err == nil {
		t.Fatal("expected error for short row")
	}
}

func TestUpdate_JSONBMerge(t *testing.T) {
	payload := []byte(`{"status":"finished"}`)
	sql, args, err := Update("documents").
		SetExpr("fields", "fields || ?::jsonb", payload).
		Set("updated_at", "2026-06-11T20:50:00.000000000Z").
		Where(Eq("path", "matches/m-001")).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}

	want := "UPDATE documents SET fields = fields || $1::jsonb, updated_at = $2 WHERE path = $3"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{any(payload), "2026-06-11T20:50:00.000000000Z", "matches/m-001"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestUpdate_RequiresSets(t *testing.T) {
	if _, _, err := Update("documents").Where(Eq("path", "x/y")).ToSQL(); err == nil {
		t.Fatal("expected error for missing set clauses")
	}
}

func TestPlaceholderArgumentMismatch(t *testing.T) {
	_, _, err := Select("path").
		From("documents").
		Where(Expr("fields->>'a' = ? AND fields->>'b' = ?", "only-one")).
		ToSQL()
	if err == nil {
		t.Fatal("expected error for unmatched placeholder")
	}
}
