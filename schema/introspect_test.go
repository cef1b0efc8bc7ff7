package schema

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A :memory: database lives on a single connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ddl := []string{
		`CREATE TABLE team (id INTEGER PRIMARY KEY, title TEXT)`,
		`CREATE TABLE player (
			id INTEGER PRIMARY KEY,
			name TEXT,
			team_id INTEGER REFERENCES team(id)
		)`,
		`CREATE TABLE contract (
			id INTEGER PRIMARY KEY,
			player_id INTEGER REFERENCES player(id),
			sponsor TEXT
		)`,
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return db
}

func TestIntrospectSQLite(t *testing.T) {
	db := openTestDB(t)

	meta, err := Introspect(db, "sqlite")
	if err != nil {
		t.Fatalf("introspect: %v", err)
	}

	tables := meta.Tables()
	if len(tables) != 3 {
		t.Fatalf("expected 3 tables, got %d", len(tables))
	}

	cols, err := meta.Columns("player")
	if err != nil {
		t.Fatal(err)
	}
	if len(cols) != 3 || cols[0] != "id" || cols[2] != "team_id" {
		t.Errorf("unexpected player columns: %v", cols)
	}

	n, err := meta.ColumnCount("team")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 team columns, got %d", n)
	}
}

func TestIntrospectSQLiteForeignKeys(t *testing.T) {
	db := openTestDB(t)

	meta, err := Introspect(db, "sqlite")
	if err != nil {
		t.Fatalf("introspect: %v", err)
	}

	fk, err := meta.ForeignKeyTo("player", "team")
	if err != nil {
		t.Fatal(err)
	}
	if fk.To != "team" {
		t.Errorf("unexpected destination: %q", fk.To)
	}
	if len(fk.Pairs) != 1 || fk.Pairs[0].Origin != "team_id" || fk.Pairs[0].Destination != "id" {
		t.Errorf("unexpected column mapping: %+v", fk.Pairs)
	}

	if _, err := meta.ForeignKeyTo("team", "player"); err == nil {
		t.Error("expected no foreign key from team to player")
	}
}

func TestIntrospectSQLiteImplicitPrimaryKeyReference(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A :memory: database lives on a single connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	// A REFERENCES clause without a column list points at the destination's
	// primary key; pragma_foreign_key_list reports NULL for the destination
	// column in that case.
	ddl := []string{
		`CREATE TABLE team (id INTEGER PRIMARY KEY, title TEXT)`,
		`CREATE TABLE roster (
			id INTEGER PRIMARY KEY,
			team_id INTEGER REFERENCES team
		)`,
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}

	meta, err := Introspect(db, "sqlite")
	if err != nil {
		t.Fatalf("introspect: %v", err)
	}

	fk, err := meta.ForeignKeyTo("roster", "team")
	if err != nil {
		t.Fatal(err)
	}
	if len(fk.Pairs) != 1 || fk.Pairs[0].Origin != "team_id" || fk.Pairs[0].Destination != "id" {
		t.Errorf("expected team_id resolved to the primary key, got %+v", fk.Pairs)
	}
}

func TestIntrospectRejectsUnknownEngine(t *testing.T) {
	db := openTestDB(t)
	if _, err := Introspect(db, "oracle"); err == nil {
		t.Error("expected an error for an unsupported engine")
	}
}
