package main

import (
	"bytes"
	"database/sql"
	"strings"
	"testing"

	"github.com/bawdo/joinery/schema"
)

// newTestSession builds a session wired to an in-memory SQLite database with
// a small league schema and a couple of seeded rows.
func newTestSession(t *testing.T) (*Session, *bytes.Buffer) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A :memory: database lives on a single connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	stmts := []string{
		`CREATE TABLE team (id INTEGER PRIMARY KEY, title TEXT)`,
		`CREATE TABLE sponsor (id INTEGER PRIMARY KEY, brand TEXT)`,
		`CREATE TABLE player (
			id INTEGER PRIMARY KEY,
			name TEXT,
			team_id INTEGER REFERENCES team(id)
		)`,
		`CREATE TABLE contract (
			id INTEGER PRIMARY KEY,
			player_id INTEGER REFERENCES player(id),
			sponsor_id INTEGER REFERENCES sponsor(id)
		)`,
		`INSERT INTO team VALUES (1, 'Reds'), (2, 'Blues')`,
		`INSERT INTO sponsor VALUES (1, 'Acme')`,
		`INSERT INTO player VALUES (1, 'Ann', 1), (2, 'Bob', NULL)`,
		`INSERT INTO contract VALUES (1, 1, 1)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}

	meta, err := schema.Introspect(db, "sqlite")
	if err != nil {
		t.Fatalf("introspect: %v", err)
	}

	out := &bytes.Buffer{}
	sess := NewSession("sqlite", out)
	sess.conn = &dbConn{db: db, engine: "sqlite", schema: meta}
	return sess, out
}

func exec(t *testing.T, sess *Session, commands ...string) {
	t.Helper()
	for _, cmd := range commands {
		if err := sess.Execute(cmd); err != nil {
			t.Fatalf("command %q failed: %v", cmd, err)
		}
	}
}

// --- Command parsing ---

func TestExecuteEmptyLine(t *testing.T) {
	t.Parallel()
	sess, _ := newTestSession(t)
	if err := sess.Execute("   "); err != nil {
		t.Errorf("expected blank lines to be ignored, got %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()
	sess, _ := newTestSession(t)
	if err := sess.Execute("frobnicate"); err == nil {
		t.Error("expected error for unknown command")
	}
}

// --- Schema commands ---

func TestTablesCommand(t *testing.T) {
	t.Parallel()
	sess, out := newTestSession(t)
	exec(t, sess, "tables")
	for _, name := range []string{"team", "sponsor", "player", "contract"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("expected table %q in output:\n%s", name, out.String())
		}
	}
}

func TestColumnsCommand(t *testing.T) {
	t.Parallel()
	sess, out := newTestSession(t)
	exec(t, sess, "columns player")
	if !strings.Contains(out.String(), "id, name, team_id") {
		t.Errorf("unexpected columns output:\n%s", out.String())
	}
}

func TestColumnsUnknownTable(t *testing.T) {
	t.Parallel()
	sess, _ := newTestSession(t)
	if err := sess.Execute("columns mystery"); err == nil {
		t.Error("expected error for unknown table")
	}
}

// --- Association declarations and composition ---

func TestIncludeBelongsTo(t *testing.T) {
	t.Parallel()
	sess, out := newTestSession(t)
	exec(t, sess,
		"belongs_to team player team",
		"from player",
		"include team",
		"sql",
	)
	want := `SELECT "player".*, "team".* FROM "player" INNER JOIN "team" ON "team"."id" = "player"."team_id"`
	if !strings.Contains(out.String(), want) {
		t.Errorf("expected:\n  %s\nin output:\n%s", want, out.String())
	}
}

func TestIncludeOptional(t *testing.T) {
	t.Parallel()
	sess, out := newTestSession(t)
	exec(t, sess,
		"belongs_to team player team",
		"from player",
		"include team optional",
		"sql",
	)
	if !strings.Contains(out.String(), "LEFT OUTER JOIN") {
		t.Errorf("expected a left outer join:\n%s", out.String())
	}
}

func TestJoinsDropsColumns(t *testing.T) {
	t.Parallel()
	sess, out := newTestSession(t)
	exec(t, sess,
		"belongs_to team player team",
		"from player",
		"joins team",
		"sql",
	)
	got := out.String()
	if !strings.Contains(got, `SELECT "player".* FROM "player"`) {
		t.Errorf("expected only root columns:\n%s", got)
	}
	if strings.Contains(got, `"team".*`) {
		t.Errorf("expected no joined columns:\n%s", got)
	}
}

func TestThroughAssociation(t *testing.T) {
	t.Parallel()
	sess, out := newTestSession(t)
	exec(t, sess,
		"has_many contracts player contract",
		"belongs_to sponsor contract sponsor",
		"through sponsors contracts sponsor",
		"from player",
		"include sponsors",
		"sql",
	)
	want := `SELECT "player".*, "sponsor".* FROM "player"` +
		` INNER JOIN "contract" ON "contract"."player_id" = "player"."id"` +
		` INNER JOIN "sponsor" ON "sponsor"."id" = "contract"."sponsor_id"`
	if !strings.Contains(out.String(), want) {
		t.Errorf("expected:\n  %s\nin output:\n%s", want, out.String())
	}
}

func TestThroughUnknownPart(t *testing.T) {
	t.Parallel()
	sess, _ := newTestSession(t)
	if err := sess.Execute("through sponsors nope sponsor"); err == nil {
		t.Error("expected error for an undeclared pivot key")
	}
}

func TestAssocsListsDeclarationOrder(t *testing.T) {
	t.Parallel()
	sess, out := newTestSession(t)
	exec(t, sess,
		"belongs_to team player team",
		"has_many contracts player contract",
		"assocs",
	)
	got := out.String()
	if strings.Index(got, "team") > strings.Index(got, "contracts") {
		t.Errorf("expected declaration order preserved:\n%s", got)
	}
}

func TestComposeRequiresRequest(t *testing.T) {
	t.Parallel()
	sess, _ := newTestSession(t)
	exec(t, sess, "belongs_to team player team")
	if err := sess.Execute("include team"); err == nil {
		t.Error("expected error before 'from'")
	}
}

func TestComposeUnknownAssociation(t *testing.T) {
	t.Parallel()
	sess, _ := newTestSession(t)
	exec(t, sess, "from player")
	if err := sess.Execute("include nope"); err == nil {
		t.Error("expected error for unknown association")
	}
}

// --- Root refinements ---

func TestWhereBindsParams(t *testing.T) {
	t.Parallel()
	sess, out := newTestSession(t)
	exec(t, sess,
		"from player",
		"where name = 'Ann'",
		"sql",
	)
	got := out.String()
	if !strings.Contains(got, `WHERE "player"."name" = ?`) {
		t.Errorf("expected a bound WHERE clause:\n%s", got)
	}
	if !strings.Contains(got, "params: [Ann]") {
		t.Errorf("expected bind parameters printed:\n%s", got)
	}
}

func TestWhereUnknownOperator(t *testing.T) {
	t.Parallel()
	sess, _ := newTestSession(t)
	exec(t, sess, "from player")
	if err := sess.Execute("where name ~ 'Ann'"); err == nil {
		t.Error("expected error for unknown operator")
	}
}

func TestOrderAndReverse(t *testing.T) {
	t.Parallel()
	sess, out := newTestSession(t)
	exec(t, sess,
		"from player",
		"order name desc",
		"reverse",
		"sql",
	)
	if !strings.Contains(out.String(), `ORDER BY "player"."name" ASC`) {
		t.Errorf("expected a reversed ordering:\n%s", out.String())
	}
}

func TestSelectNarrowsProjection(t *testing.T) {
	t.Parallel()
	sess, out := newTestSession(t)
	exec(t, sess,
		"from player",
		"select id name",
		"sql",
	)
	if !strings.Contains(out.String(), `SELECT "player"."id", "player"."name" FROM "player"`) {
		t.Errorf("expected a narrowed projection:\n%s", out.String())
	}
}

func TestResetDiscardsRequest(t *testing.T) {
	t.Parallel()
	sess, _ := newTestSession(t)
	exec(t, sess, "from player", "reset")
	if err := sess.Execute("sql"); err == nil {
		t.Error("expected error after reset")
	}
}

// --- Execution ---

func TestRunNestedRecords(t *testing.T) {
	t.Parallel()
	sess, out := newTestSession(t)
	exec(t, sess,
		"belongs_to team player team",
		"from player",
		"include team",
		"run",
	)
	got := out.String()
	if !strings.Contains(got, `"name": "Ann"`) {
		t.Errorf("expected Ann in output:\n%s", got)
	}
	if !strings.Contains(got, `"title": "Reds"`) {
		t.Errorf("expected the nested team record:\n%s", got)
	}
	// Bob has no team, so the inner join drops him.
	if !strings.Contains(got, "(1 rows)") {
		t.Errorf("expected a single row:\n%s", got)
	}
}

func TestRunOptionalKeepsUnmatched(t *testing.T) {
	t.Parallel()
	sess, out := newTestSession(t)
	exec(t, sess,
		"belongs_to team player team",
		"from player",
		"include team optional",
		"run",
	)
	got := out.String()
	if !strings.Contains(got, `"name": "Bob"`) {
		t.Errorf("expected Bob in output:\n%s", got)
	}
	if !strings.Contains(got, `"team": null`) {
		t.Errorf("expected Bob's team collapsed to null:\n%s", got)
	}
	if !strings.Contains(got, "(2 rows)") {
		t.Errorf("expected both players:\n%s", got)
	}
}

func TestRunLimit(t *testing.T) {
	t.Parallel()
	sess, out := newTestSession(t)
	exec(t, sess,
		"from player",
		"run limit 1",
	)
	if !strings.Contains(out.String(), "(1 rows)") {
		t.Errorf("expected the limit applied:\n%s", out.String())
	}
}

func TestRunBadLimit(t *testing.T) {
	t.Parallel()
	sess, _ := newTestSession(t)
	exec(t, sess, "from player")
	if err := sess.Execute("run limit zero"); err == nil {
		t.Error("expected error for a non-numeric limit")
	}
}

func TestSoftDeleteToggle(t *testing.T) {
	t.Parallel()
	sess, out := newTestSession(t)
	exec(t, sess,
		"from player",
		"softdelete",
		"sql",
	)
	if !strings.Contains(out.String(), `"player"."deleted_at" IS NULL`) {
		t.Errorf("expected the soft-delete condition:\n%s", out.String())
	}

	out.Reset()
	exec(t, sess, "softdelete off", "sql")
	if strings.Contains(out.String(), "deleted_at") {
		t.Errorf("expected the condition removed:\n%s", out.String())
	}
}

func TestSoftDeleteCustomColumn(t *testing.T) {
	t.Parallel()
	sess, out := newTestSession(t)
	exec(t, sess,
		"from player",
		"softdelete removed_at",
		"sql",
	)
	if !strings.Contains(out.String(), `"player"."removed_at" IS NULL`) {
		t.Errorf("expected the custom column:\n%s", out.String())
	}
}

// --- Engine handling ---

func TestEngineSwitchRequiresDisconnect(t *testing.T) {
	t.Parallel()
	sess, _ := newTestSession(t)
	if err := sess.Execute("engine mysql"); err == nil {
		t.Error("expected error while connected")
	}
}

func TestEngineSwitch(t *testing.T) {
	t.Parallel()
	sess := NewSession("sqlite", &bytes.Buffer{})
	exec(t, sess, "engine postgres")
	if sess.engine != "postgres" {
		t.Errorf("expected engine postgres, got %q", sess.engine)
	}
}

func TestEngineRejectsUnknown(t *testing.T) {
	t.Parallel()
	sess := NewSession("sqlite", &bytes.Buffer{})
	if err := sess.Execute("engine oracle"); err == nil {
		t.Error("expected error for unsupported engine")
	}
}

// --- parseValue ---

func TestParseValue(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  any
	}{
		{"42", 42},
		{"3.14", 3.14},
		{"true", true},
		{"'Ann'", "Ann"},
		{`"Ann"`, "Ann"},
		{"Ann", "Ann"},
	}
	for _, tt := range tests {
		if got := parseValue(tt.input); got != tt.want {
			t.Errorf("parseValue(%q) = %v (%T), want %v (%T)", tt.input, got, got, tt.want, tt.want)
		}
	}
}
