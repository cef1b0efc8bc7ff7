package main

import (
	"strings"
	"testing"
)

func complete(t *testing.T, sess *Session, line string) []string {
	t.Helper()
	c := &sessionCompleter{sess: sess}
	candidates, prefix := c.candidates(line)
	// Candidates always carry the typed prefix.
	for _, cand := range candidates {
		if !strings.HasPrefix(strings.ToLower(cand), strings.ToLower(prefix)) {
			t.Errorf("candidate %q does not extend prefix %q", cand, prefix)
		}
	}
	return candidates
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}

func TestCompleteCommands(t *testing.T) {
	t.Parallel()
	sess, _ := newTestSession(t)

	all := complete(t, sess, "")
	if len(all) != len(commandNames) {
		t.Errorf("expected every command on an empty line, got %v", all)
	}

	he := complete(t, sess, "he")
	if len(he) != 1 || he[0] != "help" {
		t.Errorf("expected [help], got %v", he)
	}
}

func TestCompleteTableNames(t *testing.T) {
	t.Parallel()
	sess, _ := newTestSession(t)

	got := complete(t, sess, "from ")
	for _, name := range []string{"contract", "player", "sponsor", "team"} {
		if !contains(got, name) {
			t.Errorf("expected table %q in %v", name, got)
		}
	}

	got = complete(t, sess, "from pl")
	if len(got) != 1 || got[0] != "player" {
		t.Errorf("expected [player], got %v", got)
	}
}

func TestCompleteAssociationArgs(t *testing.T) {
	t.Parallel()
	sess, _ := newTestSession(t)

	got := complete(t, sess, "belongs_to team player te")
	if !contains(got, "team") {
		t.Errorf("expected team in %v", got)
	}

	got = complete(t, sess, "belongs_to team player team ")
	if !contains(got, "via") {
		t.Errorf("expected via in %v", got)
	}
}

func TestCompleteAssociationKeys(t *testing.T) {
	t.Parallel()
	sess, _ := newTestSession(t)
	exec(t, sess,
		"belongs_to team player team",
		"has_many contracts player contract",
	)

	got := complete(t, sess, "include ")
	if !contains(got, "team") || !contains(got, "contracts") {
		t.Errorf("expected declared keys in %v", got)
	}

	got = complete(t, sess, "include team ")
	if !contains(got, "optional") {
		t.Errorf("expected optional in %v", got)
	}
}

func TestCompleteRootColumns(t *testing.T) {
	t.Parallel()
	sess, _ := newTestSession(t)
	exec(t, sess, "from player")

	got := complete(t, sess, "where ")
	for _, col := range []string{"id", "name", "team_id"} {
		if !contains(got, col) {
			t.Errorf("expected column %q in %v", col, got)
		}
	}

	got = complete(t, sess, "where name ")
	if !contains(got, "like") || !contains(got, "=") {
		t.Errorf("expected operators in %v", got)
	}
}

func TestCompleteWithoutConnection(t *testing.T) {
	t.Parallel()
	sess := NewSession("sqlite", nil)

	if got := complete(t, sess, "from "); len(got) != 0 {
		t.Errorf("expected no tables without a connection, got %v", got)
	}
}

func TestCompleteOrderDirections(t *testing.T) {
	t.Parallel()
	sess, _ := newTestSession(t)
	exec(t, sess, "from player")

	got := complete(t, sess, "order name ")
	if !contains(got, "asc") || !contains(got, "desc") {
		t.Errorf("expected directions in %v", got)
	}
}
