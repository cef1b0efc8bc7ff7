package relations

import (
	"testing"

	"github.com/bawdo/joinery/internal/testutil"
	"github.com/bawdo/joinery/nodes"
)

func TestRowAdapterRootOnly(t *testing.T) {
	t.Parallel()
	db := gameSchema()

	adapter, err := NewJoinQuery("player").Finalize().RowAdapter(db)
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, adapter.Start, 0)
	testutil.AssertEqual(t, adapter.End, 4)
	testutil.AssertEqual(t, len(adapter.Scopes), 0)
}

func TestRowAdapterNestedRanges(t *testing.T) {
	t.Parallel()
	db := gameSchema()
	q := composed(t, NewJoinQuery("player"), "team", teamAssoc(t, db), JoinRequired)

	adapter, err := q.Finalize().RowAdapter(db)
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, adapter.Width(), 4)
	team, ok := adapter.Scope("team")
	if !ok {
		t.Fatal("expected a nested scope for the team association")
	}
	testutil.AssertEqual(t, team.Start, 4)
	testutil.AssertEqual(t, team.End, 6)
}

func TestRowAdapterExplicitSelectionWidths(t *testing.T) {
	t.Parallel()
	db := gameSchema()
	player := nodes.NewTable("player")
	q := NewJoinQuery("player").
		WithSelection([]nodes.Node{player.Col("id"), player.Col("name")})
	q = composed(t, q, "team", teamAssoc(t, db), JoinRequired)

	adapter, err := q.Finalize().RowAdapter(db)
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, adapter.Width(), 2)
	team, _ := adapter.Scope("team")
	testutil.AssertEqual(t, team.Start, 2)
	testutil.AssertEqual(t, team.End, 4)
}

func TestRowAdapterPivotContributesNoColumns(t *testing.T) {
	t.Parallel()
	db := gameSchema()
	q := composed(t, NewJoinQuery("player"), "sponsors", sponsorsAssoc(t, db), JoinRequired)

	adapter, err := q.Finalize().RowAdapter(db)
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, adapter.Width(), 4)
	pivot, ok := adapter.Scope("sponsors")
	if !ok {
		t.Fatal("expected a scope for the through association")
	}
	// The contract level owns no columns; the sponsor range sits beneath it.
	testutil.AssertEqual(t, pivot.Width(), 0)
	testutil.AssertEqual(t, len(pivot.Scopes), 1)
	sponsor := pivot.Scopes[0].Adapter
	testutil.AssertEqual(t, sponsor.Start, 4)
	testutil.AssertEqual(t, sponsor.End, 6)
}

func TestRowAdapterNilForColumnlessSubtree(t *testing.T) {
	t.Parallel()
	db := gameSchema()
	q := composed(t, NewJoinQuery("player"), "team", teamAssoc(t, db).withoutSelection(), JoinRequired)

	adapter, err := q.Finalize().RowAdapter(db)
	testutil.AssertNoError(t, err)

	if _, ok := adapter.Scope("team"); ok {
		t.Error("expected no scope for a join that contributes no columns")
	}
	testutil.AssertEqual(t, adapter.Width(), 4)
}

func TestRowAdapterUnknownTableFails(t *testing.T) {
	t.Parallel()
	_, err := NewJoinQuery("mystery").Finalize().RowAdapter(gameSchema())
	testutil.AssertError(t, err)
}
