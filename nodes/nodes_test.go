package nodes

import "testing"

// --- Table / Attribute creation ---

func TestTableCreatesAttributes(t *testing.T) {
	t.Parallel()
	players := NewTable("player")
	col := players.Col("id")

	if col.Name != "id" {
		t.Errorf("expected col name %q, got %q", "id", col.Name)
	}
	if col.Relation != Node(players) {
		t.Error("expected attribute relation to be the player table")
	}
}

func TestTableAlias(t *testing.T) {
	t.Parallel()
	players := NewTable("player")
	p := players.Alias("p")

	if p.AliasName != "p" {
		t.Errorf("expected alias %q, got %q", "p", p.AliasName)
	}
	if p.Relation != Node(players) {
		t.Error("expected alias to reference the original table")
	}
}

func TestTableAliasCreatesAttributes(t *testing.T) {
	t.Parallel()
	p := NewTable("player").Alias("p")
	col := p.Col("name")

	if col.Name != "name" {
		t.Errorf("expected col name %q, got %q", "name", col.Name)
	}
	if col.Relation != Node(p) {
		t.Error("expected attribute relation to be the table alias")
	}
}

func TestTableStar(t *testing.T) {
	t.Parallel()
	players := NewTable("player")
	star := players.Star()

	if star.Relation != Node(players) {
		t.Error("expected qualified star to reference the table")
	}
}

func TestUnqualifiedStar(t *testing.T) {
	t.Parallel()
	if Star().Relation != nil {
		t.Error("expected unqualified star to carry no relation")
	}
}

func TestAttributeRebound(t *testing.T) {
	t.Parallel()
	players := NewTable("player")
	alias := &TableAlias{Relation: players, AliasName: "player2", ID: 2}
	col := players.Col("name")

	moved := col.Rebound(alias)
	if moved.Relation != Node(alias) {
		t.Error("expected the rebound attribute to point at the alias")
	}
	if col.Relation != Node(players) {
		t.Error("expected the original attribute to be untouched")
	}
	// The rebound copy keeps working predication state.
	cmp := moved.Eq(1)
	if cmp.Left != Node(moved) {
		t.Error("expected predications to reference the rebound attribute")
	}
}

// --- Relation name helpers ---

func TestRelationName(t *testing.T) {
	t.Parallel()
	players := NewTable("player")
	if RelationName(players) != "player" {
		t.Error("expected the table name")
	}
	if RelationName(players.Alias("p")) != "p" {
		t.Error("expected the alias name")
	}
}

func TestTableSourceName(t *testing.T) {
	t.Parallel()
	players := NewTable("player")
	if TableSourceName(players) != "player" {
		t.Error("expected the table name")
	}
	if TableSourceName(players.Alias("p")) != "player" {
		t.Error("expected the alias to look through to the table")
	}
}

// --- Predications ---

func TestPredicationsBuildComparisons(t *testing.T) {
	t.Parallel()
	col := NewTable("player").Col("id")

	cases := []struct {
		node *ComparisonNode
		op   ComparisonOp
	}{
		{col.Eq(1), OpEq},
		{col.NotEq(1), OpNotEq},
		{col.Gt(1), OpGt},
		{col.GtEq(1), OpGtEq},
		{col.Lt(1), OpLt},
		{col.LtEq(1), OpLtEq},
		{col.Like("x%"), OpLike},
		{col.NotLike("x%"), OpNotLike},
	}
	for _, c := range cases {
		if c.node.Op != c.op {
			t.Errorf("expected op %v, got %v", c.op, c.node.Op)
		}
		if c.node.Left != Node(col) {
			t.Error("expected the column as left operand")
		}
	}
}

func TestComparisonsAreCombinable(t *testing.T) {
	t.Parallel()
	col := NewTable("player").Col("id")
	left := col.Eq(1)
	combined := left.And(col.Gt(0))

	if combined.Left != Node(left) {
		t.Error("expected the receiver comparison as left operand of the AND")
	}
	if _, ok := combined.Right.(*ComparisonNode); !ok {
		t.Error("expected a comparison on the right of the AND")
	}
}

func TestAndAll(t *testing.T) {
	t.Parallel()
	col := NewTable("player").Col("id")

	if AndAll(nil) != nil {
		t.Error("expected nil for an empty slice")
	}

	single := AndAll([]Node{col.Eq(1)})
	if _, ok := single.(*ComparisonNode); !ok {
		t.Errorf("expected the single node unchanged, got %T", single)
	}

	chained := AndAll([]Node{col.Eq(1), col.Gt(0), col.Lt(9)})
	outer, ok := chained.(*AndNode)
	if !ok {
		t.Fatalf("expected an AndNode, got %T", chained)
	}
	if _, ok := outer.Left.(*AndNode); !ok {
		t.Error("expected left-nested AND chaining")
	}
}

// --- Ordering ---

func TestOrderingReversed(t *testing.T) {
	t.Parallel()
	col := NewTable("player").Col("name")

	asc := col.Asc()
	desc := asc.Reversed()
	if desc.Direction != Desc {
		t.Error("expected ASC to reverse to DESC")
	}
	if asc.Direction != Asc {
		t.Error("expected the original ordering to be untouched")
	}
	if desc.Reversed().Direction != Asc {
		t.Error("expected double reversal to restore ASC")
	}
}

func TestOrderingReversedFlipsNulls(t *testing.T) {
	t.Parallel()
	ord := &OrderingNode{Expr: NewTable("player").Col("name"), Direction: Asc, Nulls: NullsFirst}
	rev := ord.Reversed()
	if rev.Nulls != NullsLast {
		t.Error("expected NULLS FIRST to flip to NULLS LAST")
	}
}

func TestReverseOrderingWrapsBareExpression(t *testing.T) {
	t.Parallel()
	col := NewTable("player").Col("name")
	rev := ReverseOrdering(col)
	ord, ok := rev.(*OrderingNode)
	if !ok {
		t.Fatalf("expected an OrderingNode, got %T", rev)
	}
	if ord.Direction != Desc {
		t.Error("expected a bare expression to reverse to DESC")
	}
}

// --- Literals ---

func TestLiteralPassesNodesThrough(t *testing.T) {
	t.Parallel()
	col := NewTable("player").Col("id")
	if Literal(col) != Node(col) {
		t.Error("expected an existing node to pass through unchanged")
	}
}

func TestBindParam(t *testing.T) {
	t.Parallel()
	p := NewBindParam(42)
	if p.Value != 42 {
		t.Errorf("expected value 42, got %v", p.Value)
	}
}
