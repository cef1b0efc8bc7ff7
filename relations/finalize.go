package relations

import (
	"fmt"

	"github.com/bawdo/joinery/nodes"
)

// aliasAllocator hands out table aliases during one finalization pass.
// Every allocation gets a fresh identity (ID) even when two occurrences of
// the same table print differently-suffixed names; IDs are scoped to the
// pass, so concurrent finalizations of unrelated trees never coordinate.
type aliasAllocator struct {
	nextID int
	taken  map[string]bool
}

func newAliasAllocator() *aliasAllocator {
	return &aliasAllocator{taken: make(map[string]bool)}
}

// alias allocates a unique alias for one occurrence of table. The first
// occurrence keeps the table's own name; later occurrences get a numeric
// suffix (team, team2, team3, ...), skipping names already taken.
func (a *aliasAllocator) alias(table *nodes.Table) *nodes.TableAlias {
	name := table.Name
	for n := 2; a.taken[name]; n++ {
		name = fmt.Sprintf("%s%d", table.Name, n)
	}
	a.taken[name] = true
	a.nextID++
	return &nodes.TableAlias{Relation: table, AliasName: name, ID: a.nextID}
}

// FinalizedQuery is a JoinQuery after the finalize pass: every node has a
// unique table alias and every column reference in selection, filter, and
// ordering is qualified with its owning alias. Finalize allocates fresh
// alias identities on every call, so callers finalize exactly once per
// execution and discard the result after extracting SQL and the row
// adapter.
type FinalizedQuery struct {
	source    Source
	selection []nodes.Node
	filter    Filter
	ordering  Ordering
	children  []finalizedChild
}

type finalizedChild struct {
	key  string
	join FinalizedJoin
}

// FinalizedJoin is one finalized edge: kind, condition, finalized subtree.
type FinalizedJoin struct {
	Kind      JoinKind
	Condition JoinCondition
	Query     FinalizedQuery
}

// Finalize assigns a fresh unique alias to every node of the tree and
// qualifies all column references. It is the one pass run per statement
// build; everything the statement builder and row decoder consume
// (Aliases, FlatSelection, FlatOrdering, RowAdapter, JoinNodes) is derived
// from its result.
func (q JoinQuery) Finalize() FinalizedQuery {
	return q.finalizeWith(newAliasAllocator())
}

func (q JoinQuery) finalizeWith(alloc *aliasAllocator) FinalizedQuery {
	alias := alloc.alias(q.source.table)
	table := q.source.TableName()

	rewrite := func(n nodes.Node) nodes.Node {
		return qualifyNode(n, table, alias)
	}

	selection := make([]nodes.Node, len(q.selection))
	for i, s := range q.selection {
		selection[i] = rewrite(s)
	}

	f := FinalizedQuery{
		source:    q.source.qualified(alias),
		selection: selection,
		filter:    q.filter.mapped(rewrite),
		ordering:  q.ordering.mapped(rewrite),
	}
	for _, c := range q.children {
		f.children = append(f.children, finalizedChild{
			key: c.key,
			join: FinalizedJoin{
				Kind:      c.join.Kind,
				Condition: c.join.Condition,
				Query:     c.join.Query.finalizeWith(alloc),
			},
		})
	}
	return f
}

// Alias returns the alias assigned to this node's source.
func (f FinalizedQuery) Alias() *nodes.TableAlias {
	return f.source.Alias()
}

// Source returns the finalized (qualified) source.
func (f FinalizedQuery) Source() Source { return f.source }

// Filter returns this node's qualified filter.
func (f FinalizedQuery) Filter() Filter { return f.filter }

// ChildKeys returns the association keys of the direct children, in
// insertion order.
func (f FinalizedQuery) ChildKeys() []string {
	keys := make([]string, len(f.children))
	for i, c := range f.children {
		keys[i] = c.key
	}
	return keys
}

// Child returns the finalized direct child at key.
func (f FinalizedQuery) Child(key string) (FinalizedJoin, bool) {
	for _, c := range f.children {
		if c.key == key {
			return c.join, true
		}
	}
	return FinalizedJoin{}, false
}

// Aliases returns the root alias followed by every descendant's alias in
// tree order: one entry per table slot present in the result row.
func (f FinalizedQuery) Aliases() []*nodes.TableAlias {
	out := []*nodes.TableAlias{f.Alias()}
	for _, c := range f.children {
		out = append(out, c.join.Query.Aliases()...)
	}
	return out
}

// FlatSelection returns the root selection followed by every child's flat
// selection, concatenated in child insertion order. This is the exact
// column layout of the result row.
func (f FinalizedQuery) FlatSelection() []nodes.Node {
	out := append([]nodes.Node(nil), f.selection...)
	for _, c := range f.children {
		out = append(out, c.join.Query.FlatSelection()...)
	}
	return out
}

// FlatOrdering resolves and concatenates the root ordering followed by
// every child's, so the root order dominates and children break ties in
// composition order.
func (f FinalizedQuery) FlatOrdering(ctx ResolveContext) ([]nodes.Node, error) {
	out, err := f.ordering.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range f.children {
		childOrders, err := c.join.Query.FlatOrdering(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, childOrders...)
	}
	return out, nil
}

// JoinNodes emits the join clauses for every edge of the tree, depth-first
// in insertion order, chaining each parent's alias into its children.
func (f FinalizedQuery) JoinNodes(ctx ResolveContext) ([]*nodes.JoinNode, error) {
	return f.childJoinNodes(ctx, true)
}

func (f FinalizedQuery) childJoinNodes(ctx ResolveContext, requiredAllowed bool) ([]*nodes.JoinNode, error) {
	var out []*nodes.JoinNode
	for _, c := range f.children {
		ns, err := c.join.joinNodes(ctx, f.Alias(), requiredAllowed)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", c.key, err)
		}
		out = append(out, ns...)
	}
	return out, nil
}

// joinNodes emits this edge's JOIN clause followed by its subtree's. The
// ON clause is the condition's equality predicate against the parent alias
// AND the subtree's own filter. Once an optional join has been emitted,
// required joins are no longer allowed anywhere beneath it.
func (j FinalizedJoin) joinNodes(ctx ResolveContext, left *nodes.TableAlias, requiredAllowed bool) ([]*nodes.JoinNode, error) {
	joinType := nodes.LeftOuterJoin
	switch j.Kind {
	case JoinRequired:
		if !requiredAllowed {
			return nil, ErrUnsupportedJoin
		}
		joinType = nodes.InnerJoin
	case JoinOptional:
		requiredAllowed = false
	}

	on := j.Condition.Predicate(left, j.Query.Alias())
	filter, err := j.Query.filter.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if filter != nil {
		on = nodes.NewAnd(on, filter)
	}

	out := []*nodes.JoinNode{{
		Left:  left,
		Right: j.Query.Alias(),
		Type:  joinType,
		On:    on,
	}}
	nested, err := j.Query.childJoinNodes(ctx, requiredAllowed)
	if err != nil {
		return nil, err
	}
	return append(out, nested...), nil
}

// qualifyNode rewrites column references that belong to table so they are
// qualified with alias. References already bound to another relation are
// left alone, so filters may mention other tables in the tree.
func qualifyNode(n nodes.Node, table string, alias *nodes.TableAlias) nodes.Node {
	switch t := n.(type) {
	case *nodes.Attribute:
		if t.Relation == nil || nodes.TableSourceName(t.Relation) == table {
			return t.Rebound(alias)
		}
		return t
	case *nodes.StarNode:
		if t.Relation == nil || nodes.TableSourceName(t.Relation) == table {
			return alias.Star()
		}
		return t
	case *nodes.ComparisonNode:
		return nodes.NewComparisonNode(
			qualifyNode(t.Left, table, alias),
			qualifyNode(t.Right, table, alias),
			t.Op,
		)
	case *nodes.AndNode:
		return nodes.NewAnd(
			qualifyNode(t.Left, table, alias),
			qualifyNode(t.Right, table, alias),
		)
	case *nodes.OrNode:
		return nodes.NewOr(
			qualifyNode(t.Left, table, alias),
			qualifyNode(t.Right, table, alias),
		)
	case *nodes.NotNode:
		return nodes.NewNot(qualifyNode(t.Expr, table, alias))
	case *nodes.GroupingNode:
		return nodes.NewGrouping(qualifyNode(t.Expr, table, alias))
	case *nodes.UnaryNode:
		return nodes.NewUnary(qualifyNode(t.Expr, table, alias), t.Op)
	case *nodes.InNode:
		vals := make([]nodes.Node, len(t.Vals))
		for i, v := range t.Vals {
			vals[i] = qualifyNode(v, table, alias)
		}
		return nodes.NewIn(qualifyNode(t.Expr, table, alias), vals, t.Negate)
	case *nodes.BetweenNode:
		return nodes.NewBetween(
			qualifyNode(t.Expr, table, alias),
			qualifyNode(t.Low, table, alias),
			qualifyNode(t.High, table, alias),
			t.Negate,
		)
	case *nodes.OrderingNode:
		return nodes.NewOrdering(qualifyNode(t.Expr, table, alias), t.Direction, t.Nulls)
	case *nodes.AliasNode:
		return nodes.NewAliasNode(qualifyNode(t.Expr, table, alias), t.Name)
	default:
		return n
	}
}
