// Package relations composes declared record relationships into a single
// SQL query that fetches a root record together with nested related records
// in one round trip.
//
// A JoinQuery is a node of the join tree: a source table, a selection, an
// optional filter, an ordering, and an ordered set of child Joins keyed by
// association name. Trees built independently merge deterministically when
// attached under the same key; a finalize pass then assigns collision-free
// table aliases and derives the flat column layout the row-decoding layer
// slices back into a nested object graph.
package relations

import (
	"fmt"

	"github.com/bawdo/joinery/nodes"
)

// Source is the table a JoinQuery selects from. After finalization it also
// carries the alias assigned to this occurrence of the table.
type Source struct {
	table *nodes.Table
	alias *nodes.TableAlias
}

// TableSource builds a Source for a named table.
func TableSource(name string) Source {
	return Source{table: nodes.NewTable(name)}
}

// TableName returns the underlying table name.
func (s Source) TableName() string {
	return s.table.Name
}

// Relation returns the node used to reference this source in SQL: the
// assigned alias once finalized, the bare table before that.
func (s Source) Relation() nodes.Node {
	if s.alias != nil {
		return s.alias
	}
	return s.table
}

// Alias returns the alias assigned by finalization, or nil.
func (s Source) Alias() *nodes.TableAlias {
	return s.alias
}

// mergeableWith reports whether two sources select from the same underlying
// table and may therefore merge.
func (s Source) mergeableWith(other Source) bool {
	return s.table.Name == other.table.Name
}

// qualified returns a copy of the source scoped under alias.
func (s Source) qualified(alias *nodes.TableAlias) Source {
	return Source{table: s.table, alias: alias}
}

// childJoin is one keyed entry in a JoinQuery's ordered child collection.
type childJoin struct {
	key  string
	join Join
}

// JoinQuery is one node of the join tree. It is immutable under every
// transformation: operations return a new value and never mutate their
// receiver or operands, so declared associations can be shared freely.
//
// Child keys are unique within a node, and insertion order is preserved: it
// determines both SQL emission order and output-column order.
type JoinQuery struct {
	source    Source
	selection []nodes.Node
	filter    Filter
	ordering  Ordering
	children  []childJoin
}

// NewJoinQuery builds a query over one table selecting the whole row
// (table.*).
func NewJoinQuery(table string) JoinQuery {
	src := TableSource(table)
	return JoinQuery{
		source:    src,
		selection: []nodes.Node{src.table.Star()},
	}
}

// Source returns the query's source.
func (q JoinQuery) Source() Source { return q.source }

// Selection returns the query's own selection (not descendants').
func (q JoinQuery) Selection() []nodes.Node { return q.selection }

// Filter returns the query's own filter.
func (q JoinQuery) Filter() Filter { return q.filter }

// Ordering returns the query's own ordering.
func (q JoinQuery) Ordering() Ordering { return q.ordering }

// ChildKeys returns the association keys of the direct children, in
// insertion order.
func (q JoinQuery) ChildKeys() []string {
	keys := make([]string, len(q.children))
	for i, c := range q.children {
		keys[i] = c.key
	}
	return keys
}

// Child returns the direct child join at key.
func (q JoinQuery) Child(key string) (Join, bool) {
	for _, c := range q.children {
		if c.key == key {
			return c.join, true
		}
	}
	return Join{}, false
}

// WithSelection returns a copy with the selection replaced (not appended).
func (q JoinQuery) WithSelection(selection []nodes.Node) JoinQuery {
	q.selection = append([]nodes.Node(nil), selection...)
	return q
}

// WithFilter returns a copy whose filter is the AND-combination of the
// existing filter and predicate.
func (q JoinQuery) WithFilter(predicate Filter) JoinQuery {
	q.filter = q.filter.And(predicate)
	return q
}

// WithOrdering returns a copy with the ordering replaced.
func (q JoinQuery) WithOrdering(ordering Ordering) JoinQuery {
	q.ordering = ordering
	return q
}

// Reversed returns a copy with the ordering reversed. A query with no
// ordering is returned unchanged.
func (q JoinQuery) Reversed() JoinQuery {
	q.ordering = q.ordering.Reversed()
	return q
}

// Qualified returns a copy whose source is scoped under alias. Children are
// not touched; finalization qualifies the whole tree.
func (q JoinQuery) Qualified(alias *nodes.TableAlias) JoinQuery {
	q.source = q.source.qualified(alias)
	return q
}

// Attach inserts join under key, or merges it with the existing child at
// that key. A merge failure means the same key was used for two
// structurally incompatible joins; the caller must re-key one side.
func (q JoinQuery) Attach(key string, join Join) (JoinQuery, error) {
	children := make([]childJoin, len(q.children))
	copy(children, q.children)
	q.children = children

	for i, c := range q.children {
		if c.key != key {
			continue
		}
		merged, err := c.join.Merge(join)
		if err != nil {
			return JoinQuery{}, fmt.Errorf("%w %q: %w", ErrAmbiguousKey, key, err)
		}
		q.children[i] = childJoin{key: key, join: merged}
		return q, nil
	}
	q.children = append(q.children, childJoin{key: key, join: join})
	return q, nil
}

// Merge combines two queries over the same table into one equivalent query:
//   - filters AND-combine;
//   - selection and ordering use replace-if-nonempty semantics (the other
//     operand wins whenever it is non-empty), so a later Select/Order call
//     overrides an earlier default without knowing what the default was;
//   - children merge key-by-key, preserving the receiver's order and
//     appending the other side's new keys after.
//
// Neither operand is mutated.
func (q JoinQuery) Merge(other JoinQuery) (JoinQuery, error) {
	if !q.source.mergeableWith(other.source) {
		return JoinQuery{}, fmt.Errorf("%w: tables %q and %q differ",
			ErrCannotMerge, q.source.TableName(), other.source.TableName())
	}

	merged := JoinQuery{source: q.source}

	merged.selection = q.selection
	if len(other.selection) > 0 {
		merged.selection = other.selection
	}

	merged.filter = q.filter.And(other.filter)

	merged.ordering = q.ordering
	if !other.ordering.IsEmpty() {
		merged.ordering = other.ordering
	}

	merged.children = append([]childJoin(nil), q.children...)
	for _, oc := range other.children {
		found := false
		for i, c := range merged.children {
			if c.key != oc.key {
				continue
			}
			m, err := c.join.Merge(oc.join)
			if err != nil {
				return JoinQuery{}, fmt.Errorf("key %q: %w", oc.key, err)
			}
			merged.children[i] = childJoin{key: c.key, join: m}
			found = true
			break
		}
		if !found {
			merged.children = append(merged.children, oc)
		}
	}
	return merged, nil
}
