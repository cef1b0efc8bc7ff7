package relations

import (
	"github.com/bawdo/joinery/nodes"
	"github.com/bawdo/joinery/schema"
)

// Association is a declared, reusable relationship between two tables. An
// association is a value: the customization methods return modified copies,
// so one declaration can be composed into any number of requests, each with
// its own selection, filter, or ordering.
//
// An association does not know whether its join is required or optional;
// the request that composes it decides that.
type Association interface {
	// Key is the name the association is attached under and the scope name
	// its columns decode into.
	Key() string

	// ForKey returns a copy attached under a different key. Re-keying is
	// how two structurally different joins to the same table coexist in
	// one tree.
	ForKey(key string) Association

	// Select returns a copy whose joined rows project the given columns
	// instead of the whole row.
	Select(selection ...nodes.Node) Association

	// Filter returns a copy with predicate AND-combined into the joined
	// rows' filter.
	Filter(predicate Filter) Association

	// Order returns a copy with the joined rows' ordering replaced.
	Order(ordering Ordering) Association

	// withoutSelection returns a copy whose joined rows contribute no
	// result columns. Used when an association is joined for filtering
	// only.
	withoutSelection() Association

	// join materializes the association as one edge of a join tree.
	join(kind JoinKind) (Join, error)
}

// DirectJoin is an association satisfied by a single join edge: the joined
// table is reached directly through one foreign key.
type DirectJoin struct {
	key       string
	condition JoinCondition
	query     JoinQuery
}

// BelongsTo declares an association where the origin table holds the
// foreign key: the joined table is the foreign key's destination.
func BelongsTo(key string, fk schema.ForeignKey) DirectJoin {
	return DirectJoin{
		key:       key,
		condition: ConditionFromForeignKey(fk, true),
		query:     NewJoinQuery(fk.To),
	}
}

// HasOne declares an association where the joined table holds the foreign
// key pointing back at the origin, matching at most one row.
func HasOne(key, table string, fk schema.ForeignKey) DirectJoin {
	return DirectJoin{
		key:       key,
		condition: ConditionFromForeignKey(fk, false),
		query:     NewJoinQuery(table),
	}
}

// HasMany declares an association where the joined table holds the foreign
// key pointing back at the origin, matching any number of rows.
func HasMany(key, table string, fk schema.ForeignKey) DirectJoin {
	return DirectJoin{
		key:       key,
		condition: ConditionFromForeignKey(fk, false),
		query:     NewJoinQuery(table),
	}
}

func (d DirectJoin) Key() string { return d.key }

func (d DirectJoin) ForKey(key string) Association {
	d.key = key
	return d
}

func (d DirectJoin) Select(selection ...nodes.Node) Association {
	d.query = d.query.WithSelection(selection)
	return d
}

func (d DirectJoin) Filter(predicate Filter) Association {
	d.query = d.query.WithFilter(predicate)
	return d
}

func (d DirectJoin) Order(ordering Ordering) Association {
	d.query = d.query.WithOrdering(ordering)
	return d
}

func (d DirectJoin) withoutSelection() Association {
	d.query = d.query.WithSelection(nil)
	return d
}

func (d DirectJoin) join(kind JoinKind) (Join, error) {
	return Join{Kind: kind, Condition: d.condition, Query: d.query}, nil
}

// ThroughPivot is an association reached across an intermediate (pivot)
// association: origin joins the pivot, the pivot joins the target. The
// pivot contributes no result columns; only the target's rows appear in
// the decoded output, directly under the through-association's key.
//
// The target edge is always required relative to the pivot: a pivot row
// without its target is meaningless. A consequence is that a through
// association cannot be composed optionally, since that would put a
// required join beneath an optional one; such a composition fails with
// ErrUnsupportedJoin.
type ThroughPivot struct {
	key    string
	pivot  Association
	target Association
}

// HasOneThrough declares a to-one association reached across pivot.
func HasOneThrough(key string, pivot, target Association) ThroughPivot {
	return ThroughPivot{key: key, pivot: pivot, target: target}
}

// HasManyThrough declares a to-many association reached across pivot.
func HasManyThrough(key string, pivot, target Association) ThroughPivot {
	return ThroughPivot{key: key, pivot: pivot, target: target}
}

func (t ThroughPivot) Key() string { return t.key }

func (t ThroughPivot) ForKey(key string) Association {
	t.key = key
	return t
}

// Select narrows the target's projection; the pivot never projects.
func (t ThroughPivot) Select(selection ...nodes.Node) Association {
	t.target = t.target.Select(selection...)
	return t
}

// Filter applies to the target's rows, not the pivot's.
func (t ThroughPivot) Filter(predicate Filter) Association {
	t.target = t.target.Filter(predicate)
	return t
}

// Order applies to the target's rows.
func (t ThroughPivot) Order(ordering Ordering) Association {
	t.target = t.target.Order(ordering)
	return t
}

func (t ThroughPivot) withoutSelection() Association {
	t.target = t.target.withoutSelection()
	return t
}

func (t ThroughPivot) join(kind JoinKind) (Join, error) {
	pivotJoin, err := t.pivot.withoutSelection().join(kind)
	if err != nil {
		return Join{}, err
	}
	targetJoin, err := t.target.join(JoinRequired)
	if err != nil {
		return Join{}, err
	}
	query, err := pivotJoin.Query.Attach(t.key, targetJoin)
	if err != nil {
		return Join{}, err
	}
	pivotJoin.Query = query
	return pivotJoin, nil
}
