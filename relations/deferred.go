package relations

import (
	"github.com/bawdo/joinery/nodes"
)

// ResolveContext supplies the schema facts a finalized query needs at
// statement-build time. schema.Database implements it; tests can supply a
// fixed-width stub.
type ResolveContext interface {
	// ColumnCount returns the number of columns of a table, used to size
	// the column range a qualified star occupies in the result row.
	ColumnCount(table string) (int, error)
}

// Filter is a predicate that may only be resolvable at statement-build time
// (for example, one that needs to look at the schema). Immediate and
// deferred filters combine freely; AND-combination of a deferred filter
// stays deferred until Resolve.
//
// The zero Filter means "no filter".
type Filter struct {
	node nodes.Node
	fn   func(ResolveContext) (nodes.Node, error)
}

// FilterNode wraps an immediate predicate node.
func FilterNode(n nodes.Node) Filter {
	return Filter{node: n}
}

// DeferredFilter wraps a predicate computed against a ResolveContext when
// the statement is built.
func DeferredFilter(fn func(ResolveContext) (nodes.Node, error)) Filter {
	return Filter{fn: fn}
}

// IsZero reports whether no filter is present.
func (f Filter) IsZero() bool {
	return f.node == nil && f.fn == nil
}

// And combines two filters with AND. If either side is zero the other is
// returned unchanged. The combination is lazy: deferred operands are not
// resolved here.
func (f Filter) And(other Filter) Filter {
	if f.IsZero() {
		return other
	}
	if other.IsZero() {
		return f
	}
	if f.fn == nil && other.fn == nil {
		return FilterNode(nodes.NewAnd(f.node, other.node))
	}
	left, right := f, other
	return DeferredFilter(func(ctx ResolveContext) (nodes.Node, error) {
		l, err := left.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		r, err := right.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		return nodes.NewAnd(l, r), nil
	})
}

// Resolve produces the predicate node. Returns (nil, nil) for a zero filter.
func (f Filter) Resolve(ctx ResolveContext) (nodes.Node, error) {
	if f.fn != nil {
		return f.fn(ctx)
	}
	return f.node, nil
}

// mapped returns a filter whose resolved node is passed through transform.
// Used by finalization to qualify column references with the assigned
// alias; the rewrite of a deferred filter stays deferred.
func (f Filter) mapped(transform func(nodes.Node) nodes.Node) Filter {
	if f.IsZero() {
		return f
	}
	if f.fn == nil {
		return FilterNode(transform(f.node))
	}
	inner := f.fn
	return DeferredFilter(func(ctx ResolveContext) (nodes.Node, error) {
		n, err := inner(ctx)
		if err != nil {
			return nil, err
		}
		return transform(n), nil
	})
}

// orderingTerm is one ORDER BY entry, either an immediate node or a
// deferred producer of one or more nodes.
type orderingTerm struct {
	node nodes.Node
	fn   func(ResolveContext) ([]nodes.Node, error)
}

// Ordering is an ordered list of ORDER BY terms with an optional pending
// reversal. The zero Ordering is empty.
type Ordering struct {
	terms    []orderingTerm
	reversed bool
}

// OrderBy builds an Ordering from immediate ordering terms.
func OrderBy(terms ...nodes.Node) Ordering {
	ts := make([]orderingTerm, len(terms))
	for i, n := range terms {
		ts[i] = orderingTerm{node: n}
	}
	return Ordering{terms: ts}
}

// DeferredOrdering builds an Ordering from a single deferred producer.
func DeferredOrdering(fn func(ResolveContext) ([]nodes.Node, error)) Ordering {
	return Ordering{terms: []orderingTerm{{fn: fn}}}
}

// IsEmpty reports whether the ordering has no terms. Emptiness is known
// without resolving deferred terms, which is what merge's
// replace-if-nonempty rule needs.
func (o Ordering) IsEmpty() bool {
	return len(o.terms) == 0
}

// Reversed returns the ordering with the reversal flag flipped. Reversal of
// an empty ordering is a no-op. The flip is applied to each term at Resolve
// time so deferred terms reverse correctly too.
func (o Ordering) Reversed() Ordering {
	if o.IsEmpty() {
		return o
	}
	return Ordering{terms: o.terms, reversed: !o.reversed}
}

// Resolve produces the ordering nodes, applying any pending reversal.
func (o Ordering) Resolve(ctx ResolveContext) ([]nodes.Node, error) {
	var out []nodes.Node
	for _, t := range o.terms {
		if t.fn != nil {
			ns, err := t.fn(ctx)
			if err != nil {
				return nil, err
			}
			out = append(out, ns...)
			continue
		}
		out = append(out, t.node)
	}
	if o.reversed {
		for i, n := range out {
			out[i] = nodes.ReverseOrdering(n)
		}
	}
	return out, nil
}

// mapped returns an ordering whose resolved terms pass through transform.
func (o Ordering) mapped(transform func(nodes.Node) nodes.Node) Ordering {
	if o.IsEmpty() {
		return o
	}
	ts := make([]orderingTerm, len(o.terms))
	for i, t := range o.terms {
		if t.fn == nil {
			ts[i] = orderingTerm{node: transform(t.node)}
			continue
		}
		inner := t.fn
		ts[i] = orderingTerm{fn: func(ctx ResolveContext) ([]nodes.Node, error) {
			ns, err := inner(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]nodes.Node, len(ns))
			for j, n := range ns {
				out[j] = transform(n)
			}
			return out, nil
		}}
	}
	return Ordering{terms: ts, reversed: o.reversed}
}
