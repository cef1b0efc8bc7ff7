package relations

import (
	"github.com/bawdo/joinery/managers"
	"github.com/bawdo/joinery/nodes"
)

// Request is the composition front door: a root table plus a chain of
// association compositions and root-level refinements, accumulated into a
// join tree. Requests are values; every method returns a new Request, and
// the first composition error sticks and short-circuits the rest of the
// chain, so call sites check Err (or the error from Finalize) once at the
// end.
type Request struct {
	query JoinQuery
	err   error
}

// NewRequest starts a request over one root table, selecting its whole row.
func NewRequest(table string) Request {
	return Request{query: NewJoinQuery(table)}
}

// RequestFor wraps an already-built join tree.
func RequestFor(query JoinQuery) Request {
	return Request{query: query}
}

// Err returns the first error produced by the composition chain.
func (r Request) Err() error { return r.err }

// Query returns the accumulated join tree.
func (r Request) Query() (JoinQuery, error) {
	return r.query, r.err
}

func (r Request) compose(kind JoinKind, project bool, assocs []Association) Request {
	if r.err != nil {
		return r
	}
	for _, assoc := range assocs {
		if !project {
			assoc = assoc.withoutSelection()
		}
		join, err := assoc.join(kind)
		if err != nil {
			r.err = err
			return r
		}
		r.query, err = r.query.Attach(assoc.Key(), join)
		if err != nil {
			r.err = err
			return r
		}
	}
	return r
}

// IncludingRequired composes associations whose rows must exist; their
// columns appear in the result under each association's key.
func (r Request) IncludingRequired(assocs ...Association) Request {
	return r.compose(JoinRequired, true, assocs)
}

// IncludingOptional composes associations whose rows may be absent; their
// columns appear in the result (all NULL when absent).
func (r Request) IncludingOptional(assocs ...Association) Request {
	return r.compose(JoinOptional, true, assocs)
}

// JoiningRequired composes associations for filtering only: the join
// constrains the root rows but contributes no result columns.
func (r Request) JoiningRequired(assocs ...Association) Request {
	return r.compose(JoinRequired, false, assocs)
}

// JoiningOptional composes associations for filtering only, without
// requiring the joined row to exist.
func (r Request) JoiningOptional(assocs ...Association) Request {
	return r.compose(JoinOptional, false, assocs)
}

// Select replaces the root row's projection.
func (r Request) Select(selection ...nodes.Node) Request {
	if r.err != nil {
		return r
	}
	r.query = r.query.WithSelection(selection)
	return r
}

// Filter AND-combines predicate into the root filter.
func (r Request) Filter(predicate Filter) Request {
	if r.err != nil {
		return r
	}
	r.query = r.query.WithFilter(predicate)
	return r
}

// Where is shorthand for Filter(FilterNode(condition)).
func (r Request) Where(condition nodes.Node) Request {
	return r.Filter(FilterNode(condition))
}

// Order replaces the root ordering.
func (r Request) Order(ordering Ordering) Request {
	if r.err != nil {
		return r
	}
	r.query = r.query.WithOrdering(ordering)
	return r
}

// Reversed reverses the root ordering.
func (r Request) Reversed() Request {
	if r.err != nil {
		return r
	}
	r.query = r.query.Reversed()
	return r
}

// Finalize runs the alias-assignment and qualification pass over the
// accumulated tree.
func (r Request) Finalize() (FinalizedQuery, error) {
	if r.err != nil {
		return FinalizedQuery{}, r.err
	}
	return r.query.Finalize(), nil
}

// Manager builds the SELECT statement for the accumulated tree and the row
// adapter describing its column layout. The returned manager accepts
// transformer plugins and further clauses (LIMIT, OFFSET) before SQL
// generation.
func (r Request) Manager(ctx ResolveContext) (*managers.SelectManager, *RowAdapter, error) {
	f, err := r.Finalize()
	if err != nil {
		return nil, nil, err
	}

	adapter, err := f.RowAdapter(ctx)
	if err != nil {
		return nil, nil, err
	}
	joins, err := f.JoinNodes(ctx)
	if err != nil {
		return nil, nil, err
	}
	where, err := f.Filter().Resolve(ctx)
	if err != nil {
		return nil, nil, err
	}
	orders, err := f.FlatOrdering(ctx)
	if err != nil {
		return nil, nil, err
	}

	m := managers.NewSelectManager(f.Source().Relation()).
		Select(f.FlatSelection()...).
		AddJoins(joins...).
		Order(orders...)
	if where != nil {
		m.Where(where)
	}
	return m, adapter, nil
}

// ToSQL builds the statement and renders it with the given dialect visitor,
// returning SQL text, bind parameters, and the row adapter.
func (r Request) ToSQL(v nodes.Visitor, ctx ResolveContext) (string, []any, *RowAdapter, error) {
	m, adapter, err := r.Manager(ctx)
	if err != nil {
		return "", nil, nil, err
	}
	sql, params, err := m.ToSQL(v)
	if err != nil {
		return "", nil, nil, err
	}
	return sql, params, adapter, nil
}
