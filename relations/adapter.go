package relations

import (
	"fmt"

	"github.com/bawdo/joinery/nodes"
)

// RowAdapter maps one node of a finalized tree onto the flat result row: a
// half-open column range [Start, End) holding the node's own columns, plus
// named nested adapters for its children, in composition order.
//
// A node that contributes no columns and has no column-bearing descendants
// yields no adapter at all; its parent skips the scope entirely. That is
// how pivot tables of through-associations stay invisible in decoded rows.
type RowAdapter struct {
	Start  int
	End    int
	Scopes []ScopedAdapter
}

// ScopedAdapter is one named child range of a RowAdapter.
type ScopedAdapter struct {
	Key     string
	Adapter *RowAdapter
}

// Width returns the number of columns owned directly by this node,
// excluding nested scopes.
func (a *RowAdapter) Width() int {
	return a.End - a.Start
}

// Scope returns the nested adapter at key.
func (a *RowAdapter) Scope(key string) (*RowAdapter, bool) {
	for _, s := range a.Scopes {
		if s.Key == key {
			return s.Adapter, true
		}
	}
	return nil, false
}

// RowAdapter derives the adapter for the whole tree. Star selections need
// the schema to know how many columns they expand to, which is why the
// derivation takes a ResolveContext.
func (f FinalizedQuery) RowAdapter(ctx ResolveContext) (*RowAdapter, error) {
	adapter, _, err := f.rowAdapter(ctx, 0)
	return adapter, err
}

// rowAdapter builds the adapter rooted at start, returning the next free
// column index. Returns a nil adapter for a node with zero own columns and
// no non-nil child adapters.
func (f FinalizedQuery) rowAdapter(ctx ResolveContext, start int) (*RowAdapter, int, error) {
	end := start
	for _, sel := range f.selection {
		w, err := selectionWidth(ctx, sel)
		if err != nil {
			return nil, 0, err
		}
		end += w
	}

	adapter := &RowAdapter{Start: start, End: end}
	next := end
	for _, c := range f.children {
		child, n, err := c.join.Query.rowAdapter(ctx, next)
		if err != nil {
			return nil, 0, fmt.Errorf("key %q: %w", c.key, err)
		}
		next = n
		if child != nil {
			adapter.Scopes = append(adapter.Scopes, ScopedAdapter{Key: c.key, Adapter: child})
		}
	}

	if adapter.Width() == 0 && len(adapter.Scopes) == 0 {
		return nil, next, nil
	}
	return adapter, next, nil
}

// selectionWidth returns how many result columns a selection node expands
// to: the table's column count for a star, one for anything else.
func selectionWidth(ctx ResolveContext, sel nodes.Node) (int, error) {
	star, ok := sel.(*nodes.StarNode)
	if !ok {
		return 1, nil
	}
	if star.Relation == nil {
		return 0, fmt.Errorf("relations: cannot size an unqualified star selection")
	}
	return ctx.ColumnCount(nodes.TableSourceName(star.Relation))
}
