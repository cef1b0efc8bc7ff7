package nodes

// AndNode represents a logical AND between two expressions.
type AndNode struct {
	Combinable
	Left  Node
	Right Node
}

func (n *AndNode) Accept(v Visitor) string { return v.VisitAnd(n) }

// NewAnd creates an AndNode with its embedded structs initialised.
func NewAnd(left, right Node) *AndNode {
	n := &AndNode{Left: left, Right: right}
	n.self = n
	return n
}

// AndAll chains nodes with AND. Returns nil for an empty slice and the
// node itself for a single-element slice.
func AndAll(nds []Node) Node {
	if len(nds) == 0 {
		return nil
	}
	result := nds[0]
	for i := 1; i < len(nds); i++ {
		result = NewAnd(result, nds[i])
	}
	return result
}

// OrNode represents a logical OR between two expressions.
type OrNode struct {
	Combinable
	Left  Node
	Right Node
}

func (n *OrNode) Accept(v Visitor) string { return v.VisitOr(n) }

// NewOr creates an OrNode with its embedded structs initialised.
func NewOr(left, right Node) *OrNode {
	n := &OrNode{Left: left, Right: right}
	n.self = n
	return n
}

// NotNode represents a logical NOT of an expression.
type NotNode struct {
	Combinable
	Expr Node
}

func (n *NotNode) Accept(v Visitor) string { return v.VisitNot(n) }

// NewNot creates a NotNode with its embedded structs initialised.
func NewNot(expr Node) *NotNode {
	n := &NotNode{Expr: expr}
	n.self = n
	return n
}
