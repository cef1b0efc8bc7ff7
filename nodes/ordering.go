package nodes

// OrderDirection represents ASC or DESC ordering.
type OrderDirection int

const (
	Asc OrderDirection = iota
	Desc
)

// NullsDirection controls NULLS FIRST/LAST positioning.
type NullsDirection int

const (
	NullsDefault NullsDirection = iota
	NullsFirst
	NullsLast
)

// OrderingNode represents an ORDER BY expression with a direction.
type OrderingNode struct {
	Expr      Node
	Direction OrderDirection
	Nulls     NullsDirection
	Combinable
}

func (n *OrderingNode) Accept(v Visitor) string { return v.VisitOrdering(n) }

// NewOrdering creates an OrderingNode with its embedded structs initialised.
func NewOrdering(expr Node, direction OrderDirection, nulls NullsDirection) *OrderingNode {
	n := &OrderingNode{Expr: expr, Direction: direction, Nulls: nulls}
	n.self = n
	return n
}

// Reversed returns a copy with the direction flipped. An explicit NULLS
// placement flips with it so the reversal is a true mirror of the order.
func (n *OrderingNode) Reversed() *OrderingNode {
	r := &OrderingNode{Expr: n.Expr, Direction: Asc, Nulls: n.Nulls}
	if n.Direction == Asc {
		r.Direction = Desc
	}
	switch n.Nulls {
	case NullsFirst:
		r.Nulls = NullsLast
	case NullsLast:
		r.Nulls = NullsFirst
	}
	r.self = r
	return r
}

// ReverseOrdering flips the direction of an ordering term. A bare
// expression is treated as implicitly ascending and wrapped descending.
func ReverseOrdering(n Node) Node {
	if o, ok := n.(*OrderingNode); ok {
		return o.Reversed()
	}
	r := &OrderingNode{Expr: n, Direction: Desc}
	r.self = r
	return r
}
