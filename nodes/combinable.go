package nodes

// Combinable provides logical chaining methods to types that embed it.
// The self field must be set to the embedding node.
type Combinable struct {
	self Node
}

// And creates an AndNode combining self with other.
func (c Combinable) And(other Node) *AndNode {
	return NewAnd(c.self, other)
}

// Or creates an OrNode wrapped in a GroupingNode for correct precedence.
func (c Combinable) Or(other Node) *GroupingNode {
	return NewGrouping(NewOr(c.self, other))
}

// Not creates a NotNode negating self.
func (c Combinable) Not() *NotNode {
	return NewNot(c.self)
}
