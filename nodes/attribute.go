package nodes

// Attribute represents a column reference bound to a table or table alias.
type Attribute struct {
	Predications
	Combinable
	Name     string
	Relation Node // *Table or *TableAlias
}

// NewAttribute creates an Attribute with Predications and Combinable
// properly initialized to reference the new Attribute as self.
func NewAttribute(relation Node, name string) *Attribute {
	a := &Attribute{Name: name, Relation: relation}
	a.Predications.self = a
	a.Combinable.self = a
	return a
}

func (a *Attribute) Accept(v Visitor) string { return v.VisitAttribute(a) }

// Rebound returns a copy of the Attribute bound to a different relation.
// The alias-qualification pass uses this to rewrite column references to
// point at their assigned table alias.
func (a *Attribute) Rebound(relation Node) *Attribute {
	return NewAttribute(relation, a.Name)
}
