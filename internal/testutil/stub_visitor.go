// Package testutil provides shared test helpers for the joinery project.
package testutil

import "github.com/bawdo/joinery/nodes"

// StubVisitor implements nodes.Visitor with minimal return values for testing.
// Methods return meaningful short strings to aid in test assertions.
type StubVisitor struct{}

var _ nodes.Visitor = StubVisitor{}

func (sv StubVisitor) VisitTable(n *nodes.Table) string           { return n.Name }
func (sv StubVisitor) VisitTableAlias(n *nodes.TableAlias) string { return n.AliasName }
func (sv StubVisitor) VisitAttribute(n *nodes.Attribute) string {
	return nodes.RelationName(n.Relation) + "." + n.Name
}
func (sv StubVisitor) VisitLiteral(n *nodes.LiteralNode) string   { return "lit" }
func (sv StubVisitor) VisitStar(n *nodes.StarNode) string         { return "*" }
func (sv StubVisitor) VisitSqlLiteral(n *nodes.SqlLiteral) string { return n.Raw }
func (sv StubVisitor) VisitComparison(n *nodes.ComparisonNode) string {
	return n.Left.Accept(sv) + "=?" + n.Right.Accept(sv)
}
func (sv StubVisitor) VisitUnary(n *nodes.UnaryNode) string       { return "unary" }
func (sv StubVisitor) VisitAnd(n *nodes.AndNode) string           { return "and" }
func (sv StubVisitor) VisitOr(n *nodes.OrNode) string             { return "or" }
func (sv StubVisitor) VisitNot(n *nodes.NotNode) string           { return "not" }
func (sv StubVisitor) VisitIn(n *nodes.InNode) string             { return "in" }
func (sv StubVisitor) VisitBetween(n *nodes.BetweenNode) string   { return "between" }
func (sv StubVisitor) VisitGrouping(n *nodes.GroupingNode) string { return "grouping" }
func (sv StubVisitor) VisitJoin(n *nodes.JoinNode) string         { return "join" }
func (sv StubVisitor) VisitOrdering(n *nodes.OrderingNode) string { return "ordering" }
func (sv StubVisitor) VisitSelectCore(n *nodes.SelectCore) string { return "select_core" }
func (sv StubVisitor) VisitAlias(n *nodes.AliasNode) string       { return "alias" }
func (sv StubVisitor) VisitBindParam(n *nodes.BindParamNode) string {
	return "bind_param"
}

// StubParamVisitor implements nodes.Visitor and nodes.Parameterizer for testing.
type StubParamVisitor struct {
	StubVisitor
	params []any
}

var _ nodes.Visitor = (*StubParamVisitor)(nil)
var _ nodes.Parameterizer = (*StubParamVisitor)(nil)

func (sv *StubParamVisitor) Params() []any { return sv.params }
func (sv *StubParamVisitor) Reset()        { sv.params = nil }
