package visitors

import (
	"github.com/bawdo/joinery/internal/quoting"
	"github.com/bawdo/joinery/nodes"
)

// MySQLVisitor generates MySQL-dialect SQL.
// Identifiers are quoted with backticks: `table`.`column`.
type MySQLVisitor struct {
	*baseVisitor
}

// NewMySQLVisitor creates a MySQLVisitor ready for use.
// Parameterized mode is enabled by default for SQL injection protection.
// Pass WithoutParams() to disable (not recommended for production).
func NewMySQLVisitor(opts ...Option) *MySQLVisitor {
	v := &MySQLVisitor{}
	v.baseVisitor = &baseVisitor{
		outer:        v,
		quoteIdent:   quoting.Backtick,
		placeholder:  func(_ int) string { return "?" },
		parameterize: true, // Enable by default
	}
	v.applyOptions(opts)
	return v
}

// VisitOrdering strips NULLS FIRST/LAST, which MySQL does not support,
// emulating the placement with an IS NULL sort key in front.
func (v *MySQLVisitor) VisitOrdering(n *nodes.OrderingNode) string {
	if n.Nulls == nodes.NullsDefault {
		return v.baseVisitor.VisitOrdering(n)
	}
	plain := &nodes.OrderingNode{Expr: n.Expr, Direction: n.Direction}
	isNull := n.Expr.Accept(v) + " IS NULL"
	if n.Nulls == nodes.NullsFirst {
		return isNull + " DESC, " + v.baseVisitor.VisitOrdering(plain)
	}
	return isNull + " ASC, " + v.baseVisitor.VisitOrdering(plain)
}
