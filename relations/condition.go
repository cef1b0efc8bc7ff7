package relations

import (
	"github.com/bawdo/joinery/nodes"
	"github.com/bawdo/joinery/schema"
)

// ColumnPair maps a column on the foreign key's origin table to the column
// it references on the destination table.
type ColumnPair struct {
	Origin      string
	Destination string
}

// JoinCondition derives the equality predicate of one join edge from a
// foreign-key column mapping.
//
// OriginIsLeft records which side of the join declares the foreign key:
// true when the origin table is the left (parent) side, as in a belongs-to
// association; false when the foreign key lives on the joined table, as in
// a has-many/has-one association.
//
// Conditions are immutable values; two conditions are interchangeable for
// merging only when structurally equal.
type JoinCondition struct {
	Mapping      []ColumnPair
	OriginIsLeft bool
}

// ConditionFromForeignKey builds a JoinCondition from resolved foreign-key
// metadata.
func ConditionFromForeignKey(fk schema.ForeignKey, originIsLeft bool) JoinCondition {
	pairs := make([]ColumnPair, len(fk.Pairs))
	for i, p := range fk.Pairs {
		pairs[i] = ColumnPair{Origin: p.Origin, Destination: p.Destination}
	}
	return JoinCondition{Mapping: pairs, OriginIsLeft: originIsLeft}
}

// Equal reports structural equality: same ordered mapping, same orientation.
func (c JoinCondition) Equal(other JoinCondition) bool {
	if c.OriginIsLeft != other.OriginIsLeft || len(c.Mapping) != len(other.Mapping) {
		return false
	}
	for i, p := range c.Mapping {
		if p != other.Mapping[i] {
			return false
		}
	}
	return true
}

// Predicate derives the ON-clause equality predicate between the left
// (parent) alias and the right (joined) alias: one equality per column
// pair, AND-combined. The joined table's column is always the left operand
// of each comparison.
func (c JoinCondition) Predicate(left, right *nodes.TableAlias) nodes.Node {
	preds := make([]nodes.Node, len(c.Mapping))
	for i, p := range c.Mapping {
		if c.OriginIsLeft {
			preds[i] = right.Col(p.Destination).Eq(left.Col(p.Origin))
		} else {
			preds[i] = right.Col(p.Origin).Eq(left.Col(p.Destination))
		}
	}
	return nodes.AndAll(preds)
}
