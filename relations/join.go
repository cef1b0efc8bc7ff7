package relations

// JoinKind distinguishes joins whose matched row must exist (required,
// INNER JOIN) from joins where it may be absent (optional, LEFT OUTER JOIN).
type JoinKind int

const (
	JoinOptional JoinKind = iota
	JoinRequired
)

// String returns the display name for this join kind.
func (k JoinKind) String() string {
	if k == JoinRequired {
		return "required"
	}
	return "optional"
}

// Join is one edge of the join tree: how to reach a subtree from its
// parent. A Join is owned exclusively by its parent JoinQuery's child
// collection and holds no back-reference, so the structure stays a tree.
type Join struct {
	Kind      JoinKind
	Condition JoinCondition
	Query     JoinQuery
}

// Merge combines two joins attached under the same key. Conditions must be
// structurally equal; subtrees merge via JoinQuery.Merge. The merged kind
// is required if either side is required: a row that must exist under any
// composition path must exist under the merged path.
func (j Join) Merge(other Join) (Join, error) {
	if !j.Condition.Equal(other.Condition) {
		return Join{}, ErrCannotMerge
	}
	query, err := j.Query.Merge(other.Query)
	if err != nil {
		return Join{}, err
	}
	kind := JoinOptional
	if j.Kind == JoinRequired || other.Kind == JoinRequired {
		kind = JoinRequired
	}
	return Join{Kind: kind, Condition: j.Condition, Query: query}, nil
}
