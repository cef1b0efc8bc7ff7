package relations

import (
	"testing"

	"github.com/bawdo/joinery/internal/testutil"
)

func TestJoinKindString(t *testing.T) {
	t.Parallel()
	testutil.AssertEqual(t, JoinRequired.String(), "required")
	testutil.AssertEqual(t, JoinOptional.String(), "optional")
}

func TestJoinMergeRequiredDominates(t *testing.T) {
	t.Parallel()
	db := gameSchema()

	cases := []struct {
		a, b, want JoinKind
	}{
		{JoinOptional, JoinOptional, JoinOptional},
		{JoinOptional, JoinRequired, JoinRequired},
		{JoinRequired, JoinOptional, JoinRequired},
		{JoinRequired, JoinRequired, JoinRequired},
	}
	for _, c := range cases {
		a, err := teamAssoc(t, db).join(c.a)
		testutil.AssertNoError(t, err)
		b, err := teamAssoc(t, db).join(c.b)
		testutil.AssertNoError(t, err)

		merged, err := a.Merge(b)
		testutil.AssertNoError(t, err)
		if merged.Kind != c.want {
			t.Errorf("%v + %v: expected %v, got %v", c.a, c.b, c.want, merged.Kind)
		}
	}
}

func TestJoinMergeRejectsDifferentConditions(t *testing.T) {
	t.Parallel()
	db := gameSchema()

	a, err := teamAssoc(t, db).join(JoinRequired)
	testutil.AssertNoError(t, err)
	b, err := draftedByAssoc(t, db).join(JoinRequired)
	testutil.AssertNoError(t, err)

	_, err = a.Merge(b)
	testutil.AssertErrorIs(t, err, ErrCannotMerge)
}

func TestJoinMergeKeepsCondition(t *testing.T) {
	t.Parallel()
	db := gameSchema()

	a, err := teamAssoc(t, db).join(JoinOptional)
	testutil.AssertNoError(t, err)
	b, err := teamAssoc(t, db).join(JoinOptional)
	testutil.AssertNoError(t, err)

	merged, err := a.Merge(b)
	testutil.AssertNoError(t, err)
	if !merged.Condition.Equal(a.Condition) {
		t.Error("expected the merged join to keep the shared condition")
	}
}
