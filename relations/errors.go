package relations

import "errors"

var (
	// ErrCannotMerge reports that two join trees attached under the same key
	// are structurally incompatible: different underlying tables, or join
	// conditions that are not structurally equal.
	ErrCannotMerge = errors.New("relations: cannot merge")

	// ErrAmbiguousKey reports that the same association key was used for two
	// joins that cannot merge. The caller must disambiguate one side with
	// ForKey before composing.
	ErrAmbiguousKey = errors.New("relations: ambiguous association key")

	// ErrUnsupportedJoin reports a required join nested beneath an optional
	// one. Emitting correct SQL for that shape needs a NOT (...) guard around
	// the outer join condition, which is not implemented; the composition is
	// rejected rather than silently producing wrong SQL.
	ErrUnsupportedJoin = errors.New("relations: required join beneath an optional join is not supported")
)
