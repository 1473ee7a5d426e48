package matching

import "errors"

var (
	// ErrInvalidPower rejects an injection whose tier, side, count or
	// propagation mode cannot be applied. It is never retried.
	ErrInvalidPower = errors.New("invalid power")
	// ErrBrokenTree reports a parent chain that cannot be walked: a missing
	// ancestor, a non-root node without a parent, or a cycle.
	ErrBrokenTree = errors.New("broken member tree")
)
