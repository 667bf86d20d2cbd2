package world

import "errors"

// Construction failures, matchable with errors.Is.
var (
	ErrTooFewQuarks = errors.New("world: need at least 3 quarks")
	ErrBadCapacity  = errors.New("world: arena capacities must be positive")
	ErrBadBoxSize   = errors.New("world: box size must be positive")
)
