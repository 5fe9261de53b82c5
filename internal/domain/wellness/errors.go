package wellness

import "errors"

// Sentinel kinds for definition table errors.
var (
	ErrInvalidThreshold    = errors.New("invalid threshold ordering")
	ErrDuplicateDefinition = errors.New("duplicate metric definition")
)
