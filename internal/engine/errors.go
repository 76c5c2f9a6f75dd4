package engine

import "errors"

var (
	// ErrDataContract marks corrupt input data: malformed catalog entries, zero stat thresholds.
	ErrDataContract = errors.New("data contract violation")
	// ErrInvalidAllocation is returned for a character point-buy that breaks the creation rules.
	ErrInvalidAllocation = errors.New("invalid stat allocation")
)
