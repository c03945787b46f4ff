package leads

import "errors"

// Sentinel errors for the leads service layer.
var (
	ErrNotFound         = errors.New("booking not found")
	ErrStatusNotAllowed = errors.New("action status not allowed for lead tier")
	ErrEmptyUpdate      = errors.New("nothing to update")
	ErrEmptyQuestion    = errors.New("question is required")
)
