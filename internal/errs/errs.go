package errs

import "errors"

// Sentinel errors mapped to HTTP status codes in handlers.
var (
	ErrOwnerNotFound = errors.New("owner not found")
)
