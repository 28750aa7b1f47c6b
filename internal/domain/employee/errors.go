package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrLookupTooWide    = errors.New("too many values in a single lookup")
)
