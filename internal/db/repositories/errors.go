package repositories

import "errors"

// ErrNotFound is returned by mutations that matched no row. Lookups return
// (nil, nil) instead.
var ErrNotFound = errors.New("record not found")

// Page is a limit/offset window.
type Page struct {
	Limit  int
	Offset int
}
