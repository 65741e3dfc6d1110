package repository

import "errors"

// ErrNotFound is returned when an entity does not exist in the current
// user's scope. A row owned by another user is indistinguishable from a
// missing row.
var ErrNotFound = errors.New("not found")
