package repository

import "errors"

// ErrNotFound is returned when a document id or selector resolves to
// nothing. Services translate it into their own taxonomy.
var ErrNotFound = errors.New("not found")
