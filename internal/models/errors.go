package models

import "errors"

// ErrNotFound is wrapped by every repository when a lookup has no match.
var ErrNotFound = errors.New("not found")
