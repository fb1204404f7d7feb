package core

import "errors"

// ErrNotFound is returned when a requested record does not exist. Handlers
// translate it to a 404.
var ErrNotFound = errors.New("not found")

// ErrInvalidState is returned when an operation is requested against a record
// whose current status does not permit it. Handlers translate it to a 409.
var ErrInvalidState = errors.New("invalid state for operation")
