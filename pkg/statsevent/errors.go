package statsevent

import "errors"

// ErrAlreadyBuilt indicates Build was called on a Builder that already
// produced its Event.
var ErrAlreadyBuilt = errors.New("event already built")
