package accelerators

import "github.com/pkg/errors"

// ErrNotSupported indicates an optional capability the accelerator's runtime
// does not provide. Backends wrap this error so callers can distinguish "not
// supported" from genuine failures with errors.Is, and degrade gracefully
// instead of crashing.
var ErrNotSupported = errors.New("capability not supported by the accelerator runtime")
