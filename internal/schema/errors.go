package schema

import "errors"

// ErrUnknownDialect indicates a dialect name that has no type mapping.
var ErrUnknownDialect = errors.New("unknown SQL dialect")
