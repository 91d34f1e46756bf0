package chancfg

import (
	"errors"
	"fmt"
)

// ErrInvalidJSON marks a request body that could not be parsed at all.
var ErrInvalidJSON = errors.New("invalid json")

// InvalidConfigError marks a request that parsed but is semantically invalid.
// The store is guaranteed unchanged when one is returned.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalidf(field, format string, args ...any) error {
	return &InvalidConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
