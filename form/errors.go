package form

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownField is returned when a name is not part of the form data.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnknownRule is returned when a schema names a rule kind that does not exist.
	ErrUnknownRule = errors.New("unknown rule")
	// ErrInvalidSchema is returned for schema documents that cannot be built.
	ErrInvalidSchema = errors.New("invalid form schema")
)

func unknownField(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownField, name)
}
