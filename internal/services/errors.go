package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/diewo77/colegio/internal/repository"
	"github.com/diewo77/colegio/validation"
)

var (
	ErrNotFound = repository.ErrNotFound
	ErrConflict = repository.ErrConflict
)

// ValidationError carries per-field error codes for a rejected input.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f, code := range e.Violations {
		fields = append(fields, f+"="+code)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

func invalid(field, code string) error {
	return &ValidationError{Violations: validation.Violations{field: code}}
}

// AsValidation returns the violations carried by err, if any.
func AsValidation(err error) (validation.Violations, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Violations, true
	}
	return nil, false
}
