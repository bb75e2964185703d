package transform

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord is returned when a raw table breaks the adapter contract,
// e.g. a record without a key. It is the only error that aborts a transform.
var ErrInvalidRecord = errors.New("invalid raw record")

// FieldDerivationError reports a single field that could not be derived.
// The field keeps its previous value and the rest of the transform goes on.
type FieldDerivationError struct {
	Source string
	Rule   string
	Field  string
	Value  string
	Cause  error
}

func (e *FieldDerivationError) Error() string {
	prefix := e.Field
	if e.Source != "" {
		prefix = e.Source + "/" + prefix
	}
	if e.Value != "" {
		return fmt.Sprintf("derive %s from %q: %v", prefix, e.Value, e.Cause)
	}
	return fmt.Sprintf("derive %s: %v", prefix, e.Cause)
}

func (e *FieldDerivationError) Unwrap() error { return e.Cause }

func fieldErr(field, value string, cause error) error {
	return &FieldDerivationError{Field: field, Value: value, Cause: cause}
}

// flatten expands joined errors into FieldDerivationErrors, wrapping any
// foreign error under the rule name.
func flatten(err error, rule string) []*FieldDerivationError {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []*FieldDerivationError
		for _, e := range joined.Unwrap() {
			out = append(out, flatten(e, rule)...)
		}
		return out
	}
	var fe *FieldDerivationError
	if errors.As(err, &fe) {
		if fe.Rule == "" {
			fe.Rule = rule
		}
		return []*FieldDerivationError{fe}
	}
	return []*FieldDerivationError{{Rule: rule, Field: rule, Cause: err}}
}
