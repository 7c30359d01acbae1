package validation

import (
	"errors"
	"strings"
)

// ErrInvalid is matched by every *ValidationError via errors.Is.
var ErrInvalid = errors.New("invalid evaluation")

// Violation codes.
const (
	CodeRequired      = "required"
	CodeNotInteger    = "not_integer"
	CodeNotPositive   = "not_positive"
	CodeInvalidChoice = "invalid_choice"
	CodeMissingKeys   = "missing_keys"
	CodeUnknownKeys   = "unknown_keys"
	CodeOutOfRange    = "out_of_range"
	CodeWrongType     = "wrong_type"
)

// Violation describes one broken rule.
type Violation struct {
	Field   string   `json:"field"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Keys    []string `json:"keys,omitempty"`
}

// ValidationError lists every rule a submission violated, in rule order.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Field + ": " + v.Message
	}
	return ErrInvalid.Error() + ": " + strings.Join(msgs, "; ")
}

// Is makes errors.Is(err, ErrInvalid) hold.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// Fields returns the violated field names in rule order.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		out[i] = v.Field
	}
	return out
}

// Has reports whether field has at least one violation.
func (e *ValidationError) Has(field string) bool {
	_, ok := e.Find(field)
	return ok
}

// Find returns the first violation for field.
func (e *ValidationError) Find(field string) (Violation, bool) {
	for _, v := range e.Violations {
		if v.Field == field {
			return v, true
		}
	}
	return Violation{}, false
}
