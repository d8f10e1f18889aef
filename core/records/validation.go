package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidationError collects every field failure found in one submission.
type ValidationError struct {
	Fields []FieldError
	cause  error
}

// Unwrap exposes a read failure underneath a body decoding error.
func (e *ValidationError) Unwrap() error { return e.cause }

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for i := range e.Fields {
		parts = append(parts, e.Fields[i].Error())
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// decodeError converts a JSON decoding failure into a ValidationError.
func decodeError(err error) error {
	if err == nil {
		return nil
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		return &ValidationError{Fields: []FieldError{*fe}}
	}
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		field := te.Field
		if field == "" {
			field = "body"
		}
		return &ValidationError{Fields: []FieldError{{Field: field, Message: fmt.Sprintf("expected %s, got %s", te.Type, te.Value)}}}
	}
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return &ValidationError{Fields: []FieldError{{Field: "body", Message: fmt.Sprintf("malformed JSON at offset %d", se.Offset)}}}
	}
	return &ValidationError{Fields: []FieldError{{Field: "body", Message: err.Error()}}, cause: err}
}
