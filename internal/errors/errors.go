// Package errors provides the tagged error values shared by the data clients,
// the orchestrator and the presentation layer.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Standard sentinel errors. Every tagged Error matches the sentinel of its kind
// through errors.Is.
var (
	ErrRateLimited        = errors.New("rate limited")
	ErrNotFound           = errors.New("not found")
	ErrPartialData        = errors.New("partial data")
	ErrBackendUnavailable = errors.New("ai backend unavailable")
	ErrMalformedResponse  = errors.New("malformed upstream response")
	ErrInputValidation    = errors.New("input validation failed")
	ErrRefreshInFlight    = errors.New("refresh already in flight")
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrDatabaseError      = errors.New("database error")
	ErrInternal           = errors.New("internal error")
)

// Kind classifies a tagged error.
type Kind string

const (
	KindRateLimited        Kind = "RATE_LIMITED"
	KindNotFound           Kind = "NOT_FOUND"
	KindPartialData        Kind = "PARTIAL_DATA"
	KindBackendUnavailable Kind = "BACKEND_UNAVAILABLE"
	KindMalformedResponse  Kind = "MALFORMED_UPSTREAM_RESPONSE"
	KindValidation         Kind = "VALIDATION"
	KindInFlight           Kind = "IN_FLIGHT"
	KindInternal           Kind = "INTERNAL"
)

func (k Kind) sentinel() error {
	switch k {
	case KindRateLimited:
		return ErrRateLimited
	case KindNotFound:
		return ErrNotFound
	case KindPartialData:
		return ErrPartialData
	case KindBackendUnavailable:
		return ErrBackendUnavailable
	case KindMalformedResponse:
		return ErrMalformedResponse
	case KindValidation:
		return ErrInputValidation
	case KindInFlight:
		return ErrRefreshInFlight
	default:
		return ErrInternal
	}
}

// Error is a tagged error. Key names a translation entry and Params fills its
// placeholders; rendering happens only in the translator.
type Error struct {
	Kind   Kind           `json:"kind"`
	Key    string         `json:"key"`
	Params map[string]any `json:"params,omitempty"`
	Err    error          `json:"-"`
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(string(e.Kind)))
	if e.Key != "" {
		b.WriteString(" [")
		b.WriteString(e.Key)
		b.WriteString("]")
	}
	if len(e.Params) > 0 {
		keys := make([]string, 0, len(e.Params))
		for k := range e.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.Params[k])
		}
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// WithParam returns a copy of e with one more parameter set.
func (e *Error) WithParam(name string, value any) *Error {
	cp := *e
	cp.Params = make(map[string]any, len(e.Params)+1)
	for k, v := range e.Params {
		cp.Params[k] = v
	}
	cp.Params[name] = value
	return &cp
}

// New creates a tagged error.
func New(kind Kind, key string, params map[string]any) *Error {
	return &Error{Kind: kind, Key: key, Params: params}
}

// NewRateLimited creates a RateLimited error for the given upstream operation.
func NewRateLimited(operation, key string, params map[string]any) *Error {
	p := map[string]any{"operation": operation}
	for k, v := range params {
		p[k] = v
	}
	return &Error{Kind: KindRateLimited, Key: key, Params: p}
}

// NewValidationError creates a Validation error for a user input field.
func NewValidationError(field, key string) *Error {
	return &Error{Kind: KindValidation, Key: key, Params: map[string]any{"field": field}}
}

// KindOf returns the kind of the first tagged error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindInternal
}

// AsTagged returns the first tagged error in err's chain, wrapping untagged
// errors as Internal.
func AsTagged(err error) *Error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return te
	}
	return &Error{Kind: KindInternal, Key: "errors.internal", Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
