package jsongraph

import (
	"errors"
	"fmt"
)

// Error codes carried by ErrorValue.
const (
	CodeInvalidRange     = "INVALID_RANGE"
	CodeNoMatchingRoute  = "NO_MATCHING_ROUTE"
	CodeMissingReference = "MISSING_REFERENCE"
	CodeInvalidArguments = "INVALID_ARGUMENTS"
	CodeInternal         = "INTERNAL"
)

// InvalidRangeError reports range bounds that cannot address a list.
type InvalidRangeError struct {
	Range  Range
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range %s: %s", e.Range.String(), e.Reason)
}

// NoMatchingRouteError reports a path no declared route accepts.
type NoMatchingRouteError struct {
	Path Path
}

func (e *NoMatchingRouteError) Error() string {
	return fmt.Sprintf("no route matches %s", e.Path.String())
}

// MissingReferenceError reports a reference whose target is gone.
type MissingReferenceError struct {
	Ref Ref
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("reference %s points to a missing entity", e.Ref.String())
}

// InvalidArgumentsError reports malformed call arguments.
type InvalidArgumentsError struct {
	Reason string
}

func (e *InvalidArgumentsError) Error() string {
	return "invalid call arguments: " + e.Reason
}

// Coder is implemented by errors that carry their own error code.
type Coder interface {
	ErrorCode() string
}

// NewErrorValue converts err into the structured value attached to a path.
func NewErrorValue(err error) ErrorValue {
	var (
		rangeErr *InvalidRangeError
		routeErr *NoMatchingRouteError
		refErr   *MissingReferenceError
		argErr   *InvalidArgumentsError
		coder    Coder
	)
	code := CodeInternal
	switch {
	case errors.As(err, &rangeErr):
		code = CodeInvalidRange
	case errors.As(err, &routeErr):
		code = CodeNoMatchingRoute
	case errors.As(err, &refErr):
		code = CodeMissingReference
	case errors.As(err, &argErr):
		code = CodeInvalidArguments
	case errors.As(err, &coder):
		code = coder.ErrorCode()
	}
	return ErrorValue{Code: code, Message: err.Error()}
}
