package service

import (
	"fmt"
	"strings"
)

// OperationError carries the operation and entity a fatal pipeline error
// came from.
type OperationError struct {
	Op       string
	EntityID string
	Err      error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.EntityID, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// CodeTemplateTransportMismatch is the wire code of
// TemplateTransportMismatchError.
const CodeTemplateTransportMismatch = "TEMPLATE_TRANSPORT_MISMATCH"

// TemplateTransportMismatchError reports a template whose transport no
// configured search executor serves.
type TemplateTransportMismatchError struct {
	Mode      string
	Transport string
	Available []string
}

func (e *TemplateTransportMismatchError) Error() string {
	return fmt.Sprintf("template %q targets transport %s, available: [%s]",
		e.Mode, e.Transport, strings.Join(e.Available, ", "))
}

func (e *TemplateTransportMismatchError) ErrorCode() string {
	return CodeTemplateTransportMismatch
}
