package flow

import (
	"fmt"
	"runtime/debug"
)

// PanicError is a recovered panic turned into an error.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("recovered panic: %v", e.Value)
}

// Safe runs fn and converts a panic inside it into a *PanicError. Branches
// run on their own goroutines, where no caller can recover them.
func Safe[R any](fn func() (R, error)) (result R, err error) {
	defer func() {
		if v := recover(); v != nil {
			var zero R
			result, err = zero, &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()
	return fn()
}
