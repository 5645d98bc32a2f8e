package future

import (
	"fmt"
	"strings"
)

// FailureHint annotates the circumstances under which a Failure was raised.
type FailureHint uint64

const (
	// NoHint indicates no special circumstances.
	NoHint FailureHint = 0
	// UserFriendlyHint indicates Message is safe to show directly to end users.
	UserFriendlyHint FailureHint = 1
	// CriticalHint indicates the failure should be treated as unrecoverable by callers.
	CriticalHint FailureHint = 2
	// DataIsHttpCodeHint indicates Data holds an HTTP status code. //nolint:stylecheck,revive // matches the bitset's documented name
	DataIsHttpCodeHint FailureHint = 4
	// FromExceptionHint indicates the failure was converted from a panic or an exception-like error.
	FromExceptionHint FailureHint = 8
)

// Has reports whether hint is set within h.
func (h FailureHint) Has(hint FailureHint) bool {
	return h&hint != 0
}

// Failure is a typed error value carrying a module/error code pair, optional
// free-form data, and a hint bitset, in addition to the human-readable
// message. It implements the error interface so it can flow through any Go
// code that expects one.
type Failure struct {
	Message    string
	ModuleCode int64
	ErrorCode  int64
	Hints      FailureHint
	Data       any
	Exists     bool
}

// Error implements the error interface.
func (f Failure) Error() string {
	if !f.Exists {
		return ""
	}

	if f.ModuleCode == 0 && f.ErrorCode == 0 {
		return f.Message
	}

	return fmt.Sprintf("[%d:%d] %s", f.ModuleCode, f.ErrorCode, f.Message)
}

// FailureFromString builds a Failure carrying only a message. The result
// always carries UserFriendlyHint, plus FromExceptionHint when message
// begins with "Exception".
func FailureFromString(message string) Failure {
	hints := UserFriendlyHint
	if strings.HasPrefix(message, "Exception") {
		hints |= FromExceptionHint
	}

	return Failure{Message: message, Hints: hints, Exists: true}
}

// FailureFromError builds a Failure from an existing error, always carrying
// FromExceptionHint. If err is itself a Failure it is returned unchanged.
func FailureFromError(err error) Failure {
	if err == nil {
		return Failure{}
	}

	if f, ok := err.(Failure); ok { //nolint:errorlint // Failure is compared directly, not wrapped
		return f
	}

	return Failure{Message: err.Error(), Hints: FromExceptionHint, Exists: true}
}

// FailureFromPanic converts a recovered panic value into a Failure tagged
// with FromExceptionHint.
func FailureFromPanic(recovered any) Failure {
	if err, ok := recovered.(error); ok {
		return Failure{Message: err.Error(), Hints: FromExceptionHint, Exists: true}
	}

	return Failure{Message: fmt.Sprintf("%v", recovered), Hints: FromExceptionHint, Exists: true}
}

// WithMessage returns a copy of f with Message replaced.
func (f Failure) WithMessage(message string) Failure {
	f.Message = message

	return f
}

// WithCode returns a copy of f with ModuleCode and ErrorCode replaced.
func (f Failure) WithCode(moduleCode, errorCode int64) Failure {
	f.ModuleCode = moduleCode
	f.ErrorCode = errorCode

	return f
}

// WithData returns a copy of f with Data replaced.
func (f Failure) WithData(data any) Failure {
	f.Data = data

	return f
}

// WithHints returns a copy of f with Hints replaced.
func (f Failure) WithHints(hints FailureHint) Failure {
	f.Hints = hints

	return f
}
