// Package errors defines the error taxonomy shared by the backend, executor, fuzz driver, and runner. Every
// failure that should be reported back to a caller as structured data rather than bubbled up as a raw Go error
// is wrapped in a TestError with a Kind, so callers can classify it with errors.As without parsing strings.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies the category of a TestError.
type Kind string

const (
	// CompilationMissing indicates a test contract could not be resolved from the supplied compilation artifacts.
	CompilationMissing Kind = "compilation_missing"
	// DeployFailed indicates a test contract's constructor reverted or ran out of gas during deployment.
	DeployFailed Kind = "deploy_failed"
	// SetUpFailed indicates a contract's setUp() function reverted or ran out of gas.
	SetUpFailed Kind = "setup_failed"
	// AssertionFailed indicates a test function's assertions (via cheatcode sentinel or testFail convention) failed.
	AssertionFailed Kind = "assertion_failed"
	// ExpectedRevertMismatch indicates an expectRevert cheatcode was armed but not satisfied by the following call.
	ExpectedRevertMismatch Kind = "expected_revert_mismatch"
	// BadCheatCode indicates a cheatcode call could not be dispatched or was given invalid arguments.
	BadCheatCode Kind = "bad_cheat_code"
	// FfiDisabled indicates the ffi cheatcode was invoked without FFI enabled in the runner configuration.
	FfiDisabled Kind = "ffi_disabled"
	// ForkFetchFailed indicates a read-through fetch against the configured fork RPC endpoint failed.
	ForkFetchFailed Kind = "fork_fetch_failed"
	// ForkTimeout indicates a fork RPC fetch did not complete within its deadline.
	ForkTimeout Kind = "fork_timeout"
	// BackendInternal indicates an unexpected failure within the backend itself, not attributable to the test.
	BackendInternal Kind = "backend_internal"
	// InvalidConfig indicates the runner configuration itself is malformed or inconsistent.
	InvalidConfig Kind = "invalid_config"
)

// TestError is the concrete error type produced by the backend, executor, fuzz driver, and runner. Reason is a
// plain-text message safe to surface directly in a TestResult; the wrapped cause carries a pkg/errors stack
// trace for diagnostic logging.
type TestError struct {
	kind   Kind
	reason string
	cause  error
}

// New creates a TestError of the given Kind with reason as both its message and its stack-traced cause.
func New(kind Kind, reason string) *TestError {
	return &TestError{kind: kind, reason: reason, cause: errors.New(reason)}
}

// Newf creates a TestError of the given Kind with a formatted reason.
func Newf(kind Kind, format string, args ...any) *TestError {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap creates a TestError of the given Kind whose reason is the formatted message, wrapping cause with a
// pkg/errors stack trace so the original failure is still reachable via Unwrap.
func Wrap(kind Kind, cause error, format string, args ...any) *TestError {
	reason := fmt.Sprintf(format, args...)
	return &TestError{kind: kind, reason: reason, cause: errors.Wrap(cause, reason)}
}

// Error implements the error interface.
func (e *TestError) Error() string {
	return e.reason
}

// Kind returns the error's classification.
func (e *TestError) Kind() Kind {
	return e.kind
}

// Reason returns the plain-text message, without the stack trace attached to the wrapped cause.
func (e *TestError) Reason() string {
	return e.reason
}

// Unwrap exposes the wrapped cause so errors.Is/errors.As can see through to it.
func (e *TestError) Unwrap() error {
	return e.cause
}

// KindOf unwraps err looking for a *TestError and returns its Kind, or "" if err is nil or not a TestError.
func KindOf(err error) Kind {
	var testErr *TestError
	if errors.As(err, &testErr) {
		return testErr.kind
	}
	return ""
}

// Is reports whether err is a TestError of the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
