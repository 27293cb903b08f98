package pipeline

import (
	"errors"

	"github.com/desertthunder/hmx/internal/shared"
)

// Cause classifies why a call failed.
type Cause int

const (
	// CauseNetwork covers transport errors and undecodable payloads.
	CauseNetwork Cause = iota + 1
	// CauseServer is a non-2xx response carrying the server's message.
	CauseServer
	// CauseAuth means the credentials expired and could not be refreshed.
	CauseAuth
)

func (c Cause) String() string {
	switch c {
	case CauseNetwork:
		return "network"
	case CauseServer:
		return "server"
	case CauseAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// Failure is the error returned by [Pipeline.Execute]. It never accompanies a payload.
type Failure struct {
	Cause   Cause
	Message string
	// Status is the HTTP status of the response that produced the failure, or 0 without one.
	Status int
	Err    error
}

func (f *Failure) Error() string {
	if f.Message != "" {
		return f.Message
	}
	if f.Err != nil {
		return f.Err.Error()
	}
	return f.Cause.String() + " failure"
}

func (f *Failure) Unwrap() error { return f.Err }

// Is matches the shared sentinels for the failure's cause.
func (f *Failure) Is(target error) bool {
	switch f.Cause {
	case CauseNetwork:
		return target == shared.ErrNetwork
	case CauseServer:
		return target == shared.ErrAPIRequest
	case CauseAuth:
		return target == shared.ErrRefreshFailed || target == shared.ErrNotAuthenticated
	}
	return false
}

// CauseOf returns the cause of a [*Failure] anywhere in err's chain, or 0.
func CauseOf(err error) Cause {
	var f *Failure
	if errors.As(err, &f) {
		return f.Cause
	}
	return 0
}

// Message returns the user-facing message of err.
func Message(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
