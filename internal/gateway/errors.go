package gateway

import "errors"

// DefaultInvalidCredentialsMessage is shown when the backend rejects a login
// without providing its own message.
const DefaultInvalidCredentialsMessage = "Invalid email or password"

// ErrUnauthenticated means the identity check found no active session. It is
// recovered locally by clearing the session; it is never surfaced to the user.
var ErrUnauthenticated = errors.New("not authenticated")

// InvalidCredentialsError is a rejected login. Message is the backend-provided
// text, suitable for inline display.
type InvalidCredentialsError struct {
	Message string
}

func (e *InvalidCredentialsError) Error() string {
	return e.Message
}

// NewInvalidCredentialsError builds the error, falling back to the default
// message when the backend gave none.
func NewInvalidCredentialsError(message string) *InvalidCredentialsError {
	if message == "" {
		message = DefaultInvalidCredentialsMessage
	}
	return &InvalidCredentialsError{Message: message}
}

// NetworkError is a transport-level failure on a user-initiated call
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return "request failed: " + e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
