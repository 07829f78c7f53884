package rlogin

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned by Write, End, and SendWCCS when called
// before the handshake completes or after the connection has closed.
var ErrNotConnected = errors.New("RLogin client not connected")

// ErrInputSuspended is returned by Write when a client escape has
// suspended outbound data (see the SUB/EOM built-in escapes).
var ErrInputSuspended = errors.New("RLogin.send: input has been suspended.")

// errInvalidEscapeString is returned by AddClientEscapeString when its
// argument isn't exactly one character.
var errInvalidEscapeString = errors.New("addClientEscape: invalid string argument")

// errHandshakeRejected closes the connection when the server's first
// response byte isn't the handshake ack.
var errHandshakeRejected = errors.New("RLogin: handshake rejected by server")

// ValidationError reports a problem with a connection Option or a
// Properties field, discovered synchronously at the call site. State is
// left unchanged when this error is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func errMissingOption(field string) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf("Missing required option: '%s'", field)}
}

func errInvalidSetting(field string, value any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf("Invalid '%s' setting %v", field, value)}
}
