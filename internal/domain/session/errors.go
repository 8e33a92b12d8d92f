package session

import (
	"errors"

	"pet-guardian/internal/platform/httpclient"
)

var (
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidResetLink   = errors.New("invalid reset link")
	ErrIncompleteResponse = errors.New("auth response without user or token")
)

// Mensajes de fallback cuando el servidor no manda {error} legible.
const (
	MsgLoginFailed      = "Login failed"
	MsgRegisterFailed   = "Registration failed"
	MsgResetLinkFailed  = "Failed to send reset link"
	MsgResetFailed      = "Failed to reset password"
	MsgPasswordMismatch = "Passwords do not match"
	MsgInvalidResetLink = "Invalid reset link"
)

// UserError lleva un mensaje apto para mostrar al usuario.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string { return e.Message }

func (e *UserError) Unwrap() error { return e.Err }

// userError toma el {error} del servidor o el fallback.
func userError(err error, fallback string) *UserError {
	return &UserError{
		Message: httpclient.ServerMessage(err, fallback),
		Err:     err,
	}
}

// Message devuelve el texto para el usuario de cualquier error.
func Message(err error, fallback string) string {
	var ue *UserError
	if errors.As(err, &ue) && ue.Message != "" {
		return ue.Message
	}
	return fallback
}
