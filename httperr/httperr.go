// Package httperr carries an HTTP status alongside an error message so the
// error-formatting middleware can shape every failure the same way.
package httperr

import "net/http"

type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Unprocessable is the validation-failure error, the most common case.
func Unprocessable(message string) *Error {
	return New(http.StatusUnprocessableEntity, message)
}
