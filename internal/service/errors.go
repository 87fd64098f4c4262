package service

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	ErrUnauthenticated   = errors.New("not signed in")
	ErrForbidden         = errors.New("access denied")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflicts with an existing krankmeldung")
	ErrDuplicate         = errors.New("already exists")
	ErrInvalidTransition = errors.New("status change not allowed")
	ErrNoMitarbeiter     = errors.New("account is not linked to a mitarbeiter")
)

// ValidationErrors returns the field errors carried by err, if any.
func ValidationErrors(err error) (validation.Errors, bool) {
	var verr validation.Errors
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
