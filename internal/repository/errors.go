// Package repository defines error types that are reused across multiple
// repositories and services. Every error returned to handlers wraps one of
// the kind sentinels below (ErrInvalid, ErrNotFound, ErrUnauthorized,
// ErrForbidden, ErrConflict, ErrQuotaExceeded) so that a single error handler can map it
// onto an HTTP status, while Error() carries the message shown to clients.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrInvalid marks input or state that makes a request invalid (HTTP 400).
var ErrInvalid = errors.New("invalid request")

// ErrNotFound is returned when a referenced row does not exist (HTTP 404).
var ErrNotFound = errors.New("not found")

// ErrUnauthorized is returned for wrong credentials or a dead session
// (HTTP 401).
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write cannot be performed because of
// existing state, such as applying twice to the same job or deleting the
// last admin. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrQuotaExceeded is returned when an employer has used up its AI job
// description allowance (HTTP 429).
var ErrQuotaExceeded = errors.New("AI usage limit reached")

// Error is a client-facing error message tied to one of the kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

// NewError builds an Error of the given kind.
func NewError(kind error, msg string) error { return &Error{Kind: kind, Message: msg} }

var (
	ErrUserNotFound         = NewError(ErrNotFound, "user not found")
	ErrCompanyNotFound      = NewError(ErrNotFound, "company not found")
	ErrJobNotFound          = NewError(ErrNotFound, "job not found")
	ErrApplicationNotFound  = NewError(ErrNotFound, "application not found")
	ErrNotificationNotFound = NewError(ErrNotFound, "notification not found")
	ErrFeedbackNotFound     = NewError(ErrNotFound, "feedback not found")

	ErrEmailExists     = NewError(ErrConflict, "email already exists")
	ErrAlreadyApplied  = NewError(ErrConflict, "you have already applied for this job")
	ErrAlreadySaved    = NewError(ErrConflict, "job already saved")
	ErrLastAdmin       = NewError(ErrConflict, "cannot delete the only admin")
	ErrNotSaved        = NewError(ErrInvalid, "job is not in saved jobs")
	ErrSelfDelete      = NewError(ErrInvalid, "you cannot delete your own account")
	ErrJobInactive     = NewError(ErrInvalid, "job is not accepting applications")
	ErrInvalidToken    = NewError(ErrInvalid, "invalid or expired token")
	ErrBadCredentials  = NewError(ErrUnauthorized, "invalid credentials")
	ErrWrongPassword   = NewError(ErrUnauthorized, "current password is incorrect")
	ErrSessionExpired  = NewError(ErrUnauthorized, "invalid or expired refresh token")
	ErrNotJobSeeker    = NewError(ErrForbidden, "only job seekers can perform this action")
	ErrNotJobOwner     = NewError(ErrForbidden, "you do not own this job")
	ErrNotNotification = NewError(ErrForbidden, "you do not own this notification")
)

// isDuplicate reports whether err is a MySQL duplicate key error (1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
