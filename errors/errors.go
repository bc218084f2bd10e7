package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrEmptyWords  = fmt.Errorf("no words have been found")

	ErrNotAMember     = fmt.Errorf("sender is not a member of this group")
	ErrForeignChannel = fmt.Errorf("cannot join another user's private channel")
	ErrUnknownSession = fmt.Errorf("unknown session token")

	ErrMissingTarget   = fmt.Errorf("message has neither recipient nor group")
	ErrAmbiguousTarget = fmt.Errorf("message has both a recipient and a group")
	ErrEmptyContent    = fmt.Errorf("text message has empty content")
	ErrMissingFile     = fmt.Errorf("file message has no file reference")
	ErrUnknownGroup    = fmt.Errorf("group does not exist")
	ErrUnknownUser     = fmt.Errorf("user does not exist")
	ErrUnknownFile     = fmt.Errorf("file does not exist")

	ErrQueueOverflow = fmt.Errorf("outbound delivery queue overflow")
	ErrSinkClosed    = fmt.Errorf("delivery sink already closed")

	ErrNameTaken          = fmt.Errorf("username already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid username or password")
)

// The four failure categories of the routing core. Authorization and
// validation failures are reported to the originating connection only;
// a persistence failure aborts the whole send; a delivery failure is
// scoped to one subscriber connection.

type AuthorizationError struct{ Err error }

func (e AuthorizationError) Error() string { return "authorization: " + e.Err.Error() }
func (e AuthorizationError) Unwrap() error { return e.Err }

type ValidationError struct{ Err error }

func (e ValidationError) Error() string { return "validation: " + e.Err.Error() }
func (e ValidationError) Unwrap() error { return e.Err }

type PersistenceError struct{ Err error }

func (e PersistenceError) Error() string { return "persistence: " + e.Err.Error() }
func (e PersistenceError) Unwrap() error { return e.Err }

type DeliveryError struct{ Err error }

func (e DeliveryError) Error() string { return "delivery: " + e.Err.Error() }
func (e DeliveryError) Unwrap() error { return e.Err }
