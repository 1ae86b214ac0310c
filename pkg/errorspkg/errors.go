// Package errorspkg provides common app errors.
package errorspkg

import "errors"

// Kind is a machine-readable error category returned to API clients.
type Kind string

// Error kinds known by the delivery layer.
const (
	KindValidation         Kind = "validation"
	KindOwnership          Kind = "ownership"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindSameAccount        Kind = "same_account"
	KindInsufficientFunds  Kind = "insufficient_funds"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindInvalidOTP         Kind = "invalid_otp"
	KindExpiredOTP         Kind = "expired_otp"
	KindUnauthorized       Kind = "unauthorized"
	KindMailUnavailable    Kind = "mail_unavailable"
	KindTransient          Kind = "transient"
	KindInternal           Kind = "internal"
)

// Error is an app error carrying its kind.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// New returns an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

var (
	// ErrInternal indicates internal server error.
	ErrInternal = New(KindInternal, "internal")
	// ErrTransient indicates a store failure after which nothing was persisted and the request may be retried.
	ErrTransient = New(KindTransient, "temporary failure, nothing was saved, please retry")
)

// KindOf returns the kind of err, KindInternal for errors without one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}
