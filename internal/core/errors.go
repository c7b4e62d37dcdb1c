package core

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure. Every error the server or the
// coordinator surfaces carries exactly one kind; callers branch on it,
// never on message text.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation: missing or malformed required field. Never causes a
	// partial write.
	KindValidation
	// KindAuth: missing, invalid or expired credential, or wrong
	// email/password.
	KindAuth
	// KindConflict: duplicate email, duplicate category id, or deleting a
	// category still referenced by transactions.
	KindConflict
	// KindNotFound: operating on an id the account does not own.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	}
	return "unknown"
}

// Fault is a classified error with a short human-readable message.
type Fault struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Message, f.Err)
	}
	return f.Message
}

func (f *Fault) Unwrap() error { return f.Err }

func ValidationError(msg string) error { return &Fault{Kind: KindValidation, Message: msg} }
func AuthError(msg string) error       { return &Fault{Kind: KindAuth, Message: msg} }
func ConflictError(msg string) error   { return &Fault{Kind: KindConflict, Message: msg} }
func NotFoundError(msg string) error   { return &Fault{Kind: KindNotFound, Message: msg} }

// WrapValidation classifies err as a validation failure, keeping it in the
// chain for errors.Is checks.
func WrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return &Fault{Kind: KindValidation, Message: err.Error(), Err: err}
}

// KindOf returns the classification of err, or KindUnknown.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindUnknown
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsAuth(err error) bool       { return KindOf(err) == KindAuth }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
