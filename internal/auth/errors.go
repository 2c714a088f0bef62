package auth

import (
	"errors"
	"fmt"
)

// Backend-style error codes. Screens never branch on these directly; they go
// through UserMessage, which collapses the credential-related codes so an
// attacker cannot learn which half of a credential pair was wrong.
const (
	CodeUserNotFound      = "auth/user-not-found"
	CodeWrongPassword     = "auth/wrong-password"
	CodeInvalidCredential = "auth/invalid-credential"
	CodeInvalidEmail      = "auth/invalid-email"
	CodeEmailInUse        = "auth/email-already-in-use"
	CodeWeakPassword      = "auth/weak-password"
	CodeAdminRestricted   = "auth/admin-restricted-operation"
)

type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code string) *Error {
	return &Error{Code: code}
}

// CodeOf extracts the auth error code, or "" for non-auth errors.
func CodeOf(err error) string {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Code
	}
	return ""
}

// User-facing messages.
const (
	MsgIncorrectCredentials = "Incorrect email or password. Please try again."
	MsgEmailInUse           = "This email address is already in use."
	MsgWeakPassword         = "Password should be at least 6 characters."
	MsgGeneric              = "Something went wrong. Please try again."
)

// UserMessage maps any sign-in/registration failure to one of a small set of
// user-facing strings.
func UserMessage(err error) string {
	switch CodeOf(err) {
	case CodeUserNotFound, CodeWrongPassword, CodeInvalidCredential, CodeInvalidEmail:
		return MsgIncorrectCredentials
	case CodeEmailInUse:
		return MsgEmailInUse
	case CodeWeakPassword:
		return MsgWeakPassword
	default:
		return MsgGeneric
	}
}
