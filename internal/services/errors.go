package services

import "errors"

// Business-rule failures returned to the transport layer. Handlers map
// these onto HTTP statuses; callers never see raw storage errors.
var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrWeakPassword   = errors.New("password does not meet the strength policy")
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so login failures cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrSelfReaction       = errors.New("cannot react to your own post")
	ErrForbidden          = errors.New("forbidden")
)
