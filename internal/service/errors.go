package service

import "errors"

// Service-level sentinels. Handlers map these to HTTP statuses with
// errors.Is; anything unrecognized is logged and collapsed to a generic
// server error so no internal detail crosses the boundary.
var (
	// ErrEmailTaken is returned when registration hits an existing email.
	ErrEmailTaken = errors.New("account already exists")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated is returned when a session token does not
	// resolve to a live account.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound is returned when a credential id does not resolve.
	ErrNotFound = errors.New("credential not found")

	// ErrNotOwner is returned when a credential exists but belongs to a
	// different account. Existence is checked first, so callers see
	// ErrNotFound for missing ids and ErrNotOwner for foreign ones.
	ErrNotOwner = errors.New("not authorized")
)
