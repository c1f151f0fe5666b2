package application

import "errors"

// Outcome taxonomy for authentication attempts. Handlers map these to HTTP
// statuses; anything outside the taxonomy is a store fault and becomes a 500.
var (
	// ErrDuplicateAccount: registration hit an email that is already taken,
	// whether found up front or detected by the database at insert time.
	ErrDuplicateAccount = errors.New("duplicate account")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password. The two cases are deliberately indistinguishable to the
	// caller so the endpoint cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotAuthenticated: the request carries no usable session principal.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrMalformedCredentialRecord: the stored digest cannot be parsed.
	// Surfaced as a fault, never folded into a false verification.
	ErrMalformedCredentialRecord = errors.New("malformed credential record")
)
