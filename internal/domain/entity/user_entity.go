package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// PasswordHash holds a bcrypt digest and is nil for accounts created purely
// through a federated provider. GoogleID and FacebookID are provider-scoped
// identifiers; each is unique across users when set.
type User struct {
	ID           string
	Email        string
	PasswordHash *string
	GoogleID     *string
	FacebookID   *string
	Secret       *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasLocalCredential reports whether the user can log in with a password.
func (u *User) HasLocalCredential() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// Providers lists the federated providers linked to this user.
func (u *User) Providers() []string {
	var out []string
	if u.GoogleID != nil {
		out = append(out, "google")
	}
	if u.FacebookID != nil {
		out = append(out, "facebook")
	}
	return out
}
