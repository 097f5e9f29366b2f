package domain

import (
	"strings"
	"time"
)

// User represents an authenticated identity. Role membership (manager,
// gardener, picker) is never stored on the user; it is derived from the
// garden and plot relations on demand.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name,omitempty"`
	LastName        string    `json:"last_name,omitempty"`
	IsActive        bool      `json:"is_active"`
	ActivationToken string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FullName joins the name fields for display and email salutations.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail canonicalizes an address before lookup or storage.
// Every path that touches the unique email column goes through this,
// so invited and logging-in casings always meet on one form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) ShortName() string {
	if u == nil {
		return ""
	}
	return u.FirstName
}

// CanAuthenticate reports whether the account has been activated.
// Invited users stay inactive until they consume their activation token.
func (u *User) CanAuthenticate() bool {
	return u != nil && u.IsActive
}
