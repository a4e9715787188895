// Package session defines the signed-in shopper identity held by the client.
package session

import (
	"strings"
	"time"
)

// Profile is the cached user profile returned by login.
type Profile struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// FirstName returns the first word of the profile name, used for greetings.
func (p Profile) FirstName() string {
	fields := strings.Fields(p.Name)
	if len(fields) == 0 {
		return p.Email
	}
	return fields[0]
}

// Identity is the persisted session record. Token and profile are written and
// cleared together as one record.
type Identity struct {
	Token    string    `json:"token"`
	Profile  *Profile  `json:"profile,omitempty"`
	IssuedAt time.Time `json:"issued_at,omitzero"`
}

// New creates an identity for a freshly issued token.
func New(token string, profile Profile, now time.Time) Identity {
	return Identity{
		Token:    token,
		Profile:  &profile,
		IssuedAt: now,
	}
}

// HasToken reports whether a bearer credential is present.
func (i Identity) HasToken() bool {
	return strings.TrimSpace(i.Token) != ""
}

// SignedIn reports whether both a token and a profile are present.
func (i Identity) SignedIn() bool {
	return i.HasToken() && i.Profile != nil
}

// Greeting returns the account label shown in the header, or "Sign In".
func (i Identity) Greeting() string {
	if !i.SignedIn() {
		return "Sign In"
	}
	return "👤 " + i.Profile.FirstName()
}
