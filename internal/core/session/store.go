package session

import "context"

// Holder persists the client's identity. Reads are lenient: a missing or
// malformed record reads as absent, never as an error.
type Holder interface {
	// Set persists token and profile in a single write. Callers invoke it only
	// after a successful login response.
	Set(ctx context.Context, token string, profile Profile) error
	// Identity returns the persisted identity, or false if none is held.
	Identity(ctx context.Context) (Identity, bool)
	// Token returns the bearer credential, or "" if none is held.
	Token(ctx context.Context) string
	// Profile returns the cached profile, or false if none is held.
	Profile(ctx context.Context) (Profile, bool)
	// Clear removes the identity.
	Clear(ctx context.Context) error
}
