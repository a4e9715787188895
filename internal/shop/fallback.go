package shop

import (
	"errors"

	"github.com/hay-kot/shopcart/internal/gateway"
)

// Messages shown when the server rejects a call without saying why.
const (
	LoginFailed        = "Login failed"
	RegistrationFailed = "Registration failed"
	SearchFailed       = "Search failed"
)

// withFallback gives a failed request without a server message the
// operation's own message. Other errors are returned unchanged.
func withFallback(err error, msg string) error {
	var rf *gateway.RequestFailed
	if !errors.As(err, &rf) || rf.Message != "" {
		return err
	}

	out := *rf
	out.Message = msg
	return &out
}
