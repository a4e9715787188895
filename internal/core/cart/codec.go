package cart

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt is returned by Decode when a persisted payload cannot be parsed.
var ErrCorrupt = errors.New("cart payload is corrupt")

// Encode serializes the cart for persistence.
func Encode(c Cart) ([]byte, error) {
	if c.Items == nil {
		c.Items = []Item{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal cart: %w", err)
	}
	return data, nil
}

// Decode parses a persisted cart strictly. Empty input decodes to an empty
// cart; anything unparsable returns an error wrapping ErrCorrupt. The result
// is normalized.
func Decode(data []byte) (Cart, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Empty(), nil
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Empty(), fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	return c.Normalize(), nil
}

func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
