package randid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	id := Generate(24)
	assert.Len(t, id, 24)
	for _, r := range id {
		assert.True(t, strings.ContainsRune(alphabet, r), "unexpected rune %q", r)
	}
	assert.NotEqual(t, Generate(24), Generate(24))
}

func TestRequestID(t *testing.T) {
	id := RequestID()
	assert.True(t, strings.HasPrefix(id, "req_"))
	assert.Len(t, id, 20)
}
