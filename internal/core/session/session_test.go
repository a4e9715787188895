package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfile_FirstName(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    string
	}{
		{name: "full name", profile: Profile{Name: "Ada Lovelace"}, want: "Ada"},
		{name: "single name", profile: Profile{Name: "A"}, want: "A"},
		{name: "padded", profile: Profile{Name: "  Grace  Hopper "}, want: "Grace"},
		{name: "empty falls back to email", profile: Profile{Email: "a@x.com"}, want: "a@x.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.profile.FirstName())
		})
	}
}

func TestIdentity_SignedIn(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	id := New("tok", Profile{ID: "u1", Name: "Ada Lovelace"}, now)
	assert.True(t, id.HasToken())
	assert.True(t, id.SignedIn())
	assert.Equal(t, now, id.IssuedAt)
	assert.Equal(t, "👤 Ada", id.Greeting())

	assert.False(t, Identity{}.SignedIn())
	assert.False(t, Identity{Token: "  "}.HasToken())
	assert.False(t, Identity{Token: "tok"}.SignedIn(), "token without profile is not signed in")
	assert.Equal(t, "Sign In", Identity{}.Greeting())
}
