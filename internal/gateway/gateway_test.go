package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token(context.Context) string { return string(s) }

func newTestClient(t *testing.T, srv *httptest.Server, tokens TokenSource) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, tokens, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestRequest_SendsJSONAndBearer(t *testing.T) {
	var got *http.Request
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, staticToken("tok-1"))

	raw, err := c.Request(context.Background(), http.MethodPost, "/api/echo", map[string]string{"a": "b"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))

	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "Bearer tok-1", got.Header.Get("Authorization"))
	assert.NotEmpty(t, got.Header.Get(HeaderRequestID))
	assert.Equal(t, map[string]string{"a": "b"}, gotBody)
}

func TestRequest_NoTokenNoHeader(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, staticToken(""))

	_, err := c.Request(context.Background(), http.MethodGet, "/api/products", nil)
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestRequest_ErrorClassification(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		kind    error
		message string
	}{
		{status: 400, body: `{"message":"Missing fields"}`, kind: ErrValidationFailed, message: "Missing fields"},
		{status: 401, body: `{"message":"Invalid credentials"}`, kind: ErrUnauthorized, message: "Invalid credentials"},
		{status: 404, body: `{"message":"Product not found"}`, kind: ErrNotFound, message: "Product not found"},
		{status: 409, body: `{"message":"Email already registered"}`, kind: ErrConflict, message: "Email already registered"},
		{status: 500, body: `<html>oops</html>`, kind: nil, message: FallbackMessage},
		{status: 429, body: `{"message":""}`, kind: nil, message: FallbackMessage},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv, nil).Request(context.Background(), http.MethodGet, "/x", nil)
			require.Error(t, err)

			var rf *RequestFailed
			require.ErrorAs(t, err, &rf)
			assert.Equal(t, tt.status, rf.Status)
			assert.Equal(t, tt.message, err.Error())
			assert.NotEmpty(t, rf.RequestID)
			if tt.message == FallbackMessage {
				assert.Empty(t, rf.Message, "no server message is recorded")
			}

			for _, kind := range []error{ErrValidationFailed, ErrUnauthorized, ErrNotFound, ErrConflict} {
				assert.Equal(t, kind == tt.kind, errors.Is(err, kind), "errors.Is(%v)", kind)
			}
		})
	}
}

func TestRequest_TransportFailureIsRequestFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c := newTestClient(t, srv, nil)
	srv.Close()

	_, err := c.Request(context.Background(), http.MethodGet, "/", nil)

	var rf *RequestFailed
	require.ErrorAs(t, err, &rf)
	assert.Equal(t, 0, rf.Status)
	assert.Equal(t, FallbackMessage, rf.Error())
	assert.NotNil(t, rf.Unwrap())
}

func TestRequest_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil, zerolog.Nop())
	require.NoError(t, err)

	_, err = c.Request(context.Background(), http.MethodGet, "/slow", nil)

	var rf *RequestFailed
	require.ErrorAs(t, err, &rf)
	assert.Equal(t, 0, rf.Status)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRequestAuthenticated_WithoutTokenSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, staticToken(""))

	_, err := c.RequestAuthenticated(context.Background(), http.MethodGet, "/api/profile", nil)
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(0), calls.Load())
}

func TestDo_DecodesSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"service":"ShopCart API"}`))
	}))
	defer srv.Close()

	var out struct {
		OK      bool   `json:"ok"`
		Service string `json:"service"`
	}
	require.NoError(t, newTestClient(t, srv, nil).Do(context.Background(), http.MethodGet, "/", nil, &out))
	assert.True(t, out.OK)
	assert.Equal(t, "ShopCart API", out.Service)
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "ftp://example.com"}, nil, zerolog.Nop())
	assert.Error(t, err)

	c, err := New(Config{BaseURL: "http://localhost:5000/"}, nil, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", c.BaseURL())
	assert.Equal(t, "http://localhost:5000/api/products", c.resolve("api/products"))
}
