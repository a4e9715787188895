// Package api is the typed storefront client built on the gateway.
package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/hay-kot/shopcart/internal/core/account"
	"github.com/hay-kot/shopcart/internal/core/catalog"
	"github.com/hay-kot/shopcart/internal/gateway"
)

// Health is the body served at the API root.
type Health struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
}

// SeedResult is returned by the seed endpoint.
type SeedResult struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// RegisterRequest is the body of a registration call.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of a login call.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult carries the issued token and the signed-in user.
type LoginResult struct {
	Token string          `json:"token"`
	User  account.Summary `json:"user"`
}

// ProfileClaims is the caller's identity as decoded from the token.
type ProfileClaims struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	IssuedAt  int64  `json:"iat,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
}

// Client calls the storefront endpoints.
type Client struct {
	gw *gateway.Client
}

// New wraps a gateway client.
func New(gw *gateway.Client) *Client {
	return &Client{gw: gw}
}

// Health calls GET /.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.gw.Do(ctx, http.MethodGet, "/", nil, &out)
	return out, err
}

// Seed calls POST /api/seed.
func (c *Client) Seed(ctx context.Context) (SeedResult, error) {
	var out SeedResult
	err := c.gw.Do(ctx, http.MethodPost, "/api/seed", nil, &out)
	return out, err
}

// Products lists products whose name matches query. An empty query lists the
// whole catalog.
func (c *Client) Products(ctx context.Context, query string) ([]catalog.Product, error) {
	path := "/api/products"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}

	var out struct {
		Products []catalog.Product `json:"products"`
	}
	if err := c.gw.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// Product fetches one product. Unknown IDs fail with gateway.ErrNotFound.
func (c *Client) Product(ctx context.Context, id string) (catalog.Product, error) {
	var out catalog.Product
	err := c.gw.Do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &out)
	return out, err
}

// Register creates an account. A taken email fails with gateway.ErrConflict.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (account.Summary, error) {
	var out struct {
		User account.Summary `json:"user"`
	}
	if err := c.gw.Do(ctx, http.MethodPost, "/api/auth/register", req, &out); err != nil {
		return account.Summary{}, err
	}
	return out.User, nil
}

// Login exchanges credentials for a token. Bad credentials fail with
// gateway.ErrUnauthorized.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	var out LoginResult
	err := c.gw.Do(ctx, http.MethodPost, "/api/auth/login", req, &out)
	return out, err
}

// Profile calls the bearer-only profile endpoint.
func (c *Client) Profile(ctx context.Context) (ProfileClaims, error) {
	var out struct {
		User ProfileClaims `json:"user"`
	}
	if err := c.gw.DoAuthenticated(ctx, http.MethodGet, "/api/profile", nil, &out); err != nil {
		return ProfileClaims{}, err
	}
	return out.User, nil
}
