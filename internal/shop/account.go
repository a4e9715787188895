package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hay-kot/shopcart/internal/api"
	"github.com/hay-kot/shopcart/internal/core/account"
	"github.com/hay-kot/shopcart/internal/core/session"
	"github.com/hay-kot/shopcart/internal/core/validate"
	"github.com/hay-kot/shopcart/internal/gateway"
)

// Register creates an account. It does not sign the user in.
func (s *Service) Register(ctx context.Context, name, email, password string) (account.Summary, error) {
	if err := validate.Registration(name, email, password); err != nil {
		return account.Summary{}, err
	}

	user, err := s.api.Register(ctx, api.RegisterRequest{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
	})
	if err != nil {
		return account.Summary{}, withFallback(err, RegistrationFailed)
	}

	s.log.Info().Str("user_id", user.ID).Msg("account registered")
	return user, nil
}

// Login exchanges credentials for a token and persists the identity. Nothing
// is written unless the server returned a token.
func (s *Service) Login(ctx context.Context, email, password string) (session.Profile, error) {
	if err := validate.Login(email, password); err != nil {
		return session.Profile{}, err
	}

	result, err := s.api.Login(ctx, api.LoginRequest{
		Email:    strings.TrimSpace(email),
		Password: password,
	})
	if err != nil {
		return session.Profile{}, withFallback(err, LoginFailed)
	}
	if strings.TrimSpace(result.Token) == "" {
		return session.Profile{}, ErrNoToken
	}

	profile := session.Profile{
		ID:    result.User.ID,
		Name:  result.User.Name,
		Email: result.User.Email,
	}
	if err := s.identity.Set(ctx, result.Token, profile); err != nil {
		return session.Profile{}, fmt.Errorf("store identity: %w", err)
	}

	s.log.Info().Str("user_id", profile.ID).Msg("signed in")
	s.publishIdentity(ctx)
	return profile, nil
}

// Logout forgets the held identity.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.identity.Clear(ctx); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}

	s.log.Info().Msg("signed out")
	s.publishIdentity(ctx)
	return nil
}

// Identity returns the held identity, if any.
func (s *Service) Identity(ctx context.Context) (session.Identity, bool) {
	return s.identity.Identity(ctx)
}

// WhoAmI asks the server who the held token belongs to. A rejected token is
// reported but not cleared.
func (s *Service) WhoAmI(ctx context.Context) (api.ProfileClaims, error) {
	claims, err := s.api.Profile(ctx)
	if errors.Is(err, gateway.ErrUnauthorized) {
		return api.ProfileClaims{}, fmt.Errorf("%w (run 'shopcart login' to sign in again)", err)
	}
	return claims, err
}

func (s *Service) publishIdentity(ctx context.Context) {
	ident, _ := s.identity.Identity(ctx)
	s.publish(Event{Kind: EventIdentityChanged, Identity: ident})
}
