package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/crypto/bcrypt"

	"github.com/hay-kot/shopcart/internal/core/account"
	"github.com/hay-kot/shopcart/internal/core/catalog"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{"ok": true, "service": ServiceName})
}

// handleSeed inserts the seed catalog once. Later calls report the count.
func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := s.products.Count(ctx)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if count > 0 {
		writeJSON(w, r, http.StatusOK, map[string]any{"message": "Already seeded", "count": count})
		return
	}

	inserted, err := s.products.InsertMany(ctx, s.opts.SeedProducts)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	hlog.FromRequest(r).Info().Int("count", len(inserted)).Msg("catalog seeded")
	writeJSON(w, r, http.StatusOK, map[string]any{"message": "Seeded", "count": len(inserted)})
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.products.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"products": products})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.products.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

type registerBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	name := strings.TrimSpace(body.Name)
	email := account.NormalizeEmail(body.Email)
	if name == "" || email == "" || body.Password == "" {
		writeError(w, r, http.StatusBadRequest, "Missing fields")
		return
	}

	ctx := r.Context()

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		writeError(w, r, http.StatusConflict, "Email already registered")
		return
	case !errors.Is(err, account.ErrNotFound):
		s.internalError(w, r, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), s.opts.BcryptCost)
	if err != nil {
		// bcrypt rejects passwords over 72 bytes.
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	now := s.now().UTC()
	user := account.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The store enforces uniqueness for registrations racing past the check.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			writeError(w, r, http.StatusConflict, "Email already registered")
			return
		}
		s.internalError(w, r, err)
		return
	}

	hlog.FromRequest(r).Info().Str("user_id", user.ID).Msg("user registered")
	writeJSON(w, r, http.StatusOK, map[string]any{"user": user.Summary()})
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.users.FindByEmail(r.Context(), body.Email)
	if errors.Is(err, account.ErrNotFound) {
		writeError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		writeError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.tokens.Sign(user.ID, user.Name, user.Email)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"token": token, "user": user.Summary()})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	writeJSON(w, r, http.StatusOK, map[string]any{"user": claims})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	hlog.FromRequest(r).Error().Err(err).Msg("request failed")
	writeError(w, r, http.StatusInternalServerError, "Server error")
}
