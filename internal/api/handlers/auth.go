package handlers

import (
	"net/http"
	"time"

	"github.com/dvloznov/finsight/internal/api/middleware"
	"github.com/rs/zerolog"
)

// Authenticator checks credentials and issues session tokens.
type Authenticator interface {
	Login(username, password string) (string, time.Time, error)
}

// AuthHandler handles POST /api/login.
type AuthHandler struct {
	auth Authenticator
	log  zerolog.Logger
}

// NewAuthHandler creates a new login handler.
func NewAuthHandler(auth Authenticator, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, expiresAt, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		writeFailure(w, h.log.With().Str("username", req.Username).Logger(), err, "Login failed")
		return
	}

	h.log.Info().Str("username", req.Username).Msg("User logged in")
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"expiresAt": expiresAt.UTC().Format(time.RFC3339),
	})
}
