package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/http/shared"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/requestcontext"
)

// LoginRequest is the login payload.
type LoginRequest struct {
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Authenticator is the login operation the handler delegates to.
type Authenticator interface {
	Login(ctx context.Context, role, phone, password string) (string, error)
}

// Handler exposes the login route.
type Handler struct {
	logger *slog.Logger
	auth   Authenticator
}

func NewHandler(auth Authenticator, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, auth: auth}
}

// Register mounts the auth routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	token, err := h.auth.Login(ctx, req.Role, req.Phone, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login rejected",
			"role", req.Role,
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, LoginResponse{AccessToken: token, TokenType: "Bearer"})
}
