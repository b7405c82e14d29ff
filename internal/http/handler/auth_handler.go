package handler

import (
	"net/http"

	"github.com/straye-as/earsip/internal/config"
	"github.com/straye-as/earsip/internal/domain"
	"github.com/straye-as/earsip/internal/http/middleware"
	"github.com/straye-as/earsip/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	cfg         *config.AuthConfig
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, cfg *config.AuthConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
		logger:      logger,
	}
}

// Login godoc
// @Summary Log in
// @Description Exchanges operator credentials for a session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.LoginInput true "Credentials"
// @Success 200 {object} domain.User
// @Failure 422 {object} domain.APIError
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginInput
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	http.SetCookie(w, middleware.SessionCookie(h.cfg, result.Token))
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": result.User})
}

// Logout godoc
// @Summary Log out
// @Description Revokes the upstream token and clears the session cookie
// @Tags Auth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.authService.Logout(r.Context())
	http.SetCookie(w, middleware.ExpiredSessionCookie(h.cfg))
	if err != nil {
		// The local session is gone either way
		h.logger.Warn("upstream logout failed", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me godoc
// @Summary Get current operator
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} domain.APIError
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.Me(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
