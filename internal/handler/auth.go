package handler

import (
	"encoding/json"
	"net/http"

	"hermes-sync-api/internal/model"
	"hermes-sync-api/internal/service"
	"hermes-sync-api/pkg/apierror"
	"hermes-sync-api/pkg/response"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	tokenService   *service.TokenService
	accountService *service.AccountService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(tokenService *service.TokenService, accountService *service.AccountService) *AuthHandler {
	return &AuthHandler{
		tokenService:   tokenService,
		accountService: accountService,
	}
}

// TokenRequest represents the request body for token generation.
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse represents the response for token generation.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// GenerateToken handles POST /api/v1/auth/token
func (h *AuthHandler) GenerateToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if req.Email == "" {
		response.Error(w, apierror.BadRequest("email is required"))
		return
	}
	if req.Password == "" {
		response.Error(w, apierror.BadRequest("password is required"))
		return
	}

	account, err := h.accountService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, apierror.Unauthorized("invalid credentials"))
		return
	}

	tokenData := model.TokenData{
		AccountID: account.ID,
		Email:     account.Email,
		Plan:      account.Plan,
	}

	token, err := h.tokenService.GenerateToken(r.Context(), tokenData)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to generate token"))
		return
	}

	response.OK(w, TokenResponse{
		Token:     token,
		ExpiresIn: int(service.TokenTTL.Seconds()),
	})
}

// RevokeToken handles POST /api/v1/auth/revoke
func (h *AuthHandler) RevokeToken(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Token")
	if token == "" {
		response.Error(w, apierror.BadRequest("X-Token header required"))
		return
	}

	if err := h.tokenService.RevokeToken(r.Context(), token); err != nil {
		response.Error(w, apierror.InternalError("failed to revoke token"))
		return
	}

	response.OK(w, map[string]string{"status": "revoked"})
}

// RefreshToken handles POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Token")
	if token == "" {
		response.Error(w, apierror.BadRequest("X-Token header required"))
		return
	}

	if err := h.tokenService.RefreshToken(r.Context(), token); err != nil {
		response.Error(w, apierror.Unauthorized(err.Error()))
		return
	}

	response.OK(w, map[string]interface{}{
		"status":     "refreshed",
		"expires_in": int(service.TokenTTL.Seconds()),
	})
}
