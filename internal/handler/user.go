package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"hermes-sync-api/internal/model"
	"hermes-sync-api/internal/service"
	"hermes-sync-api/pkg/apierror"
	"hermes-sync-api/pkg/response"
)

// UserHandler handles extension user validation requests.
type UserHandler struct {
	accountService *service.AccountService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(accountService *service.AccountService) *UserHandler {
	return &UserHandler{
		accountService: accountService,
	}
}

type validateUserRequest struct {
	Email  string `json:"email"`
	Source string `json:"source"`
}

type validatedUser struct {
	Email     string             `json:"email"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	Plan      string             `json:"plan"`
	Features  model.PlanFeatures `json:"features"`
}

// ValidateUser handles POST /api/v1/users/validate
//
// Malformed requests get a 400; a well-formed email that fails the
// account checks gets a 200 with valid=false and a reason, so the
// extension can distinguish "try again" from "show this message".
func (h *UserHandler) ValidateUser(w http.ResponseWriter, r *http.Request) {
	var req validateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	result := h.accountService.ValidateExtensionUser(r.Context(), req.Email, req.Source)

	if result.Reason == "email_required" || result.Reason == "invalid_format" {
		response.Error(w, apierror.ValidationError(result.Message))
		return
	}

	if !result.Valid {
		response.OK(w, map[string]interface{}{
			"valid":     false,
			"reason":    result.Reason,
			"error":     result.Message,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	response.OK(w, map[string]interface{}{
		"valid": true,
		"user": validatedUser{
			Email:     result.Account.Email,
			FirstName: result.Account.FirstName,
			LastName:  result.Account.LastName,
			Plan:      result.Account.Plan,
			Features:  result.Features,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
