package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"hermes-sync-api/internal/model"
	"hermes-sync-api/internal/service"
	"hermes-sync-api/pkg/apierror"
	"hermes-sync-api/pkg/response"
)

// SyncHandler handles sync and user-data HTTP requests.
type SyncHandler struct {
	syncService *service.SyncService
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(syncService *service.SyncService) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
	}
}

type syncRequest struct {
	UserEmail string           `json:"userEmail"`
	Type      string           `json:"type"`
	Data      *model.SyncBatch `json:"data"`
}

type syncStats struct {
	TotalItems      int  `json:"totalItems"`
	TotalSales      int  `json:"totalSales"`
	TotalMessages   int  `json:"totalMessages"`
	ProfileComplete bool `json:"profileComplete"`
}

// ApplySync handles POST /api/v1/sync
func (h *SyncHandler) ApplySync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	if req.UserEmail == "" || req.Type == "" || req.Data == nil {
		response.Error(w, apierror.ValidationError("missing required fields: userEmail, type, data"))
		return
	}

	result, err := h.syncService.ApplySync(r.Context(), req.UserEmail, req.Type, *req.Data)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"success":   true,
		"message":   fmt.Sprintf("Sync %s completed", req.Type),
		"timestamp": result.SyncedAt.Format(time.RFC3339),
		"stats": syncStats{
			TotalItems:      result.ItemsCount,
			TotalSales:      result.SalesCount,
			TotalMessages:   result.MessagesCount,
			ProfileComplete: result.ProfileComplete,
		},
	})
}

type userDataRequest struct {
	UserEmail string `json:"userEmail"`
}

// GetUserData handles POST /api/v1/users/data
func (h *SyncHandler) GetUserData(w http.ResponseWriter, r *http.Request) {
	var req userDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	data, err := h.syncService.GetUserData(r.Context(), req.UserEmail)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"success":   true,
		"data":      json.RawMessage(data),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
