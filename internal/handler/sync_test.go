package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hermes-sync-api/internal/model"
	"hermes-sync-api/internal/service"
	"hermes-sync-api/internal/store"
)

func newTestSyncHandler() *SyncHandler {
	st := store.New(model.DefaultCollectionLimits(), model.DefaultViewLimits())
	return NewSyncHandler(service.NewSyncService(st, nil, nil))
}

func postJSON(t *testing.T, handlerFunc http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handlerFunc(rr, req)
	return rr
}

func TestApplySyncRejectsMissingFields(t *testing.T) {
	h := newTestSyncHandler()

	for _, body := range []string{
		`{}`,
		`{"userEmail":"a@b.co"}`,
		`{"userEmail":"a@b.co","type":"full_sync"}`,
		`{"type":"full_sync","data":{}}`,
	} {
		rr := postJSON(t, h.ApplySync, body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rr.Code)
		}
		var resp map[string]any
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("error body is not JSON: %v", err)
		}
		if success, _ := resp["success"].(bool); success {
			t.Fatalf("expected success=false in error body, got %v", resp)
		}
		if _, ok := resp["error"].(string); !ok {
			t.Fatalf("expected error message in body, got %v", resp)
		}
	}
}

func TestApplySyncRejectsMalformedJSON(t *testing.T) {
	h := newTestSyncHandler()
	rr := postJSON(t, h.ApplySync, `{broken`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", rr.Code)
	}
}

func TestApplySyncResponseShape(t *testing.T) {
	h := newTestSyncHandler()

	body := `{
		"userEmail": "Seller@Example.com",
		"type": "full_sync",
		"data": {
			"profile": {"username": "seller42"},
			"items": [{"hash": "i1", "price": "10,00 €"}],
			"sales": [{"hash": "s1", "price": "8,00 €"}]
		}
	}`
	rr := postJSON(t, h.ApplySync, body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
		Stats     struct {
			TotalItems      int  `json:"totalItems"`
			TotalSales      int  `json:"totalSales"`
			TotalMessages   int  `json:"totalMessages"`
			ProfileComplete bool `json:"profileComplete"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if !resp.Success || resp.Message == "" || resp.Timestamp == "" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if resp.Stats.TotalItems != 1 || resp.Stats.TotalSales != 1 || resp.Stats.TotalMessages != 0 {
		t.Fatalf("unexpected stats: %+v", resp.Stats)
	}
	if !resp.Stats.ProfileComplete {
		t.Fatalf("expected profileComplete after username sync")
	}
}

func TestGetUserDataRoundTrip(t *testing.T) {
	h := newTestSyncHandler()

	rr := postJSON(t, h.ApplySync, `{"userEmail":"a@b.co","type":"items_sync","data":{"items":[{"hash":"i1"}]}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("sync failed: %d", rr.Code)
	}

	rr = postJSON(t, h.GetUserData, `{"userEmail":"a@b.co"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Email string         `json:"email"`
			Items []model.Record `json:"items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if !resp.Success || resp.Data.Email != "a@b.co" || len(resp.Data.Items) != 1 {
		t.Fatalf("unexpected data response: %+v", resp)
	}
}

func TestGetUserDataUnknownUser(t *testing.T) {
	h := newTestSyncHandler()
	rr := postJSON(t, h.GetUserData, `{"userEmail":"ghost@example.com"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
