package response

import (
	"encoding/json"
	"net/http"

	"hermes-sync-api/pkg/apierror"
)

// JSON sends a payload as-is with the given status code. Handlers own
// their response shapes; the sync endpoints predate this service and
// their top-level fields (success/message/stats/...) must stay stable.
func JSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK sends a 200 OK response.
func OK(w http.ResponseWriter, payload interface{}) {
	JSON(w, http.StatusOK, payload)
}

// Error sends an error response. Non-API errors are masked behind a
// generic 500 so internal state never leaks to callers.
func Error(w http.ResponseWriter, err error) {
	apiErr, ok := err.(*apierror.Error)
	if !ok {
		apiErr = apierror.InternalError("an unexpected error occurred")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.StatusCode)
	w.Write(apiErr.ToJSON())
}
