package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/abderrahmenzaway/wie-empower/internal/model"
	"github.com/abderrahmenzaway/wie-empower/internal/services/weather"
	"github.com/abderrahmenzaway/wie-empower/internal/storage"
)

type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// respondErr maps service errors onto status codes. Only dependency
// failures are worth retrying; everything else is the caller's problem.
func respondErr(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, envelope{Error: &apiError{
			Kind: "validation_failed", Message: verr.Message, Field: verr.Field,
		}})
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, weather.ErrUnknownCity):
		writeJSON(w, http.StatusNotFound, envelope{Error: &apiError{
			Kind: "not_found", Message: "resource not found",
		}})
	case errors.Is(err, storage.ErrConflict):
		writeJSON(w, http.StatusConflict, envelope{Error: &apiError{
			Kind: "conflict", Message: "concurrent modification, retry",
		}})
	case errors.Is(err, storage.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, envelope{Error: &apiError{
			Kind: "dependency_unavailable", Message: "a backing service is unavailable, retry later",
		}})
	default:
		writeJSON(w, http.StatusInternalServerError, envelope{Error: &apiError{
			Kind: "internal", Message: "internal error",
		}})
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return model.Invalidf("body", "malformed request body: %v", err)
	}
	return nil
}

// decodeBodyOptional is decodeBody for endpoints where an empty body is
// legal. An absent body leaves v untouched. Content-Length is not consulted:
// chunked requests report -1 and still carry a body.
func decodeBodyOptional(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return model.Invalidf("body", "malformed request body: %v", err)
	}
	return nil
}
