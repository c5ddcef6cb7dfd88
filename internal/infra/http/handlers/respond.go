package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/edustride/crm-backend/internal/entity"
	"github.com/edustride/crm-backend/internal/infra/http/middleware"
	"github.com/edustride/crm-backend/internal/usecase"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps the engine's stable error kinds onto HTTP codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch usecase.KindOf(err) {
	case usecase.KindValidation:
		status = http.StatusBadRequest
	case usecase.KindAuthorization:
		status = http.StatusForbidden
	case usecase.KindNotFound:
		status = http.StatusNotFound
	case usecase.KindConflict:
		status = http.StatusConflict
	}

	resp := errorResponse{Error: err.Error()}
	var e *usecase.Error
	if errors.As(err, &e) {
		resp.Code = e.Code
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		resp.Error = "internal error"
	}

	writeJSON(w, status, resp)
}

// requestActor pulls the authenticated actor; the auth middleware
// guarantees it is present on every protected route.
func requestActor(w http.ResponseWriter, r *http.Request) (entity.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return entity.Actor{}, false
	}
	return actor, true
}
