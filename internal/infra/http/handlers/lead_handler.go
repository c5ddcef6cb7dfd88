package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/edustride/crm-backend/internal/infra/http/middleware"
	"github.com/edustride/crm-backend/internal/usecase"
)

type LeadHandler struct {
	Lifecycle *usecase.LeadLifecycleUseCase
	Demo      *usecase.DemoRequestUseCase
}

func NewLeadHandler(lifecycle *usecase.LeadLifecycleUseCase, demo *usecase.DemoRequestUseCase) *LeadHandler {
	return &LeadHandler{
		Lifecycle: lifecycle,
		Demo:      demo,
	}
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}

	scope := r.URL.Query().Get("scope")
	if scope == "" {
		scope = usecase.ScopeAll
	}

	leads, err := h.Lifecycle.List(r.Context(), actor, scope)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) ListOutcomes(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}

	leads, err := h.Lifecycle.ListOutcomes(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}

	lead, err := h.Lifecycle.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}

	var input usecase.CreateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}

	lead, err := h.Lifecycle.Create(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.RecordLeadTransition("", string(lead.Status))
	writeJSON(w, http.StatusCreated, lead)
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}

	var input usecase.UpdateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}

	lead, err := h.Lifecycle.Update(r.Context(), actor, chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	// Body is optional on delete.
	json.NewDecoder(r.Body).Decode(&body)

	lead, err := h.Lifecycle.SoftDelete(r.Context(), actor, chi.URLParam(r, "id"), body.Reason)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) AssignCounselor(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}

	var body struct {
		CounselorID string `json:"counselor_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}

	lead, err := h.Lifecycle.AssignCounselor(r.Context(), actor, chi.URLParam(r, "id"), body.CounselorID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) BulkAssign(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}

	var body struct {
		LeadIDs     []string `json:"lead_ids"`
		CounselorID string   `json:"counselor_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}

	count, err := h.Lifecycle.BulkAssign(r.Context(), actor, body.LeadIDs, body.CounselorID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"updated": count})
}

func (h *LeadHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}

	entries, err := h.Lifecycle.GetHistory(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *LeadHandler) CreateDemoRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}

	var body struct {
		ScheduledAt *time.Time `json:"scheduled_at"`
	}
	// Body is optional; an unscheduled broadcast is fine.
	json.NewDecoder(r.Body).Decode(&body)

	demo, err := h.Demo.Execute(r.Context(), actor, chi.URLParam(r, "id"), body.ScheduledAt)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, demo)
}

func (h *LeadHandler) ListDemoRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}

	demos, err := h.Demo.List(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, demos)
}
