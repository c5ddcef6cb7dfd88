package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/edustride/crm-backend/internal/entity"
	"github.com/edustride/crm-backend/internal/infra/http/middleware"
	"github.com/edustride/crm-backend/internal/usecase"
)

type PaymentHandler struct {
	Submit *usecase.PaymentRequestUseCase
	Verify *usecase.VerifyPaymentUseCase
}

func NewPaymentHandler(submit *usecase.PaymentRequestUseCase, verify *usecase.VerifyPaymentUseCase) *PaymentHandler {
	return &PaymentHandler{
		Submit: submit,
		Verify: verify,
	}
}

func (h *PaymentHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}

	var input usecase.SubmitPaymentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}

	request, err := h.Submit.Execute(r.Context(), actor, chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.RecordLeadTransition("", string(entity.StatusPaymentPending))
	writeJSON(w, http.StatusCreated, request)
}

func (h *PaymentHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}

	status := entity.PaymentRequestStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = entity.PaymentPending
	}

	requests, err := h.Submit.ListByStatus(r.Context(), actor, status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requests)
}

func (h *PaymentHandler) VerifyRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}

	var body struct {
		Approved    bool   `json:"approved"`
		FinanceNote string `json:"finance_note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}

	output, err := h.Verify.Execute(r.Context(), actor, usecase.VerifyPaymentInput{
		RequestID:   chi.URLParam(r, "id"),
		Approved:    body.Approved,
		FinanceNote: body.FinanceNote,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if output.Student != nil {
		middleware.RecordConversion()
		middleware.RecordPaymentVerification("approved")
	} else {
		middleware.RecordPaymentVerification("rejected")
	}

	writeJSON(w, http.StatusOK, output)
}
