package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/edustride/crm-backend/internal/entity"
	"github.com/edustride/crm-backend/internal/infra/http/handlers"
	"github.com/edustride/crm-backend/internal/infra/http/middleware"
	"github.com/edustride/crm-backend/internal/infra/lock"
	"github.com/edustride/crm-backend/internal/infra/memory"
	"github.com/edustride/crm-backend/internal/usecase"
)

// newTestRouter wires the handlers over in-memory repositories with a
// stub auth middleware that injects the given actor.
func newTestRouter(actor entity.Actor) *chi.Mux {
	leads := memory.NewLeadRepository()
	history := memory.NewHistoryRepository()
	audit := memory.NewAuditRepository()
	users := memory.NewUserDirectory()
	payments := memory.NewPaymentRequestRepository()
	demos := memory.NewDemoRequestRepository()
	students := memory.NewStudentRepository()

	lifecycleUC := usecase.NewLeadLifecycleUseCase(leads, history, audit, users, nil)
	demoUC := usecase.NewDemoRequestUseCase(leads, demos, history, audit, nil)
	paymentUC := usecase.NewPaymentRequestUseCase(leads, payments, history, audit, nil)
	verifyUC := usecase.NewVerifyPaymentUseCase(payments, leads, students, history, audit, lock.NewMemoryLocker(), nil)

	leadHandler := handlers.NewLeadHandler(lifecycleUC, demoUC)
	paymentHandler := handlers.NewPaymentHandler(paymentUC, verifyUC)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithActor(req.Context(), actor)))
		})
	})

	r.Get("/leads", leadHandler.List)
	r.Post("/leads", leadHandler.Create)
	r.Get("/leads/{id}", leadHandler.Get)
	r.Patch("/leads/{id}", leadHandler.Update)
	r.Delete("/leads/{id}", leadHandler.SoftDelete)
	r.Post("/leads/{id}/payment-request", paymentHandler.SubmitRequest)
	r.Post("/payment-requests/{id}/verify", paymentHandler.VerifyRequest)

	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateLeadEndpoint(t *testing.T) {
	router := newTestRouter(entity.Actor{UserID: "head-1", Role: entity.RoleCounselorHead})

	rec := doJSON(t, router, http.MethodPost, "/leads", map[string]any{
		"student_name":   "Aarav",
		"contact_number": "+919990001111",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var lead entity.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
	assert.Equal(t, "Aarav", lead.StudentName)
	assert.Equal(t, entity.StatusNew, lead.Status)
}

func TestCreateLeadEndpointForbidden(t *testing.T) {
	router := newTestRouter(entity.Actor{UserID: "coun-1", Role: entity.RoleCounselor})

	rec := doJSON(t, router, http.MethodPost, "/leads", map[string]any{"student_name": "Aarav"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateLeadEndpointValidation(t *testing.T) {
	router := newTestRouter(entity.Actor{UserID: "head-1", Role: entity.RoleCounselorHead})

	rec := doJSON(t, router, http.MethodPost, "/leads", map[string]any{"student_name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLeadEndpointNotFound(t *testing.T) {
	router := newTestRouter(entity.Actor{UserID: "head-1", Role: entity.RoleCounselorHead})

	rec := doJSON(t, router, http.MethodGet, "/leads/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerifyEndpointConflictOnSecondCall(t *testing.T) {
	// super_admin can walk the whole flow through a single router.
	router := newTestRouter(entity.Actor{UserID: "admin-1", Role: entity.RoleSuperAdmin})

	rec := doJSON(t, router, http.MethodPost, "/leads", map[string]any{"student_name": "Aarav"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var lead entity.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))

	rec = doJSON(t, router, http.MethodPost, "/leads/"+lead.ID+"/payment-request", map[string]any{"amount": 500})
	require.Equal(t, http.StatusCreated, rec.Code)
	var payment entity.PaymentRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payment))

	rec = doJSON(t, router, http.MethodPost, "/payment-requests/"+payment.ID+"/verify", map[string]any{"approved": true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/payment-requests/"+payment.ID+"/verify", map[string]any{"approved": true})
	assert.Equal(t, http.StatusConflict, rec.Code)
}
