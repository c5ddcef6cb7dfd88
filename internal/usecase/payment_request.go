package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/edustride/crm-backend/internal/entity"
	"github.com/edustride/crm-backend/internal/infra/queue"
	"github.com/edustride/crm-backend/internal/rbac"
)

type SubmitPaymentInput struct {
	Amount        float64 `json:"amount"`
	ScreenshotURL *string `json:"screenshot_url"`
}

// PaymentRequestUseCase files payment evidence against a lead and
// hands the lead to the finance stage.
type PaymentRequestUseCase struct {
	Leads    LeadRepositoryInterface
	Payments PaymentRequestRepositoryInterface
	History  HistoryRepositoryInterface
	Audit    AuditRepositoryInterface
	Events   EventPublisherInterface
}

func NewPaymentRequestUseCase(
	leads LeadRepositoryInterface,
	payments PaymentRequestRepositoryInterface,
	history HistoryRepositoryInterface,
	audit AuditRepositoryInterface,
	events EventPublisherInterface,
) *PaymentRequestUseCase {
	return &PaymentRequestUseCase{
		Leads:    leads,
		Payments: payments,
		History:  history,
		Audit:    audit,
		Events:   events,
	}
}

func (uc *PaymentRequestUseCase) Execute(ctx context.Context, actor entity.Actor, leadID string, input SubmitPaymentInput) (*entity.PaymentRequest, error) {
	if !rbac.CanSubmitPayment(actor) {
		return nil, NotPermitted("role " + string(actor.Role) + " cannot submit payment requests")
	}

	if errs := ValidateSubmitPaymentInput(input); len(errs) > 0 {
		return nil, joinValidationErrors(errs)
	}

	lead, err := loadAccessibleLead(ctx, uc.Leads, actor, leadID)
	if err != nil {
		return nil, err
	}

	request := &entity.PaymentRequest{
		ID:            uuid.New().String(),
		LeadID:        lead.ID,
		RequestedBy:   actor.UserID,
		Amount:        input.Amount,
		ScreenshotURL: input.ScreenshotURL,
		Status:        entity.PaymentPending,
		CreatedAt:     time.Now(),
	}

	if err := uc.Payments.Create(ctx, request); err != nil {
		return nil, Internal("failed to create payment request", err)
	}

	fromStatus := lead.Status
	lead.Status = entity.StatusPaymentPending
	lead.OwnerStage = entity.StageFinance
	lead.UpdatedAt = time.Now()

	if err := uc.Leads.Update(ctx, lead); err != nil {
		return nil, Internal("failed to update lead status", err)
	}

	if err := appendStatusHistory(ctx, uc.History, lead.ID, &fromStatus, lead.Status, actor.UserID, "payment request submitted"); err != nil {
		return nil, err
	}

	recordAudit(ctx, uc.Audit, actor.UserID, entity.AuditLeadPaymentRequest, "payment_request", request.ID, nil, request, "")
	publishLeadEvent(ctx, uc.Events, queue.LeadEvent{
		EventType:  queue.EventLeadStatusChanged,
		LeadID:     lead.ID,
		FromStatus: string(fromStatus),
		ToStatus:   string(lead.Status),
		ActorID:    actor.UserID,
	})

	return request, nil
}

// ListByStatus lets finance review the queue of submitted evidence.
func (uc *PaymentRequestUseCase) ListByStatus(ctx context.Context, actor entity.Actor, status entity.PaymentRequestStatus) ([]*entity.PaymentRequest, error) {
	if !rbac.CanVerifyPayment(actor) {
		return nil, NotPermitted("role " + string(actor.Role) + " cannot list payment requests")
	}

	requests, err := uc.Payments.ListByStatus(ctx, status)
	if err != nil {
		return nil, Internal("failed to list payment requests", err)
	}
	return requests, nil
}
