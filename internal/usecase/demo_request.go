package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/edustride/crm-backend/internal/entity"
	"github.com/edustride/crm-backend/internal/infra/queue"
	"github.com/edustride/crm-backend/internal/rbac"
)

// DemoRequestUseCase broadcasts a demo ask to the academic team and
// moves the lead to demo_scheduled. There is deliberately no check on
// the prior status: a counselor may re-broadcast, and each broadcast
// lands on the timeline.
type DemoRequestUseCase struct {
	Leads   LeadRepositoryInterface
	Demos   DemoRequestRepositoryInterface
	History HistoryRepositoryInterface
	Audit   AuditRepositoryInterface
	Events  EventPublisherInterface
}

func NewDemoRequestUseCase(
	leads LeadRepositoryInterface,
	demos DemoRequestRepositoryInterface,
	history HistoryRepositoryInterface,
	audit AuditRepositoryInterface,
	events EventPublisherInterface,
) *DemoRequestUseCase {
	return &DemoRequestUseCase{
		Leads:   leads,
		Demos:   demos,
		History: history,
		Audit:   audit,
		Events:  events,
	}
}

func (uc *DemoRequestUseCase) Execute(ctx context.Context, actor entity.Actor, leadID string, scheduledAt *time.Time) (*entity.DemoRequest, error) {
	if !rbac.CanRequestDemo(actor) {
		return nil, NotPermitted("role " + string(actor.Role) + " cannot request demos")
	}

	lead, err := loadAccessibleLead(ctx, uc.Leads, actor, leadID)
	if err != nil {
		return nil, err
	}

	demo := &entity.DemoRequest{
		ID:            uuid.New().String(),
		LeadID:        lead.ID,
		BroadcastedBy: actor.UserID,
		ScheduledAt:   scheduledAt,
		Status:        entity.DemoOpen,
		CreatedAt:     time.Now(),
	}

	if err := uc.Demos.Create(ctx, demo); err != nil {
		return nil, Internal("failed to create demo request", err)
	}

	fromStatus := lead.Status
	lead.Status = entity.StatusDemoScheduled
	lead.UpdatedAt = time.Now()

	if err := uc.Leads.Update(ctx, lead); err != nil {
		return nil, Internal("failed to update lead status", err)
	}

	if err := appendStatusHistory(ctx, uc.History, lead.ID, &fromStatus, lead.Status, actor.UserID, "demo requested"); err != nil {
		return nil, err
	}

	recordAudit(ctx, uc.Audit, actor.UserID, entity.AuditLeadDemoRequest, "demo_request", demo.ID, nil, demo, "")
	publishLeadEvent(ctx, uc.Events, queue.LeadEvent{
		EventType:  queue.EventLeadStatusChanged,
		LeadID:     lead.ID,
		FromStatus: string(fromStatus),
		ToStatus:   string(lead.Status),
		ActorID:    actor.UserID,
	})

	return demo, nil
}

// List returns all demo requests for the coordination roles.
func (uc *DemoRequestUseCase) List(ctx context.Context, actor entity.Actor) ([]*entity.DemoRequest, error) {
	switch actor.Role {
	case entity.RoleSuperAdmin, entity.RoleCounselorHead,
		entity.RoleAcademicCoordinator, entity.RoleTeacherCoordinator:
	default:
		return nil, NotPermitted("role " + string(actor.Role) + " cannot list demo requests")
	}

	demos, err := uc.Demos.List(ctx)
	if err != nil {
		return nil, Internal("failed to list demo requests", err)
	}
	return demos, nil
}
