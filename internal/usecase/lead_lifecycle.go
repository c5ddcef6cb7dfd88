package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/edustride/crm-backend/internal/entity"
	"github.com/edustride/crm-backend/internal/infra/queue"
	"github.com/edustride/crm-backend/internal/rbac"
)

// LeadLifecycleUseCase orchestrates lead reads, edits, deletion,
// assignment and the status timeline. Demo scheduling and the payment
// flow live in their own use cases.
type LeadLifecycleUseCase struct {
	Leads   LeadRepositoryInterface
	History HistoryRepositoryInterface
	Audit   AuditRepositoryInterface
	Users   UserDirectory
	Events  EventPublisherInterface
}

func NewLeadLifecycleUseCase(
	leads LeadRepositoryInterface,
	history HistoryRepositoryInterface,
	audit AuditRepositoryInterface,
	users UserDirectory,
	events EventPublisherInterface,
) *LeadLifecycleUseCase {
	return &LeadLifecycleUseCase{
		Leads:   leads,
		History: history,
		Audit:   audit,
		Users:   users,
		Events:  events,
	}
}

type CreateLeadInput struct {
	StudentName string  `json:"student_name"`
	ParentName  string  `json:"parent_name"`
	ClassLevel  string  `json:"class_level"`
	Subject     string  `json:"subject"`
	ContactNum  string  `json:"contact_number"`
	Email       string  `json:"email"`
	CounselorID *string `json:"counselor_id"`
}

// UpdateLeadInput uses pointers so absent fields are left untouched.
type UpdateLeadInput struct {
	StudentName *string            `json:"student_name"`
	ParentName  *string            `json:"parent_name"`
	ClassLevel  *string            `json:"class_level"`
	Subject     *string            `json:"subject"`
	ContactNum  *string            `json:"contact_number"`
	Email       *string            `json:"email"`
	Status      *entity.LeadStatus `json:"status"`
	OwnerStage  *entity.OwnerStage `json:"owner_stage"`
}

const ScopeAll = "all"
const ScopeMine = "mine"

func (uc *LeadLifecycleUseCase) List(ctx context.Context, actor entity.Actor, scope string) ([]*entity.Lead, error) {
	filter, err := scopeFilter(actor, scope)
	if err != nil {
		return nil, err
	}

	leads, err := uc.Leads.List(ctx, filter)
	if err != nil {
		return nil, Internal("failed to list leads", err)
	}
	return leads, nil
}

// ListOutcomes returns the closed leads (joined or dropped) visible to
// the actor.
func (uc *LeadLifecycleUseCase) ListOutcomes(ctx context.Context, actor entity.Actor) ([]*entity.Lead, error) {
	filter, err := scopeFilter(actor, ScopeAll)
	if err != nil {
		return nil, err
	}
	filter.Statuses = []entity.LeadStatus{entity.StatusJoined, entity.StatusDropped}

	leads, err := uc.Leads.List(ctx, filter)
	if err != nil {
		return nil, Internal("failed to list outcomes", err)
	}
	return leads, nil
}

func (uc *LeadLifecycleUseCase) Get(ctx context.Context, actor entity.Actor, id string) (*entity.Lead, error) {
	return loadAccessibleLead(ctx, uc.Leads, actor, id)
}

func (uc *LeadLifecycleUseCase) Create(ctx context.Context, actor entity.Actor, input CreateLeadInput) (*entity.Lead, error) {
	if !rbac.CanCreateLead(actor) {
		return nil, NotPermitted("only counselor head or admin can create leads")
	}

	if errs := ValidateCreateLeadInput(input); len(errs) > 0 {
		return nil, joinValidationErrors(errs)
	}

	lead, err := entity.NewLead(input.StudentName)
	if err != nil {
		return nil, NewValidationError(err.Error())
	}
	lead.ParentName = input.ParentName
	lead.ClassLevel = input.ClassLevel
	lead.Subject = input.Subject
	lead.ContactNum = input.ContactNum
	lead.Email = strings.TrimSpace(input.Email)
	lead.CounselorID = input.CounselorID

	if err := uc.Leads.Create(ctx, lead); err != nil {
		return nil, Internal("failed to create lead", err)
	}

	if err := appendStatusHistory(ctx, uc.History, lead.ID, nil, entity.StatusNew, actor.UserID, "lead created"); err != nil {
		return nil, err
	}

	recordAudit(ctx, uc.Audit, actor.UserID, entity.AuditLeadCreate, "lead", lead.ID, nil, lead, "")
	publishLeadEvent(ctx, uc.Events, queue.LeadEvent{
		EventType: queue.EventLeadCreated,
		LeadID:    lead.ID,
		ToStatus:  string(lead.Status),
		ActorID:   actor.UserID,
	})

	return lead, nil
}

func (uc *LeadLifecycleUseCase) Update(ctx context.Context, actor entity.Actor, id string, input UpdateLeadInput) (*entity.Lead, error) {
	lead, err := loadAccessibleLead(ctx, uc.Leads, actor, id)
	if err != nil {
		return nil, err
	}

	before := snapshotLead(lead)
	fromStatus := lead.Status

	if input.StudentName != nil {
		if strings.TrimSpace(*input.StudentName) == "" {
			return nil, NewValidationError("student_name must not be empty")
		}
		lead.StudentName = strings.TrimSpace(*input.StudentName)
	}
	if input.ParentName != nil {
		lead.ParentName = *input.ParentName
	}
	if input.ClassLevel != nil {
		lead.ClassLevel = *input.ClassLevel
	}
	if input.Subject != nil {
		lead.Subject = *input.Subject
	}
	if input.ContactNum != nil {
		lead.ContactNum = *input.ContactNum
	}
	if input.Email != nil {
		lead.Email = strings.TrimSpace(*input.Email)
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, NewValidationError("invalid status value")
		}
		lead.Status = *input.Status
	}
	if input.OwnerStage != nil {
		lead.OwnerStage = *input.OwnerStage
	}
	lead.UpdatedAt = time.Now()

	if err := uc.Leads.Update(ctx, lead); err != nil {
		return nil, Internal("failed to update lead", err)
	}

	statusChanged := lead.Status != fromStatus
	if statusChanged {
		if err := appendStatusHistory(ctx, uc.History, lead.ID, &fromStatus, lead.Status, actor.UserID, "status updated"); err != nil {
			return nil, err
		}
	}

	// A free-form edit may legally skip funnel steps; tag those so the
	// escape hatch stays observable.
	action := entity.AuditLeadUpdate
	if statusChanged && !entity.AdjacentTransition(fromStatus, lead.Status) {
		action = entity.AuditLeadStatusJump
	}
	recordAudit(ctx, uc.Audit, actor.UserID, action, "lead", lead.ID, before, lead, "")

	if statusChanged {
		publishLeadEvent(ctx, uc.Events, queue.LeadEvent{
			EventType:  queue.EventLeadStatusChanged,
			LeadID:     lead.ID,
			FromStatus: string(fromStatus),
			ToStatus:   string(lead.Status),
			ActorID:    actor.UserID,
		})
	}

	return lead, nil
}

func (uc *LeadLifecycleUseCase) SoftDelete(ctx context.Context, actor entity.Actor, id, reason string) (*entity.Lead, error) {
	if !rbac.CanDeleteLead(actor) {
		return nil, NotPermitted("only counselor head or admin can delete leads")
	}

	lead, err := uc.Leads.FindByID(ctx, id)
	if err != nil {
		return nil, Internal("failed to load lead", err)
	}
	if lead == nil {
		return nil, NotFound("lead")
	}

	before := snapshotLead(lead)
	now := time.Now()
	lead.DeletedAt = &now
	lead.DeletedBy = &actor.UserID
	lead.DeleteReason = reason
	lead.UpdatedAt = now

	if err := uc.Leads.Update(ctx, lead); err != nil {
		return nil, Internal("failed to delete lead", err)
	}

	recordAudit(ctx, uc.Audit, actor.UserID, entity.AuditLeadSoftDelete, "lead", lead.ID, before, lead, reason)

	return lead, nil
}

func (uc *LeadLifecycleUseCase) AssignCounselor(ctx context.Context, actor entity.Actor, id, counselorID string) (*entity.Lead, error) {
	if !rbac.CanAssignCounselor(actor) {
		return nil, NotPermitted("only counselor head or admin can assign counselors")
	}
	if strings.TrimSpace(counselorID) == "" {
		return nil, NewValidationError("counselor_id is required")
	}

	lead, err := uc.Leads.FindByID(ctx, id)
	if err != nil {
		return nil, Internal("failed to load lead", err)
	}
	if lead == nil {
		return nil, NotFound("lead")
	}

	before := snapshotLead(lead)
	lead.CounselorID = &counselorID
	lead.UpdatedAt = time.Now()

	if err := uc.Leads.Update(ctx, lead); err != nil {
		return nil, Internal("failed to assign counselor", err)
	}

	// Assignment keeps the status but still lands on the timeline so
	// ownership changes stay attributable.
	if err := appendStatusHistory(ctx, uc.History, lead.ID, &lead.Status, lead.Status, actor.UserID, "assigned to counselor "+counselorID); err != nil {
		return nil, err
	}

	recordAudit(ctx, uc.Audit, actor.UserID, entity.AuditLeadAssign, "lead", lead.ID, before, lead, "")

	return lead, nil
}

// BulkAssign reassigns every live lead in the list and reports how many
// were actually updated.
func (uc *LeadLifecycleUseCase) BulkAssign(ctx context.Context, actor entity.Actor, leadIDs []string, counselorID string) (int, error) {
	if !rbac.CanAssignCounselor(actor) {
		return 0, NotPermitted("only counselor head or admin can assign counselors")
	}
	if len(leadIDs) == 0 {
		return 0, NewValidationError("lead_ids must not be empty")
	}
	if strings.TrimSpace(counselorID) == "" {
		return 0, NewValidationError("counselor_id is required")
	}

	updated, err := uc.Leads.BulkAssign(ctx, leadIDs, counselorID)
	if err != nil {
		return 0, Internal("failed to bulk assign leads", err)
	}

	for _, lead := range updated {
		if err := appendStatusHistory(ctx, uc.History, lead.ID, &lead.Status, lead.Status, actor.UserID, "bulk assigned to counselor "+counselorID); err != nil {
			return len(updated), err
		}
	}

	recordAudit(ctx, uc.Audit, actor.UserID, entity.AuditLeadBulkAssign, "lead", counselorID, nil, map[string]any{
		"lead_ids":     leadIDs,
		"counselor_id": counselorID,
		"updated":      len(updated),
	}, "")

	return len(updated), nil
}

// GetHistory returns the lead's ordered timeline with actor display
// names resolved.
func (uc *LeadLifecycleUseCase) GetHistory(ctx context.Context, actor entity.Actor, id string) ([]*entity.LeadStatusHistoryEntry, error) {
	if _, err := loadAccessibleLead(ctx, uc.Leads, actor, id); err != nil {
		return nil, err
	}

	entries, err := uc.History.ListByLead(ctx, id)
	if err != nil {
		return nil, Internal("failed to load lead history", err)
	}

	if uc.Users != nil && len(entries) > 0 {
		ids := make([]string, 0, len(entries))
		seen := map[string]bool{}
		for _, e := range entries {
			if !seen[e.ChangedBy] {
				seen[e.ChangedBy] = true
				ids = append(ids, e.ChangedBy)
			}
		}
		names, err := uc.Users.DisplayNames(ctx, ids)
		if err != nil {
			slog.Warn("failed to resolve history actor names", "error", err)
		} else {
			for _, e := range entries {
				e.ChangedByName = names[e.ChangedBy]
			}
		}
	}

	return entries, nil
}

// scopeFilter translates the actor's role into the listing filter:
// heads and admins may see everything, counselors are always forced to
// their own leads, everyone else is denied.
func scopeFilter(actor entity.Actor, scope string) (LeadFilter, error) {
	if rbac.CanReadAll(actor) {
		if scope == ScopeMine {
			id := actor.UserID
			return LeadFilter{CounselorID: &id}, nil
		}
		return LeadFilter{}, nil
	}
	if actor.Role == entity.RoleCounselor {
		id := actor.UserID
		return LeadFilter{CounselorID: &id}, nil
	}
	return LeadFilter{}, NotPermitted("role " + string(actor.Role) + " cannot list leads")
}

// loadAccessibleLead is the shared visibility gate. Out-of-scope and
// soft-deleted leads both come back as not-found so existence never
// leaks; roles with no lead visibility at all get a plain denial.
func loadAccessibleLead(ctx context.Context, repo LeadRepositoryInterface, actor entity.Actor, id string) (*entity.Lead, error) {
	lead, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, Internal("failed to load lead", err)
	}
	if lead == nil {
		return nil, NotFound("lead")
	}
	if rbac.CanAccessLead(actor, lead) {
		return lead, nil
	}
	if actor.Role == entity.RoleCounselor {
		return nil, NotFound("lead")
	}
	return nil, NotPermitted("role " + string(actor.Role) + " cannot access leads")
}

func appendStatusHistory(ctx context.Context, repo HistoryRepositoryInterface, leadID string, from *entity.LeadStatus, to entity.LeadStatus, changedBy, reason string) error {
	entry := &entity.LeadStatusHistoryEntry{
		ID:         uuid.New().String(),
		LeadID:     leadID,
		FromStatus: from,
		ToStatus:   to,
		ChangedBy:  changedBy,
		Reason:     reason,
		CreatedAt:  time.Now(),
	}
	// The primary write already succeeded; a history failure surfaces
	// but nothing is rolled back.
	if err := repo.Append(ctx, entry); err != nil {
		return Internal("failed to record status history", err)
	}
	return nil
}

func publishLeadEvent(ctx context.Context, pub EventPublisherInterface, event queue.LeadEvent) {
	if pub == nil {
		return
	}
	event.OccurredAt = time.Now()
	if err := pub.PublishLeadEvent(ctx, event); err != nil {
		slog.Warn("lead event publish failed", "event", event.EventType, "lead_id", event.LeadID, "error", err)
	}
}
