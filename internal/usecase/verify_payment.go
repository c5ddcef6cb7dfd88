package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/edustride/crm-backend/internal/entity"
	"github.com/edustride/crm-backend/internal/infra/queue"
	"github.com/edustride/crm-backend/internal/rbac"
)

// studentCodeWindow is how many recent codes the generator scans when
// picking the next numeric suffix.
const studentCodeWindow = 50

const verifyLockTTL = 30 * time.Second

type VerifyPaymentInput struct {
	RequestID   string `json:"request_id"`
	Approved    bool   `json:"approved"`
	FinanceNote string `json:"finance_note"`
}

type VerifyPaymentOutput struct {
	Request *entity.PaymentRequest `json:"request"`
	Student *entity.Student        `json:"student,omitempty"`
}

// VerifyPaymentUseCase is the conversion workflow: approval turns the
// lead into an enrolled student, rejection only closes the request.
// The request id doubles as the idempotency key; a short advisory lock
// plus a conditional pending→verified write keep two concurrent
// approvals from minting two students.
type VerifyPaymentUseCase struct {
	Payments PaymentRequestRepositoryInterface
	Leads    LeadRepositoryInterface
	Students StudentRepositoryInterface
	History  HistoryRepositoryInterface
	Audit    AuditRepositoryInterface
	Locks    Locker
	Events   EventPublisherInterface
}

func NewVerifyPaymentUseCase(
	payments PaymentRequestRepositoryInterface,
	leads LeadRepositoryInterface,
	students StudentRepositoryInterface,
	history HistoryRepositoryInterface,
	audit AuditRepositoryInterface,
	locks Locker,
	events EventPublisherInterface,
) *VerifyPaymentUseCase {
	return &VerifyPaymentUseCase{
		Payments: payments,
		Leads:    leads,
		Students: students,
		History:  history,
		Audit:    audit,
		Locks:    locks,
		Events:   events,
	}
}

func (uc *VerifyPaymentUseCase) Execute(ctx context.Context, actor entity.Actor, input VerifyPaymentInput) (*VerifyPaymentOutput, error) {
	if !rbac.CanVerifyPayment(actor) {
		return nil, NotPermitted("only finance or admin can verify payments")
	}

	if uc.Locks != nil {
		ok, err := uc.Locks.Acquire(ctx, "payment_verify:"+input.RequestID, verifyLockTTL)
		if err != nil {
			return nil, Internal("failed to acquire verification lock", err)
		}
		if !ok {
			return nil, Conflict("VERIFICATION_IN_PROGRESS", "payment request is being verified by another operator")
		}
		defer func() {
			if err := uc.Locks.Release(ctx, "payment_verify:"+input.RequestID); err != nil {
				slog.Warn("failed to release verification lock", "request_id", input.RequestID, "error", err)
			}
		}()
	}

	request, err := uc.Payments.FindByID(ctx, input.RequestID)
	if err != nil {
		return nil, Internal("failed to load payment request", err)
	}
	if request == nil {
		return nil, NotFound("payment request")
	}
	if request.Status != entity.PaymentPending {
		return nil, Conflict("ALREADY_PROCESSED", "payment request has already been processed")
	}

	if !input.Approved {
		return uc.reject(ctx, actor, request, input.FinanceNote)
	}
	return uc.approve(ctx, actor, request, input.FinanceNote)
}

func (uc *VerifyPaymentUseCase) reject(ctx context.Context, actor entity.Actor, request *entity.PaymentRequest, note string) (*VerifyPaymentOutput, error) {
	won, err := uc.Payments.MarkRejected(ctx, request.ID, actor.UserID, note)
	if err != nil {
		return nil, Internal("failed to reject payment request", err)
	}
	if !won {
		return nil, Conflict("ALREADY_PROCESSED", "payment request has already been processed")
	}

	before := *request
	now := time.Now()
	request.Status = entity.PaymentRejected
	request.FinanceNote = note
	request.VerifiedBy = &actor.UserID
	request.VerifiedAt = &now

	recordAudit(ctx, uc.Audit, actor.UserID, entity.AuditPaymentReject, "payment_request", request.ID, before, request, note)

	return &VerifyPaymentOutput{Request: request}, nil
}

func (uc *VerifyPaymentUseCase) approve(ctx context.Context, actor entity.Actor, request *entity.PaymentRequest, note string) (*VerifyPaymentOutput, error) {
	lead, err := uc.Leads.FindByID(ctx, request.LeadID)
	if err != nil {
		return nil, Internal("failed to load lead for conversion", err)
	}
	if lead == nil {
		return nil, NotFound("lead")
	}

	code, err := uc.nextStudentCode(ctx)
	if err != nil {
		return nil, Internal("failed to generate student code", err)
	}

	now := time.Now()
	student := &entity.Student{
		ID:          uuid.New().String(),
		StudentCode: code,
		Name:        lead.StudentName,
		ParentName:  lead.ParentName,
		ContactNum:  lead.ContactNum,
		Email:       lead.Email,
		ClassLevel:  lead.ClassLevel,
		Package:     lead.Subject,
		LeadID:      lead.ID,
		Status:      entity.StudentStatusActive,
		JoinedAt:    now,
		CreatedAt:   now,
	}

	leadBefore := snapshotLead(lead)
	fromStatus := lead.Status
	lead.Status = entity.StatusJoined
	lead.OwnerStage = entity.StageAcademic
	lead.JoinedStudentID = &student.ID
	lead.UpdatedAt = now

	verified := false

	txn := NewTransaction()

	txn.AddOperation("create_student", func(ctx context.Context) error {
		return uc.Students.Create(ctx, student)
	})
	txn.AddCompensation("delete_student", func(ctx context.Context) error {
		return uc.Students.Delete(ctx, student.ID)
	})

	txn.AddOperation("close_lead", func(ctx context.Context) error {
		return uc.Leads.Update(ctx, lead)
	})

	txn.AddOperation("verify_request", func(ctx context.Context) error {
		won, err := uc.Payments.MarkVerified(ctx, request.ID, actor.UserID, note)
		if err != nil {
			return err
		}
		if !won {
			return fmt.Errorf("payment request %s no longer pending", request.ID)
		}
		verified = true
		return nil
	})

	if err := txn.Execute(ctx); err != nil {
		if verified {
			return nil, Internal("conversion failed after verification", err)
		}
		return nil, Internal("conversion failed", err)
	}

	request.Status = entity.PaymentVerified
	request.FinanceNote = note
	request.VerifiedBy = &actor.UserID
	request.VerifiedAt = &now

	if err := appendStatusHistory(ctx, uc.History, lead.ID, &fromStatus, entity.StatusJoined, actor.UserID, "payment verified and student created"); err != nil {
		return nil, err
	}

	recordAudit(ctx, uc.Audit, actor.UserID, entity.AuditPaymentVerify, "lead", lead.ID, leadBefore, lead, note)
	publishLeadEvent(ctx, uc.Events, queue.LeadEvent{
		EventType:     queue.EventLeadConverted,
		LeadID:        lead.ID,
		FromStatus:    string(fromStatus),
		ToStatus:      string(lead.Status),
		ActorID:       actor.UserID,
		StudentID:     student.ID,
		StudentCode:   student.StudentCode,
		StudentName:   student.Name,
		Email:         student.Email,
		ContactNumber: student.ContactNum,
	})

	return &VerifyPaymentOutput{Request: request, Student: student}, nil
}

var studentCodeSuffix = regexp.MustCompile(`(\d+)$`)

// nextStudentCode scans the newest codes and increments the largest
// numeric suffix found. This tolerates gaps and hand-issued codes as
// long as the scan window covers the current maximum.
func (uc *VerifyPaymentUseCase) nextStudentCode(ctx context.Context) (string, error) {
	codes, err := uc.Students.RecentCodes(ctx, studentCodeWindow)
	if err != nil {
		return "", err
	}

	max := 0
	for _, code := range codes {
		m := studentCodeSuffix.FindString(code)
		if m == "" {
			continue
		}
		n, err := strconv.Atoi(m)
		if err == nil && n > max {
			max = n
		}
	}

	return fmt.Sprintf("STU-%04d", max+1), nil
}
