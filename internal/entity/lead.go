package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	StatusNew                 LeadStatus = "new"
	StatusContacted           LeadStatus = "contacted"
	StatusDemoScheduled       LeadStatus = "demo_scheduled"
	StatusDemoDone            LeadStatus = "demo_done"
	StatusPaymentPending      LeadStatus = "payment_pending"
	StatusPaymentVerification LeadStatus = "payment_verification"
	StatusJoined              LeadStatus = "joined"
	StatusDropped             LeadStatus = "dropped"
)

// happyPath is the ordered funnel sequence; dropped sits outside it.
var happyPath = []LeadStatus{
	StatusNew,
	StatusContacted,
	StatusDemoScheduled,
	StatusDemoDone,
	StatusPaymentPending,
	StatusPaymentVerification,
	StatusJoined,
}

func (s LeadStatus) Valid() bool {
	if s == StatusDropped {
		return true
	}
	for _, st := range happyPath {
		if st == s {
			return true
		}
	}
	return false
}

func (s LeadStatus) Terminal() bool {
	return s == StatusJoined || s == StatusDropped
}

// AdjacentTransition reports whether from→to is a single step of the
// funnel, a drop, or a no-op. Anything else is a jump; jumps are still
// legal through the general update path but are tagged separately in
// the audit log.
func AdjacentTransition(from, to LeadStatus) bool {
	if from == to || to == StatusDropped {
		return true
	}
	for i, st := range happyPath {
		if st == from {
			return i+1 < len(happyPath) && happyPath[i+1] == to
		}
	}
	return false
}

// OwnerStage tags which team currently owns follow-up on a lead.
type OwnerStage string

const (
	StageCounselor OwnerStage = "counselor"
	StageFinance   OwnerStage = "finance"
	StageAcademic  OwnerStage = "academic"
)

type Lead struct {
	ID          string `json:"id"`
	StudentName string `json:"student_name"`
	ParentName  string `json:"parent_name,omitempty"`
	ClassLevel  string `json:"class_level,omitempty"`
	Subject     string `json:"subject,omitempty"`
	ContactNum  string `json:"contact_number,omitempty"`
	Email       string `json:"email,omitempty"`

	CounselorID *string `json:"counselor_id,omitempty"`

	Status     LeadStatus `json:"status"`
	OwnerStage OwnerStage `json:"owner_stage"`

	JoinedStudentID *string `json:"joined_student_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	DeletedBy    *string    `json:"deleted_by,omitempty"`
	DeleteReason string     `json:"delete_reason,omitempty"`
}

// Factory
func NewLead(studentName string) (*Lead, error) {
	lead := &Lead{
		ID:          uuid.New().String(),
		StudentName: strings.TrimSpace(studentName),
		Status:      StatusNew,
		OwnerStage:  StageCounselor,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if l.StudentName == "" {
		return errors.New("student_name is required")
	}
	if !l.Status.Valid() {
		return errors.New("invalid lead status")
	}
	return nil
}

func (l *Lead) Deleted() bool {
	return l.DeletedAt != nil
}
