package entity

import (
	"encoding/json"
	"time"
)

// Audit action tags. lead.status_jump is recorded instead of
// lead.update when a free-form edit skips funnel steps.
const (
	AuditLeadCreate         = "lead.create"
	AuditLeadUpdate         = "lead.update"
	AuditLeadStatusJump     = "lead.status_jump"
	AuditLeadSoftDelete     = "lead.soft_delete"
	AuditLeadAssign         = "lead.assign_counselor"
	AuditLeadBulkAssign     = "lead.bulk_assign"
	AuditLeadDemoRequest    = "lead.demo_request"
	AuditLeadPaymentRequest = "lead.payment_request"
	AuditPaymentVerify      = "payment.verify"
	AuditPaymentReject      = "payment.reject"
)

// AuditLogEntry is a generic before/after change record. Writes are
// best-effort: a failed append never fails the business operation.
type AuditLogEntry struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actor_id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	BeforeData json.RawMessage `json:"before_data,omitempty"`
	AfterData  json.RawMessage `json:"after_data,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
