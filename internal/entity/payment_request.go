package entity

import "time"

type PaymentRequestStatus string

const (
	PaymentPending  PaymentRequestStatus = "pending"
	PaymentVerified PaymentRequestStatus = "verified"
	PaymentRejected PaymentRequestStatus = "rejected"
)

// PaymentRequest is evidence of a payment submitted against a lead.
// Once status leaves pending the row is immutable.
type PaymentRequest struct {
	ID            string               `json:"id"`
	LeadID        string               `json:"lead_id"`
	RequestedBy   string               `json:"requested_by"`
	Amount        float64              `json:"amount"`
	ScreenshotURL *string              `json:"screenshot_url,omitempty"`
	Status        PaymentRequestStatus `json:"status"`
	FinanceNote   string               `json:"finance_note,omitempty"`
	VerifiedBy    *string              `json:"verified_by,omitempty"`
	VerifiedAt    *time.Time           `json:"verified_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}
