package entity

import "time"

// LeadStatusHistoryEntry is one row of a lead's append-only timeline.
// Ordered by CreatedAt ascending. FromStatus is nil for the creation
// event; for ownership changes FromStatus == ToStatus and Reason
// carries the assignment detail.
type LeadStatusHistoryEntry struct {
	ID         string      `json:"id"`
	LeadID     string      `json:"lead_id"`
	FromStatus *LeadStatus `json:"from_status,omitempty"`
	ToStatus   LeadStatus  `json:"to_status"`
	ChangedBy  string      `json:"changed_by"`
	// ChangedByName is resolved from the users directory on read; it
	// is not stored.
	ChangedByName string    `json:"changed_by_name,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
