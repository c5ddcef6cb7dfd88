package entity

import "time"

type DemoRequestStatus string

const (
	DemoOpen      DemoRequestStatus = "open"
	DemoDone      DemoRequestStatus = "done"
	DemoCancelled DemoRequestStatus = "cancelled"
)

type DemoRequest struct {
	ID            string            `json:"id"`
	LeadID        string            `json:"lead_id"`
	BroadcastedBy string            `json:"broadcasted_by"`
	ScheduledAt   *time.Time        `json:"scheduled_at,omitempty"`
	Status        DemoRequestStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
}
