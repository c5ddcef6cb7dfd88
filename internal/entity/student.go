package entity

import "time"

// Student is the enrolled record produced by a verified payment.
// Conversion is the only path that creates one.
type Student struct {
	ID          string `json:"id"`
	StudentCode string `json:"student_code"`
	Name        string `json:"name"`
	ParentName  string `json:"parent_name,omitempty"`
	ContactNum  string `json:"contact_number,omitempty"`
	Email       string `json:"email,omitempty"`
	ClassLevel  string `json:"class_level,omitempty"`
	Package     string `json:"package,omitempty"`

	LeadID string `json:"lead_id"`
	Status string `json:"status"`

	JoinedAt  time.Time `json:"joined_at"`
	CreatedAt time.Time `json:"created_at"`
}

const StudentStatusActive = "active"
