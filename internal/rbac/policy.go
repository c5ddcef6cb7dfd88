// Package rbac holds the pure allow/deny policy for the lead pipeline.
// It is a static capability table over the closed role set; it keeps no
// state and never touches storage.
package rbac

import "github.com/edustride/crm-backend/internal/entity"

type Action string

const (
	ActionReadAllLeads    Action = "leads.read_all"
	ActionCreateLead      Action = "leads.create"
	ActionDeleteLead      Action = "leads.delete"
	ActionAssignCounselor Action = "leads.assign_counselor"
	ActionRequestDemo     Action = "leads.request_demo"
	ActionSubmitPayment   Action = "leads.submit_payment"
	ActionVerifyPayment   Action = "payments.verify"
)

var capabilities = map[entity.Role]map[Action]bool{
	entity.RoleSuperAdmin: {
		ActionReadAllLeads:    true,
		ActionCreateLead:      true,
		ActionDeleteLead:      true,
		ActionAssignCounselor: true,
		ActionRequestDemo:     true,
		ActionSubmitPayment:   true,
		ActionVerifyPayment:   true,
	},
	entity.RoleCounselorHead: {
		ActionReadAllLeads:    true,
		ActionCreateLead:      true,
		ActionDeleteLead:      true,
		ActionAssignCounselor: true,
		ActionRequestDemo:     true,
		ActionSubmitPayment:   true,
	},
	entity.RoleCounselor: {
		ActionRequestDemo:   true,
		ActionSubmitPayment: true,
	},
	entity.RoleFinance: {
		ActionVerifyPayment: true,
	},
}

// Can is the raw table lookup. Roles absent from the table can do
// nothing in this subsystem.
func Can(role entity.Role, action Action) bool {
	caps, ok := capabilities[role]
	if !ok {
		return false
	}
	return caps[action]
}

// CanReadAll reports whether the actor may list every lead regardless
// of ownership.
func CanReadAll(actor entity.Actor) bool {
	return Can(actor.Role, ActionReadAllLeads)
}

// CanAccessLead is the single visibility gate used by every read and
// mutate path. Counselors only reach leads assigned to them.
func CanAccessLead(actor entity.Actor, lead *entity.Lead) bool {
	if Can(actor.Role, ActionReadAllLeads) {
		return true
	}
	if actor.Role == entity.RoleCounselor {
		return lead.CounselorID != nil && *lead.CounselorID == actor.UserID
	}
	return false
}

func CanCreateLead(actor entity.Actor) bool      { return Can(actor.Role, ActionCreateLead) }
func CanDeleteLead(actor entity.Actor) bool      { return Can(actor.Role, ActionDeleteLead) }
func CanAssignCounselor(actor entity.Actor) bool { return Can(actor.Role, ActionAssignCounselor) }
func CanRequestDemo(actor entity.Actor) bool     { return Can(actor.Role, ActionRequestDemo) }
func CanSubmitPayment(actor entity.Actor) bool   { return Can(actor.Role, ActionSubmitPayment) }
func CanVerifyPayment(actor entity.Actor) bool   { return Can(actor.Role, ActionVerifyPayment) }
