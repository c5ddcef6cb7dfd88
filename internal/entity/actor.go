package entity

// Role is the closed set of staff roles issued by the auth service.
type Role string

const (
	RoleSuperAdmin          Role = "super_admin"
	RoleCounselorHead       Role = "counselor_head"
	RoleCounselor           Role = "counselor"
	RoleFinance             Role = "finance"
	RoleAcademicCoordinator Role = "academic_coordinator"
	RoleTeacherCoordinator  Role = "teacher_coordinator"
	RoleTeacher             Role = "teacher"
	RoleHR                  Role = "hr"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleCounselorHead, RoleCounselor, RoleFinance,
		RoleAcademicCoordinator, RoleTeacherCoordinator, RoleTeacher, RoleHR:
		return true
	}
	return false
}

// Actor is the authenticated identity performing an operation.
// It is never persisted here; the login service owns credentials.
type Actor struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}
