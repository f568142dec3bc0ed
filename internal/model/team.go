package model

type Team struct {
	ID         string `json:"id"`
	Name       string `json:"name" validate:"required"`
	TeamNumber *int   `json:"team_number,omitempty"`
	InviteCode string `json:"invite_code"`
}

type Role string

const (
	RoleAdmin          Role = "admin"
	RoleMentor         Role = "mentor"
	RoleCodeLead       Role = "code_lead"
	RoleMechanicalLead Role = "mechanical_lead"
	RoleElectricalLead Role = "electrical_lead"
	RoleDriveCoach     Role = "drive_coach"
	RoleStudentMentor  Role = "student_mentor"
	RoleStudent        Role = "student"
)

// Organizer roles may mutate team-level resources (invite code, member roles,
// pinned messages).
func (r Role) IsOrganizer() bool {
	return r == RoleAdmin || r == RoleMentor
}

type Profile struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Role      Role    `json:"role"`
	TeamID    *string `json:"team_id,omitempty"`
}
