package auth

import "strings"

const (
	msgMissingFields  = "Missing required fields"
	msgStudentNoLevel = "Students must have a level assigned"
)

// CanManageUsers reports whether role may create or modify accounts.
func CanManageUsers(role Role) bool {
	return role == RoleAdmin
}

// CanApproveLeave is capability based: only holders of PRINCIPAL decide on leave.
func CanApproveLeave(actor Actor) bool {
	return actor.HasCapability(CapPrincipal)
}

type UserCandidate struct {
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Password       string         `json:"password"`
	Role           Role           `json:"role"`
	Level          string         `json:"level,omitempty"`
	TeacherRoles   []Capability   `json:"teacherRoles,omitempty"`
	EmploymentType EmploymentType `json:"employmentType,omitempty"`
	ICNumber       string         `json:"icNumber,omitempty"`
}

type Validation struct {
	Valid bool
	Error string
}

func ValidateUserCreation(c UserCandidate) Validation {
	if blank(c.Name) || blank(c.Email) || blank(c.Password) || blank(string(c.Role)) {
		return Validation{Error: msgMissingFields}
	}
	if c.Role == RoleStudent && blank(c.Level) {
		return Validation{Error: msgStudentNoLevel}
	}
	return Validation{Valid: true}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
