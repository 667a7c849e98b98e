package auth

import "slices"

type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
	// RoleSystem is never stored on a user; it marks actions taken by the service itself.
	RoleSystem Role = "SYSTEM"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// Capability is a teacher sub-role that grants extra powers on top of RoleTeacher.
type Capability string

const (
	CapPrincipal        Capability = "PRINCIPAL"
	CapHeadOfDepartment Capability = "HEAD_OF_DEPARTMENT"
	CapClassTeacher     Capability = "CLASS_TEACHER"
)

func (c Capability) Valid() bool {
	switch c {
	case CapPrincipal, CapHeadOfDepartment, CapClassTeacher:
		return true
	}
	return false
}

type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "FULL_TIME"
	EmploymentPartTime EmploymentType = "PART_TIME"
	EmploymentContract EmploymentType = "CONTRACT"
)

// Actor is the resolved identity performing an operation. It is read once per
// request and not mutated afterwards.
type Actor struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Role           Role           `json:"role"`
	TeacherRoles   []Capability   `json:"teacherRoles"`
	EmploymentType EmploymentType `json:"employmentType,omitempty"`
	Level          string         `json:"level,omitempty"`
}

func (a Actor) HasCapability(c Capability) bool {
	return slices.Contains(a.TeacherRoles, c)
}
