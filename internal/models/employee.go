package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// EmployeeRole describes the job an employee performs.
type EmployeeRole string

const (
	EmployeeRoleTeacher EmployeeRole = "teacher"
	EmployeeRoleDriver  EmployeeRole = "driver"
	EmployeeRoleCleaner EmployeeRole = "cleaner"
	EmployeeRoleGuard   EmployeeRole = "guard"
	EmployeeRoleAdmin   EmployeeRole = "admin"
	EmployeeRoleStaff   EmployeeRole = "staff"
)

// Valid returns true when the role is a supported value.
func (r EmployeeRole) Valid() bool {
	switch r {
	case EmployeeRoleTeacher, EmployeeRoleDriver, EmployeeRoleCleaner, EmployeeRoleGuard, EmployeeRoleAdmin, EmployeeRoleStaff:
		return true
	default:
		return false
	}
}

// Shift is the working shift of non-teaching staff.
type Shift string

const (
	ShiftMorning   Shift = "morning"
	ShiftAfternoon Shift = "afternoon"
	ShiftEvening   Shift = "evening"
)

// Employee is a member of staff. Section, shift and subjects are optional.
type Employee struct {
	ID        string         `db:"id" json:"id"`
	FirstName string         `db:"first_name" json:"firstName"`
	LastName  string         `db:"last_name" json:"lastName"`
	Email     string         `db:"email" json:"email"`
	Phone     string         `db:"phone" json:"phone"`
	Role      EmployeeRole   `db:"role" json:"role"`
	Section   *Section       `db:"section" json:"section,omitempty"`
	Shift     *Shift         `db:"shift" json:"shift,omitempty"`
	Subjects  pq.StringArray `db:"subjects" json:"subjects"`
	HireDate  *time.Time     `db:"hire_date" json:"hireDate,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time      `db:"updated_at" json:"updatedAt"`
}

// FullName is the composite display name used by list searches.
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// EmployeeFilter scopes employee listing.
type EmployeeFilter struct {
	Search    string
	Role      EmployeeRole
	Section   Section
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
