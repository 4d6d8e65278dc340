package models

import (
	"strings"
	"time"
)

// Section is the broad school-level grouping of students, employees and classrooms.
type Section string

const (
	SectionPrimary    Section = "primary"
	SectionSecondary  Section = "secondary"
	SectionHighSchool Section = "highschool"
)

// Valid returns true when the section is a supported value.
func (s Section) Valid() bool {
	switch s {
	case SectionPrimary, SectionSecondary, SectionHighSchool:
		return true
	default:
		return false
	}
}

// Sections lists every section in display order.
func Sections() []Section {
	return []Section{SectionPrimary, SectionSecondary, SectionHighSchool}
}

// Student represents a learner registered in the school.
type Student struct {
	ID            string    `db:"id" json:"id"`
	FirstName     string    `db:"first_name" json:"firstName"`
	LastName      string    `db:"last_name" json:"lastName"`
	Gender        string    `db:"gender" json:"gender"`
	DateOfBirth   time.Time `db:"date_of_birth" json:"dateOfBirth"`
	Address       string    `db:"address" json:"address"`
	GuardianName  string    `db:"guardian_name" json:"guardianName"`
	GuardianPhone string    `db:"guardian_phone" json:"guardianPhone"`
	GuardianEmail string    `db:"guardian_email" json:"guardianEmail"`
	Section       Section   `db:"section" json:"section"`
	Class         string    `db:"class" json:"class"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// FullName is the composite display name used by list searches.
func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Section   Section
	Class     string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
