package models

import "time"

// Classroom is a physical class with an optional homeroom teacher.
type Classroom struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Section   Section   `db:"section" json:"section"`
	Capacity  int       `db:"capacity" json:"capacity"`
	TeacherID *string   `db:"teacher_id" json:"teacherId,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// ClassroomDetail adds the teacher's display name.
type ClassroomDetail struct {
	Classroom
	TeacherName *string `db:"teacher_name" json:"teacherName,omitempty"`
}

// ClassroomFilter scopes classroom listing.
type ClassroomFilter struct {
	Section   Section
	TeacherID string
	Search    string
}
