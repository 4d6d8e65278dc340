package models

import (
	"time"

	"github.com/lib/pq"
)

// Exam defines an examination sitting for a class.
type Exam struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Section   Section        `db:"section" json:"section"`
	Class     string         `db:"class" json:"class"`
	Date      time.Time      `db:"date" json:"date"`
	Subjects  pq.StringArray `db:"subjects" json:"subjects"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time      `db:"updated_at" json:"updatedAt"`
}

// HasSubject reports whether subject is examined.
func (e Exam) HasSubject(subject string) bool {
	for _, s := range e.Subjects {
		if s == subject {
			return true
		}
	}
	return false
}

// ExamFilter scopes exam listing.
type ExamFilter struct {
	Section Section
	Class   string
}

// Grade is the letter grade derived from a score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Grades lists every grade from best to worst.
func Grades() []Grade {
	return []Grade{GradeA, GradeB, GradeC, GradeD, GradeF}
}

// GradeFor derives the letter grade for a 0-100 score.
func GradeFor(score float64) Grade {
	switch {
	case score >= 90:
		return GradeA
	case score >= 80:
		return GradeB
	case score >= 70:
		return GradeC
	case score >= 60:
		return GradeD
	default:
		return GradeF
	}
}

// Result is one subject score of one student in one exam.
type Result struct {
	ID        string    `db:"id" json:"id"`
	ExamID    string    `db:"exam_id" json:"examId"`
	StudentID string    `db:"student_id" json:"studentId"`
	Subject   string    `db:"subject" json:"subject"`
	Score     float64   `db:"score" json:"score"`
	Grade     Grade     `db:"grade" json:"grade"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// ResultRecord extends the result with exam and student names.
type ResultRecord struct {
	Result
	ExamName    string `db:"exam_name" json:"examName"`
	StudentName string `db:"student_name" json:"studentName"`
}

// ResultFilter scopes result listing.
type ResultFilter struct {
	ExamID    string
	StudentID string
	Subject   string
}
