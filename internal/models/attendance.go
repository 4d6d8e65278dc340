package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate:
		return true
	default:
		return false
	}
}

// Attendance is one row per (student, date). Duplicate rows for the same day are allowed.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"studentId"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Note      string           `db:"note" json:"note"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time        `db:"updated_at" json:"updatedAt"`
}

// AttendanceRecord extends the row with student placement.
type AttendanceRecord struct {
	Attendance
	StudentName string  `db:"student_name" json:"studentName"`
	Section     Section `db:"section" json:"section"`
	Class       string  `db:"class" json:"class"`
}

// AttendanceFilter defines query filters.
type AttendanceFilter struct {
	StudentID string
	Section   Section
	Class     string
	Status    AttendanceStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortOrder string
}

// AttendanceBatchItemResult reports the outcome of one item in a batch create.
type AttendanceBatchItemResult struct {
	Index     int         `json:"index"`
	StudentID string      `json:"studentId"`
	Record    *Attendance `json:"record,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// AttendanceBatchResult summarises a batch create.
type AttendanceBatchResult struct {
	Processed int                         `json:"processed"`
	Succeeded int                         `json:"succeeded"`
	Failed    int                         `json:"failed"`
	Items     []AttendanceBatchItemResult `json:"items"`
}
