package dto

import (
	"time"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

// AttendanceEntry is one create request, used alone by POST /attendance and in bulk by POST /attendance/batch.
type AttendanceEntry struct {
	StudentID string                  `json:"studentId" validate:"required,uuid"`
	Date      time.Time               `json:"date" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required,attendance_status"`
	Note      string                  `json:"note" validate:"max=500"`
}

// AttendanceBatchRequest wraps entries for the batch endpoint.
type AttendanceBatchRequest struct {
	Entries []AttendanceEntry `json:"entries"`
}

// AttendancePatch updates status and/or note of one record.
type AttendancePatch struct {
	Status *models.AttendanceStatus `json:"status,omitempty" validate:"omitempty,attendance_status"`
	Note   *string                  `json:"note,omitempty" validate:"omitempty,max=500"`
}
