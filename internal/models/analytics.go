package models

import "time"

// DashboardStats is the aggregate payload served by /stats.
type DashboardStats struct {
	TotalStudents     int                      `json:"totalStudents"`
	TotalEmployees    int                      `json:"totalEmployees"`
	TotalClassrooms   int                      `json:"totalClassrooms"`
	StudentsBySection map[Section]int          `json:"studentsBySection"`
	EmployeesByRole   map[EmployeeRole]int     `json:"employeesByRole"`
	AttendanceToday   map[AttendanceStatus]int `json:"attendanceToday"`
	Payments          PaymentTotals            `json:"payments"`
	GeneratedAt       time.Time                `json:"generatedAt"`
}

// PaymentTotals sums payments per status.
type PaymentTotals struct {
	TotalAmount float64                       `json:"totalAmount"`
	ByStatus    map[PaymentStatus]AmountCount `json:"byStatus"`
}

// AmountCount pairs a summed amount with the row count behind it.
type AmountCount struct {
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// GroupCount is a generic (key, count) row scanned from GROUP BY queries.
type GroupCount struct {
	Key   string `db:"key"`
	Count int    `db:"count"`
}

// GroupAmount is a (key, sum, count) row scanned from GROUP BY queries.
type GroupAmount struct {
	Key    string  `db:"key"`
	Amount float64 `db:"amount"`
	Count  int     `db:"count"`
}

// RangeEnd turns an inclusive dateTo into the exclusive upper bound used by queries.
// A bare date (midnight UTC) covers that whole day.
func RangeEnd(to time.Time) time.Time {
	to = to.UTC()
	if to.Hour() == 0 && to.Minute() == 0 && to.Second() == 0 && to.Nanosecond() == 0 {
		return to.AddDate(0, 0, 1)
	}
	// PostgreSQL timestamps carry microseconds.
	return to.Add(time.Microsecond)
}

// AnalyticsFilter scopes analytics queries.
type AnalyticsFilter struct {
	Section  Section
	DateFrom *time.Time
	DateTo   *time.Time
}

// SectionAttendance summarises attendance for one section.
type SectionAttendance struct {
	Section Section `db:"section" json:"section"`
	Present int     `db:"present" json:"present"`
	Absent  int     `db:"absent" json:"absent"`
	Late    int     `db:"late" json:"late"`
	Rate    float64 `db:"-" json:"rate"`
}

// MonthlyPayments totals payment amounts for one calendar month (YYYY-MM).
type MonthlyPayments struct {
	Month  string  `db:"month" json:"month"`
	Amount float64 `db:"amount" json:"amount"`
	Count  int     `db:"count" json:"count"`
}

// SubjectAverage is the mean exam score of a subject.
type SubjectAverage struct {
	Subject string  `db:"subject" json:"subject"`
	Average float64 `db:"average" json:"average"`
	Count   int     `db:"count" json:"count"`
}

// Analytics is the aggregate payload served by /analytics.
type Analytics struct {
	Attendance        []SectionAttendance `json:"attendance"`
	PaymentsByMonth   []MonthlyPayments   `json:"paymentsByMonth"`
	SubjectAverages   []SubjectAverage    `json:"subjectAverages"`
	GradeDistribution map[Grade]int       `json:"gradeDistribution"`
	GeneratedAt       time.Time           `json:"generatedAt"`
}

// SystemMetrics exposes instrumentation counters captured by the metrics service.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	DBQueryCount             uint64    `json:"dbQueryCount"`
	AverageDBQueryDurationMs float64   `json:"averageDbQueryDurationMs"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
