package bulkattendance

import (
	"context"
	"errors"
	"net/http"

	"github.com/noah-isme/school-dashboard-api/internal/dto"
	"github.com/noah-isme/school-dashboard-api/internal/models"
)

// Doer is the slice of the API client the strategies need.
type Doer interface {
	Do(ctx context.Context, method, path string, body, out interface{}) error
}

// SequentialStrategy issues one POST /attendance per entry, one after another.
// A failed entry does not stop the rest. Once ctx is done the remaining entries
// are reported as failed without being sent.
type SequentialStrategy struct {
	API Doer
}

// Submit implements Strategy.
func (s SequentialStrategy) Submit(ctx context.Context, entries []dto.AttendanceEntry) Outcome {
	var out Outcome
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			out.Failures = append(out.Failures, Failure{StudentID: entry.StudentID, Err: err})
			continue
		}
		var created models.Attendance
		if err := s.API.Do(ctx, http.MethodPost, "/attendance", entry, &created); err != nil {
			out.Failures = append(out.Failures, Failure{StudentID: entry.StudentID, Err: err})
			continue
		}
		out.Succeeded = append(out.Succeeded, entry.StudentID)
	}
	return out
}

// BatchStrategy posts every entry to /attendance/batch in a single request and
// maps the per-item outcome back to students.
type BatchStrategy struct {
	API Doer
}

var errNoItemResult = errors.New("no result reported for entry")

// Submit implements Strategy.
func (s BatchStrategy) Submit(ctx context.Context, entries []dto.AttendanceEntry) Outcome {
	var res models.AttendanceBatchResult
	if err := s.API.Do(ctx, http.MethodPost, "/attendance/batch", dto.AttendanceBatchRequest{Entries: entries}, &res); err != nil {
		return failAll(entries, err)
	}

	byIndex := make(map[int]models.AttendanceBatchItemResult, len(res.Items))
	for _, item := range res.Items {
		byIndex[item.Index] = item
	}

	var out Outcome
	for i, entry := range entries {
		item, ok := byIndex[i]
		switch {
		case !ok:
			out.Failures = append(out.Failures, Failure{StudentID: entry.StudentID, Err: errNoItemResult})
		case item.Error != "":
			out.Failures = append(out.Failures, Failure{StudentID: entry.StudentID, Err: errors.New(item.Error)})
		default:
			out.Succeeded = append(out.Succeeded, entry.StudentID)
		}
	}
	return out
}

func failAll(entries []dto.AttendanceEntry, err error) Outcome {
	out := Outcome{Failures: make([]Failure, 0, len(entries))}
	for _, entry := range entries {
		out.Failures = append(out.Failures, Failure{StudentID: entry.StudentID, Err: err})
	}
	return out
}
