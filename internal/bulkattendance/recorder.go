// Package bulkattendance records attendance for many students in one sitting.
//
// A Recorder holds the marks in memory until Submit hands them to a Strategy.
// Marks survive a submission only when every record failed, so the user can retry.
package bulkattendance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/dto"
	"github.com/noah-isme/school-dashboard-api/internal/models"
)

var (
	// ErrNothingToSubmit is returned by Submit when no student carries a status.
	ErrNothingToSubmit = errors.New("please mark attendance for at least one student")
	// ErrSubmitInProgress rejects a second Submit while one is running.
	ErrSubmitInProgress = errors.New("attendance submission already in progress")
	// ErrInvalidStatus rejects statuses other than present, absent and late.
	ErrInvalidStatus = errors.New("invalid attendance status")
)

// Mark is the pending choice for one student. A mark without status is not submitted.
type Mark struct {
	Status models.AttendanceStatus
	Note   string
}

// MarkedStudent pairs a mark with its student, in marking order.
type MarkedStudent struct {
	StudentID string
	Mark
}

// Failure is one record the API did not accept.
type Failure struct {
	StudentID string
	Err       error
}

// Outcome is what a Strategy reports for one submission.
type Outcome struct {
	Succeeded []string
	Failures  []Failure
}

// Strategy persists entries. Each entry must appear exactly once in the Outcome.
type Strategy interface {
	Submit(ctx context.Context, entries []dto.AttendanceEntry) Outcome
}

// Result summarises one Submit call.
type Result struct {
	Submitted int
	Succeeded int
	Failures  []Failure
	// Cleared is true when the marks were reset after at least one success.
	Cleared bool
}

// Summary is the single notification shown after a submission.
func (r Result) Summary() string {
	msg := fmt.Sprintf("Attendance recorded for %d %s", r.Succeeded, plural(r.Succeeded, "student", "students"))
	if len(r.Failures) > 0 {
		msg += fmt.Sprintf("; %d failed", len(r.Failures))
	}
	return msg
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Option customises a Recorder.
type Option func(*Recorder)

// WithClock injects the clock used to date submitted entries.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// WithOnComplete registers a callback fired after a submission with at least one success.
func WithOnComplete(fn func(Result)) Option {
	return func(r *Recorder) { r.onComplete = fn }
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Recorder is the in-memory marking session. It is safe for concurrent use.
type Recorder struct {
	strategy   Strategy
	now        func() time.Time
	onComplete func(Result)
	logger     *zap.Logger

	mu         sync.Mutex
	marks      map[string]Mark
	order      []string
	submitting bool
}

// NewRecorder builds an empty session submitting through strategy.
func NewRecorder(strategy Strategy, opts ...Option) *Recorder {
	r := &Recorder{
		strategy: strategy,
		now:      time.Now,
		logger:   zap.NewNop(),
		marks:    make(map[string]Mark),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetStatus marks a student present, absent or late.
func (r *Recorder) SetStatus(studentID string, status models.AttendanceStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	r.update(studentID, func(m *Mark) { m.Status = status })
	return nil
}

// SetNote attaches a free-text note. A note alone does not mark the student.
func (r *Recorder) SetNote(studentID, note string) {
	r.update(studentID, func(m *Mark) { m.Note = note })
}

func (r *Recorder) update(studentID string, apply func(*Mark)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mark, ok := r.marks[studentID]
	if !ok {
		r.order = append(r.order, studentID)
	}
	apply(&mark)
	r.marks[studentID] = mark
}

// Unmark forgets a student's mark and note.
func (r *Recorder) Unmark(studentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.marks[studentID]; !ok {
		return
	}
	delete(r.marks, studentID)
	for i, id := range r.order {
		if id == studentID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Clear resets the session.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLocked()
}

func (r *Recorder) clearLocked() {
	r.marks = make(map[string]Mark)
	r.order = nil
}

// forgetLocked drops the marks taken in snapshot. Marks set or changed while the
// submission ran are kept for the next Submit.
func (r *Recorder) forgetLocked(snapshot map[string]Mark) {
	order := r.order[:0]
	for _, id := range r.order {
		if mark, ok := snapshot[id]; ok && mark == r.marks[id] {
			delete(r.marks, id)
			continue
		}
		order = append(order, id)
	}
	r.order = order
}

// Marks lists every mark, including note-only ones, in marking order.
func (r *Recorder) Marks() []MarkedStudent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]MarkedStudent, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, MarkedStudent{StudentID: id, Mark: r.marks[id]})
	}
	return out
}

// Pending counts the students that Submit would send.
func (r *Recorder) Pending() int {
	return len(r.Entries())
}

// Entries builds the create payloads for every student with a status,
// dated with the current clock reading.
func (r *Recorder) Entries() []dto.AttendanceEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entriesLocked(r.now())
}

func (r *Recorder) entriesLocked(at time.Time) []dto.AttendanceEntry {
	entries := make([]dto.AttendanceEntry, 0, len(r.order))
	for _, id := range r.order {
		mark := r.marks[id]
		if mark.Status == "" {
			continue
		}
		entries = append(entries, dto.AttendanceEntry{
			StudentID: id,
			Date:      at,
			Status:    mark.Status,
			Note:      mark.Note,
		})
	}
	return entries
}

// Submit sends every marked student through the strategy. With nothing marked it
// returns ErrNothingToSubmit without touching the network.
func (r *Recorder) Submit(ctx context.Context) (*Result, error) {
	r.mu.Lock()
	if r.submitting {
		r.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	entries := r.entriesLocked(r.now())
	if len(entries) == 0 {
		r.mu.Unlock()
		return nil, ErrNothingToSubmit
	}
	snapshot := make(map[string]Mark, len(r.marks))
	for id, mark := range r.marks {
		snapshot[id] = mark
	}
	r.submitting = true
	r.mu.Unlock()

	outcome := r.strategy.Submit(ctx, entries)
	result := Result{
		Submitted: len(entries),
		Succeeded: len(outcome.Succeeded),
		Failures:  outcome.Failures,
	}

	r.mu.Lock()
	r.submitting = false
	if result.Succeeded > 0 {
		r.forgetLocked(snapshot)
		result.Cleared = true
	}
	r.mu.Unlock()

	r.logger.Info("attendance submitted",
		zap.Int("submitted", result.Submitted),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", len(result.Failures)),
	)
	for _, failure := range result.Failures {
		r.logger.Warn("attendance record failed", zap.String("student_id", failure.StudentID), zap.Error(failure.Err))
	}

	if result.Cleared && r.onComplete != nil {
		r.onComplete(result)
	}
	return &result, nil
}
