package attendance

import (
	"context"
	"strings"
	"time"

	"classattend/internal/roster"
)

// Outcome is the user-facing result of a sign-in attempt.
type Outcome string

const (
	OutcomeRecorded        Outcome = "recorded"
	OutcomeAlreadySignedIn Outcome = "already_signed_in"
	OutcomeStudentNotFound Outcome = "student_not_found"
)

// SignInResult is what a sign-in attempt produced. Status is only set when
// the outcome is OutcomeRecorded.
type SignInResult struct {
	Outcome Outcome
	Status  Status
	Student roster.Student
}

// Schedule is the classification input loaded from class settings.
type Schedule struct {
	Start                time.Time
	LateThresholdMinutes int
}

// Ledger is the attendance persistence surface the service needs.
type Ledger interface {
	InsertDaily(ctx context.Context, rec Record) (bool, error)
	StatusCounts(ctx context.Context, start, end *time.Time) (map[string]Counts, error)
	Log(ctx context.Context, f LogFilter) ([]Entry, error)
	Export(ctx context.Context, start, end *time.Time) ([]ExportRow, error)
}

// Roster resolves and lists students.
type Roster interface {
	GetByStudentID(ctx context.Context, studentID string) (*roster.Student, error)
	List(ctx context.Context) ([]roster.Student, error)
}

// ScheduleSource supplies the active class schedule.
type ScheduleSource interface {
	Schedule(ctx context.Context) (Schedule, error)
}

// ReportRow is one student's aggregated attendance.
type ReportRow struct {
	Student roster.Student `json:"student"`
	Present int            `json:"present"`
	Late    int            `json:"late"`
	Absent  int            `json:"absent"`
	Total   int            `json:"total"`
	Pct     *float64       `json:"pct"`
}

// Service coordinates sign-ins and reporting over the ledger.
type Service struct {
	ledger   Ledger
	roster   Roster
	schedule ScheduleSource
	now      func() time.Time
}

// NewService creates a service.
func NewService(ledger Ledger, r Roster, schedule ScheduleSource) *Service {
	return &Service{ledger: ledger, roster: r, schedule: schedule, now: time.Now}
}

// SignIn records today's attendance for the given external student
// identifier. It is idempotent per (student, day): a repeat attempt reports
// OutcomeAlreadySignedIn and leaves the existing row untouched. Concurrent
// attempts are serialized by the ledger's unique key, so exactly one of them
// records and the rest observe the duplicate outcome.
func (s *Service) SignIn(ctx context.Context, studentID string) (SignInResult, error) {
	studentID = strings.TrimSpace(studentID)
	student, err := s.roster.GetByStudentID(ctx, studentID)
	if err != nil {
		return SignInResult{}, err
	}
	if student == nil {
		return SignInResult{Outcome: OutcomeStudentNotFound}, nil
	}

	now := s.now()
	sched, err := s.schedule.Schedule(ctx)
	if err != nil {
		return SignInResult{}, err
	}
	status := Classify(now, sched.Start, sched.LateThresholdMinutes)

	created, err := s.ledger.InsertDaily(ctx, Record{
		StudentRef: student.ID,
		Date:       now,
		Status:     status,
		LoginTime:  now.Format("15:04:05"),
	})
	if err != nil {
		return SignInResult{}, err
	}
	if !created {
		return SignInResult{Outcome: OutcomeAlreadySignedIn, Student: *student}, nil
	}
	return SignInResult{Outcome: OutcomeRecorded, Status: status, Student: *student}, nil
}

// Report aggregates the ledger per student over the inclusive date range.
// Every roster member appears, ordered by name; students without rows in
// range report zero counts and a nil percentage.
func (s *Service) Report(ctx context.Context, start, end *time.Time) ([]ReportRow, error) {
	students, err := s.roster.List(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.ledger.StatusCounts(ctx, start, end)
	if err != nil {
		return nil, err
	}

	rows := make([]ReportRow, 0, len(students))
	for _, st := range students {
		c := counts[st.ID]
		row := ReportRow{
			Student: st,
			Present: c.Present,
			Late:    c.Late,
			Absent:  c.Absent,
			Total:   c.Total(),
		}
		if row.Total > 0 {
			pct := float64(row.Present) / float64(row.Total) * 100
			row.Pct = &pct
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Log returns the detailed attendance log with optional filters.
func (s *Service) Log(ctx context.Context, f LogFilter) ([]Entry, error) {
	return s.ledger.Log(ctx, f)
}

// Export returns attendance rows for CSV export within the date range.
func (s *Service) Export(ctx context.Context, start, end *time.Time) ([]ExportRow, error) {
	return s.ledger.Export(ctx, start, end)
}
