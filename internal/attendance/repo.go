package attendance

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Record is one daily attendance row as stored.
type Record struct {
	ID         string
	StudentRef string
	Date       time.Time
	Status     Status
	LoginTime  string
}

// Counts holds per-status totals for one student.
type Counts struct {
	Present int
	Late    int
	Absent  int
}

// Total is the number of attendance rows behind the counts.
func (c Counts) Total() int {
	return c.Present + c.Late + c.Absent
}

// Entry is one detailed-log row joined with its student.
type Entry struct {
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	Date        string    `json:"date"`
	Status      Status    `json:"status"`
	LoginTime   string    `json:"login_time,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// LogFilter narrows the detailed log.
type LogFilter struct {
	Date        string
	StudentName string
}

// ExportRow is one line of the CSV export.
type ExportRow struct {
	StudentID string
	Name      string
	Date      string
	Status    Status
	Timestamp time.Time
}

// Repository persists attendance data in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertDaily records attendance for (student, date) atomically. The unique
// key on (student_id, date) is the only concurrency control: when a row
// already exists the insert is a no-op and InsertDaily reports false without
// surfacing a conflict error.
func (r *Repository) InsertDaily(ctx context.Context, rec Record) (bool, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	loginTime := sql.NullString{String: rec.LoginTime, Valid: rec.LoginTime != ""}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance (id, student_id, date, status, login_time)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (student_id, date) DO NOTHING
	`, rec.ID, rec.StudentRef, rec.Date.Format("2006-01-02"), string(rec.Status), loginTime)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// StatusCounts aggregates rows by student and status within the inclusive
// date range. Either bound may be nil for an open end.
func (r *Repository) StatusCounts(ctx context.Context, start, end *time.Time) (map[string]Counts, error) {
	query := `SELECT student_id, status, COUNT(*) FROM attendance`
	args := []any{}
	clauses := []string{}
	if start != nil {
		clauses = append(clauses, "date >= $"+itoa(len(args)+1))
		args = append(args, start.Format("2006-01-02"))
	}
	if end != nil {
		clauses = append(clauses, "date <= $"+itoa(len(args)+1))
		args = append(args, end.Format("2006-01-02"))
	}
	if len(clauses) > 0 {
		query += " WHERE " + joinClauses(clauses, " AND ")
	}
	query += " GROUP BY student_id, status"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]Counts)
	for rows.Next() {
		var studentRef string
		var status string
		var n int
		if err := rows.Scan(&studentRef, &status, &n); err != nil {
			return nil, err
		}
		c := counts[studentRef]
		switch Status(status) {
		case StatusPresent:
			c.Present = n
		case StatusLate:
			c.Late = n
		case StatusAbsent:
			c.Absent = n
		}
		counts[studentRef] = c
	}
	return counts, rows.Err()
}

// Log returns attendance rows newest date first, then student name. The date
// filter matches exactly; the student filter is a case-insensitive substring
// match on the display name.
func (r *Repository) Log(ctx context.Context, f LogFilter) ([]Entry, error) {
	query := `
		SELECT s.student_id, s.name, a.date::text, a.status, COALESCE(a.login_time, ''), a.created_at
		FROM attendance a
		JOIN students s ON s.id = a.student_id`
	args := []any{}
	clauses := []string{}
	if f.Date != "" {
		clauses = append(clauses, "a.date = $"+itoa(len(args)+1))
		args = append(args, f.Date)
	}
	if f.StudentName != "" {
		clauses = append(clauses, "s.name ILIKE '%' || $"+itoa(len(args)+1)+" || '%'")
		args = append(args, f.StudentName)
	}
	if len(clauses) > 0 {
		query += " WHERE " + joinClauses(clauses, " AND ")
	}
	query += " ORDER BY a.date DESC, s.name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.StudentID, &e.StudentName, &e.Date, &e.Status, &e.LoginTime, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Export returns rows for the CSV export ordered by date ascending.
func (r *Repository) Export(ctx context.Context, start, end *time.Time) ([]ExportRow, error) {
	query := `
		SELECT s.student_id, s.name, a.date::text, a.status, a.created_at
		FROM attendance a
		JOIN students s ON s.id = a.student_id`
	args := []any{}
	clauses := []string{}
	if start != nil {
		clauses = append(clauses, "a.date >= $"+itoa(len(args)+1))
		args = append(args, start.Format("2006-01-02"))
	}
	if end != nil {
		clauses = append(clauses, "a.date <= $"+itoa(len(args)+1))
		args = append(args, end.Format("2006-01-02"))
	}
	if len(clauses) > 0 {
		query += " WHERE " + joinClauses(clauses, " AND ")
	}
	query += " ORDER BY a.date, s.name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExportRow
	for rows.Next() {
		var row ExportRow
		if err := rows.Scan(&row.StudentID, &row.Name, &row.Date, &row.Status, &row.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func itoa(i int) string { return fmt.Sprintf("%d", i) }

func joinClauses(parts []string, sep string) string {
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for i := 1; i < len(parts); i++ {
		out += sep + parts[i]
	}
	return out
}
