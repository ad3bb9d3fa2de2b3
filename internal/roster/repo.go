package roster

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Student is a registered roster member.
type Student struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ImportRow is one record from a roster import.
type ImportRow struct {
	Name      string
	StudentID string
	Email     string
}

// Repository persists roster data in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new student. Returns ErrDuplicateStudentID when the
// external identifier is already taken.
func (r *Repository) Create(ctx context.Context, s Student) (Student, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO students (id, student_id, name, email)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (student_id) DO NOTHING
		RETURNING created_at
	`, s.ID, s.StudentID, s.Name, s.Email)
	if err := row.Scan(&s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, ErrDuplicateStudentID
		}
		return Student{}, err
	}
	return s, nil
}

// GetByStudentID returns a student by external identifier, or nil when absent.
func (r *Repository) GetByStudentID(ctx context.Context, studentID string) (*Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, student_id, name, email, created_at
		FROM students WHERE student_id = $1
	`, studentID)
	var s Student
	if err := row.Scan(&s.ID, &s.StudentID, &s.Name, &s.Email, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// List returns all students ordered by display name.
func (r *Repository) List(ctx context.Context) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, student_id, name, email, created_at
		FROM students
		ORDER BY name, student_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.ID, &s.StudentID, &s.Name, &s.Email, &s.CreatedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// Delete removes a student by external identifier. Attendance rows cascade.
func (r *Repository) Delete(ctx context.Context, studentID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE student_id = $1`, studentID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Import applies rows in one transaction: existing identifiers are updated,
// new ones inserted. Either everything commits or nothing does.
func (r *Repository) Import(ctx context.Context, rows []ImportRow) (created, updated int, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, row := range rows {
		res, uerr := tx.ExecContext(ctx, `
			UPDATE students SET name = $2, email = $3 WHERE student_id = $1
		`, row.StudentID, row.Name, row.Email)
		if uerr != nil {
			err = uerr
			return 0, 0, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			updated++
			continue
		}
		if _, ierr := tx.ExecContext(ctx, `
			INSERT INTO students (id, student_id, name, email)
			VALUES ($1, $2, $3, $4)
		`, uuid.NewString(), row.StudentID, row.Name, row.Email); ierr != nil {
			err = ierr
			return 0, 0, err
		}
		created++
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, err
	}
	return created, updated, nil
}
