package teacher

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Teacher is a staff member allowed into the management surface.
type Teacher struct {
	ID        string    `json:"id"`
	TeacherID string    `json:"teacher_id"`
	Name      string    `json:"name"`
	PIN       string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository persists teachers in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new teacher. Returns ErrDuplicateTeacherID when the
// identifier is already taken.
func (r *Repository) Create(ctx context.Context, t Teacher) (Teacher, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO teachers (id, teacher_id, name, pin)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (teacher_id) DO NOTHING
		RETURNING created_at
	`, t.ID, t.TeacherID, t.Name, t.PIN)
	if err := row.Scan(&t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Teacher{}, ErrDuplicateTeacherID
		}
		return Teacher{}, err
	}
	return t, nil
}

// GetByTeacherID returns a teacher by external identifier, or nil when absent.
func (r *Repository) GetByTeacherID(ctx context.Context, teacherID string) (*Teacher, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, teacher_id, name, pin, created_at
		FROM teachers WHERE teacher_id = $1
	`, teacherID)
	var t Teacher
	if err := row.Scan(&t.ID, &t.TeacherID, &t.Name, &t.PIN, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// List returns all teachers ordered by name.
func (r *Repository) List(ctx context.Context) ([]Teacher, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, teacher_id, name, pin, created_at
		FROM teachers
		ORDER BY name, teacher_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teachers []Teacher
	for rows.Next() {
		var t Teacher
		if err := rows.Scan(&t.ID, &t.TeacherID, &t.Name, &t.PIN, &t.CreatedAt); err != nil {
			return nil, err
		}
		teachers = append(teachers, t)
	}
	return teachers, rows.Err()
}

// Delete removes a teacher by external identifier.
func (r *Repository) Delete(ctx context.Context, teacherID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM teachers WHERE teacher_id = $1`, teacherID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
