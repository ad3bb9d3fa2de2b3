package roster

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound means no student matches the given identifier.
	ErrNotFound = errors.New("student not found")
	// ErrDuplicateStudentID means the external identifier is already taken.
	ErrDuplicateStudentID = errors.New("student id already exists")
	// ErrMissingFields means a required field was empty.
	ErrMissingFields = errors.New("student id and name are required")
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, s Student) (Student, error)
	GetByStudentID(ctx context.Context, studentID string) (*Student, error)
	List(ctx context.Context) ([]Student, error)
	Delete(ctx context.Context, studentID string) (bool, error)
	Import(ctx context.Context, rows []ImportRow) (created, updated int, err error)
}

// ImportSummary reports what a bulk import did.
type ImportSummary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// Service manages the student roster.
type Service struct {
	store Store
}

// NewService creates a roster service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Add registers a single student.
func (s *Service) Add(ctx context.Context, studentID, name, email string) (Student, error) {
	studentID = strings.TrimSpace(studentID)
	name = strings.TrimSpace(name)
	if studentID == "" || name == "" {
		return Student{}, ErrMissingFields
	}
	return s.store.Create(ctx, Student{
		StudentID: studentID,
		Name:      name,
		Email:     strings.TrimSpace(email),
	})
}

// Get resolves an external identifier to a student.
func (s *Service) Get(ctx context.Context, studentID string) (Student, error) {
	st, err := s.store.GetByStudentID(ctx, strings.TrimSpace(studentID))
	if err != nil {
		return Student{}, err
	}
	if st == nil {
		return Student{}, ErrNotFound
	}
	return *st, nil
}

// List returns the roster ordered by name.
func (s *Service) List(ctx context.Context) ([]Student, error) {
	return s.store.List(ctx)
}

// Delete removes a student and, by cascade, their attendance rows.
func (s *Service) Delete(ctx context.Context, studentID string) error {
	ok, err := s.store.Delete(ctx, strings.TrimSpace(studentID))
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Import applies a batch of roster rows as one transactional unit. Rows
// without an identifier are skipped. When the same identifier appears more
// than once in a batch the last row wins and the batch still counts it once.
func (s *Service) Import(ctx context.Context, rows []ImportRow) (ImportSummary, error) {
	deduped := dedupe(rows)
	if len(deduped) == 0 {
		return ImportSummary{}, nil
	}
	created, updated, err := s.store.Import(ctx, deduped)
	if err != nil {
		return ImportSummary{}, err
	}
	return ImportSummary{Created: created, Updated: updated}, nil
}

// dedupe trims fields, drops rows without an identifier, and collapses
// duplicate identifiers to the last occurrence while keeping first-seen
// order.
func dedupe(rows []ImportRow) []ImportRow {
	index := make(map[string]int)
	var out []ImportRow
	for _, row := range rows {
		row.StudentID = strings.TrimSpace(row.StudentID)
		row.Name = strings.TrimSpace(row.Name)
		row.Email = strings.TrimSpace(row.Email)
		if row.StudentID == "" {
			continue
		}
		if i, seen := index[row.StudentID]; seen {
			out[i] = row
			continue
		}
		index[row.StudentID] = len(out)
		out = append(out, row)
	}
	return out
}
