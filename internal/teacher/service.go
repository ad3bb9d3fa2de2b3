package teacher

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
)

var (
	// ErrNotFound means no teacher matches the given identifier.
	ErrNotFound = errors.New("teacher not found")
	// ErrInvalidPIN means a PIN is on record and the supplied one did not match.
	ErrInvalidPIN = errors.New("invalid pin")
	// ErrDuplicateTeacherID means the identifier is already taken.
	ErrDuplicateTeacherID = errors.New("teacher id already exists")
	// ErrMissingFields means a required field was empty.
	ErrMissingFields = errors.New("teacher id and name are required")
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, t Teacher) (Teacher, error)
	GetByTeacherID(ctx context.Context, teacherID string) (*Teacher, error)
	List(ctx context.Context) ([]Teacher, error)
	Delete(ctx context.Context, teacherID string) (bool, error)
}

// Service manages teachers and verifies their credentials.
type Service struct {
	store Store
}

// NewService creates a teacher service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Add registers a teacher. The PIN is optional; when empty the teacher
// authenticates with the identifier alone.
func (s *Service) Add(ctx context.Context, teacherID, name, pin string) (Teacher, error) {
	teacherID = strings.TrimSpace(teacherID)
	name = strings.TrimSpace(name)
	if teacherID == "" {
		return Teacher{}, ErrMissingFields
	}
	if name == "" {
		name = teacherID
	}
	return s.store.Create(ctx, Teacher{
		TeacherID: teacherID,
		Name:      name,
		PIN:       strings.TrimSpace(pin),
	})
}

// List returns all teachers ordered by name.
func (s *Service) List(ctx context.Context) ([]Teacher, error) {
	return s.store.List(ctx)
}

// Delete removes a teacher.
func (s *Service) Delete(ctx context.Context, teacherID string) error {
	ok, err := s.store.Delete(ctx, strings.TrimSpace(teacherID))
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Authenticate verifies a teacher identifier and PIN. When no PIN is on
// record any supplied PIN is accepted. PINs are stored and compared as
// plaintext, matching the system this replaces; that is a known weakness and
// the comparison is at least constant-time.
func (s *Service) Authenticate(ctx context.Context, teacherID, pin string) (Teacher, error) {
	t, err := s.store.GetByTeacherID(ctx, strings.TrimSpace(teacherID))
	if err != nil {
		return Teacher{}, err
	}
	if t == nil {
		return Teacher{}, ErrNotFound
	}
	if t.PIN != "" {
		if subtle.ConstantTimeCompare([]byte(t.PIN), []byte(strings.TrimSpace(pin))) != 1 {
			return Teacher{}, ErrInvalidPIN
		}
	}
	return *t, nil
}
