package settings

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"classattend/internal/attendance"
)

var (
	// ErrInvalidStartTime means the submitted start time did not parse.
	ErrInvalidStartTime = errors.New("invalid class start time")
	// ErrInvalidThreshold means the late threshold was not a non-negative integer.
	ErrInvalidThreshold = errors.New("late threshold must be a non-negative integer")
)

// Defaults applied when the singleton row is first created.
const (
	DefaultStartTime        = "08:00"
	DefaultThresholdMinutes = 30
)

// ClassSettings is the single active configuration row.
type ClassSettings struct {
	ClassStartTime       string    `json:"class_start_time"`
	LateThresholdMinutes int       `json:"late_threshold_minutes"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// StartClock returns the configured start time as a time-of-day value.
func (c ClassSettings) StartClock() (time.Time, error) {
	return attendance.ParseClock(c.ClassStartTime)
}

// Repository persists the settings singleton in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the settings row, creating it with defaults on first access.
func (r *Repository) Get(ctx context.Context) (ClassSettings, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO class_settings (id, class_start_time, late_threshold_minutes)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO NOTHING
	`, DefaultStartTime, DefaultThresholdMinutes)
	if err != nil {
		return ClassSettings{}, err
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT class_start_time, late_threshold_minutes, created_at, updated_at
		FROM class_settings WHERE id = 1
	`)
	var c ClassSettings
	if err := row.Scan(&c.ClassStartTime, &c.LateThresholdMinutes, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return ClassSettings{}, err
	}
	return c, nil
}

// Update mutates the singleton row in place.
func (r *Repository) Update(ctx context.Context, startTime string, thresholdMinutes int) (ClassSettings, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE class_settings
		SET class_start_time = $1, late_threshold_minutes = $2, updated_at = NOW()
		WHERE id = 1
		RETURNING class_start_time, late_threshold_minutes, created_at, updated_at
	`, startTime, thresholdMinutes)
	var c ClassSettings
	if err := row.Scan(&c.ClassStartTime, &c.LateThresholdMinutes, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return ClassSettings{}, err
	}
	return c, nil
}

// Store is the persistence surface the service needs.
type Store interface {
	Get(ctx context.Context) (ClassSettings, error)
	Update(ctx context.Context, startTime string, thresholdMinutes int) (ClassSettings, error)
}

// Service validates and applies settings changes.
type Service struct {
	store Store
}

// NewService creates a settings service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Get returns the active settings, lazily creating the default row.
func (s *Service) Get(ctx context.Context) (ClassSettings, error) {
	return s.store.Get(ctx)
}

// Schedule returns the classification inputs derived from the active
// settings. It satisfies the sign-in flow's schedule source.
func (s *Service) Schedule(ctx context.Context) (attendance.Schedule, error) {
	c, err := s.store.Get(ctx)
	if err != nil {
		return attendance.Schedule{}, err
	}
	start, err := c.StartClock()
	if err != nil {
		return attendance.Schedule{}, err
	}
	return attendance.Schedule{Start: start, LateThresholdMinutes: c.LateThresholdMinutes}, nil
}

// Update validates the submitted fields and mutates the singleton. Empty
// fields keep their stored value; invalid input is rejected without touching
// the row. The start time is normalized to HH:MM.
func (s *Service) Update(ctx context.Context, startTime, thresholdMinutes string) (ClassSettings, error) {
	current, err := s.store.Get(ctx)
	if err != nil {
		return ClassSettings{}, err
	}

	newStart := current.ClassStartTime
	if startTime != "" {
		t, err := attendance.ParseClock(startTime)
		if err != nil {
			return ClassSettings{}, ErrInvalidStartTime
		}
		newStart = t.Format("15:04")
	}

	newThreshold := current.LateThresholdMinutes
	if thresholdMinutes != "" {
		n, err := strconv.Atoi(thresholdMinutes)
		if err != nil || n < 0 {
			return ClassSettings{}, ErrInvalidThreshold
		}
		newThreshold = n
	}

	return s.store.Update(ctx, newStart, newThreshold)
}
