package store

import (
	"context"
	"database/sql"
	"log"
)

// Statements are idempotent so the service can run them on every start.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id UUID PRIMARY KEY,
		student_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS teachers (
		id UUID PRIMARY KEY,
		teacher_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		pin TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id UUID PRIMARY KEY,
		student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		date DATE NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('present', 'late', 'absent')),
		login_time TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (student_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS class_settings (
		id INT PRIMARY KEY CHECK (id = 1),
		class_start_time TEXT NOT NULL DEFAULT '08:00',
		late_threshold_minutes INT NOT NULL DEFAULT 30 CHECK (late_threshold_minutes >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS attendance_date_idx ON attendance (date)`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	log.Println("running database migrations...")
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	log.Println("database migrations completed")
	return nil
}
