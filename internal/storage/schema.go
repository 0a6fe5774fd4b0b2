package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// initSchema creates all necessary tables and indexes.
// Note: WAL mode is configured in db.go.
func initSchema(db *sql.DB) error {
	if err := createEmployeesTable(db); err != nil {
		return err
	}
	if err := createHREmailsTable(db); err != nil {
		return err
	}
	return createHealthPlansTable(db)
}

func createEmployeesTable(db *sql.DB) error {
	// seq preserves CSV load order; it is the tie-break for name lookups.
	query := `
	CREATE TABLE IF NOT EXISTS employees (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		salary REAL NOT NULL DEFAULT 0,
		bonus_percent REAL NOT NULL DEFAULT 0,
		days_off_remaining INTEGER NOT NULL DEFAULT 0,
		team TEXT NOT NULL DEFAULT '',
		town TEXT NOT NULL DEFAULT '',
		remote_status TEXT NOT NULL DEFAULT '',
		senior_management INTEGER NOT NULL DEFAULT 0,
		start_date TEXT NOT NULL DEFAULT '',
		last_login TEXT NOT NULL DEFAULT '',
		version INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_employees_first_name ON employees(first_name COLLATE NOCASE);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create employees table: %w", err)
	}
	return nil
}

func createHREmailsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS hr_emails (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id TEXT NOT NULL,
		recipient TEXT NOT NULL,
		subject TEXT NOT NULL,
		body TEXT NOT NULL,
		priority TEXT NOT NULL DEFAULT 'Normal',
		status TEXT NOT NULL DEFAULT 'Pending',
		received_at INTEGER NOT NULL,
		response_due INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_hr_emails_status ON hr_emails(status);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create hr_emails table: %w", err)
	}
	return nil
}

func createHealthPlansTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS health_plans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		plan_type TEXT NOT NULL,
		monthly_cost_employee TEXT NOT NULL,
		monthly_cost_family TEXT NOT NULL,
		deductible_individual TEXT NOT NULL
	);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create health_plans table: %w", err)
	}
	return nil
}
