package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dempseyco/hr-assistant-go/internal/employee"
)

// LoadAll returns all employee records in load order.
// It implements employee.Store.
func (db *DB) LoadAll(ctx context.Context) ([]employee.Record, error) {
	query := `
		SELECT id, first_name, salary, bonus_percent, days_off_remaining,
		       team, town, remote_status, senior_management, start_date,
		       last_login, version
		FROM employees
		ORDER BY seq
	`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []employee.Record
	for rows.Next() {
		var rec employee.Record
		var senior int
		if err := rows.Scan(
			&rec.ID, &rec.FirstName, &rec.Salary, &rec.BonusPercent,
			&rec.DaysOffRemaining, &rec.Team, &rec.Town, &rec.RemoteStatus,
			&senior, &rec.StartDate, &rec.LastLogin, &rec.Version,
		); err != nil {
			return nil, fmt.Errorf("failed to scan employee row: %w", err)
		}
		rec.SeniorManagement = senior != 0
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}
	return records, nil
}

// Persist upserts a single employee record after a committed mutation.
// It implements employee.Store.
func (db *DB) Persist(ctx context.Context, rec employee.Record) error {
	query := `
		INSERT INTO employees (id, first_name, salary, bonus_percent,
			days_off_remaining, team, town, remote_status, senior_management,
			start_date, last_login, version, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			first_name = excluded.first_name,
			salary = excluded.salary,
			bonus_percent = excluded.bonus_percent,
			days_off_remaining = excluded.days_off_remaining,
			team = excluded.team,
			town = excluded.town,
			remote_status = excluded.remote_status,
			senior_management = excluded.senior_management,
			start_date = excluded.start_date,
			last_login = excluded.last_login,
			version = excluded.version,
			updated_at = excluded.updated_at
	`
	senior := 0
	if rec.SeniorManagement {
		senior = 1
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, query,
		rec.ID, rec.FirstName, rec.Salary, rec.BonusPercent,
		rec.DaysOffRemaining, rec.Team, rec.Town, rec.RemoteStatus,
		senior, rec.StartDate, rec.LastLogin, rec.Version, time.Now().Unix(),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to persist employee",
			"employee_id", rec.ID,
			"error", err)
		return fmt.Errorf("failed to persist employee %s: %w", rec.ID, err)
	}

	// Warn on slow queries (>100ms)
	if duration := time.Since(start); duration > 100*time.Millisecond {
		slog.WarnContext(ctx, "slow database operation",
			"operation", "Persist",
			"duration_ms", duration.Milliseconds(),
			"employee_id", rec.ID)
	}
	return nil
}

// CountEmployees returns the number of employee records.
func (db *DB) CountEmployees(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM employees").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return count, nil
}

// HREmail is one row of the HR mail outbox/inbox.
type HREmail struct {
	ID          int64
	EmployeeID  string
	Recipient   string
	Subject     string
	Body        string
	Priority    string
	Status      string
	ReceivedAt  time.Time
	ResponseDue time.Time
}

// SaveHREmail records a delivered escalation email.
func (db *DB) SaveHREmail(ctx context.Context, email *HREmail) error {
	query := `
		INSERT INTO hr_emails (employee_id, recipient, subject, body, priority, status, received_at, response_due)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := db.conn.ExecContext(ctx, query,
		email.EmployeeID, email.Recipient, email.Subject, email.Body,
		email.Priority, email.Status,
		email.ReceivedAt.Unix(), email.ResponseDue.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save HR email: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		email.ID = id
	}
	return nil
}

// ListHREmails returns outbox rows, newest first, optionally filtered by status.
func (db *DB) ListHREmails(ctx context.Context, status string) ([]HREmail, error) {
	query := `
		SELECT id, employee_id, recipient, subject, body, priority, status, received_at, response_due
		FROM hr_emails
	`
	args := []any{}
	if status != "" && status != "all" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY received_at DESC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list HR emails: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var emails []HREmail
	for rows.Next() {
		var e HREmail
		var received, due int64
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.Recipient, &e.Subject, &e.Body,
			&e.Priority, &e.Status, &received, &due); err != nil {
			return nil, fmt.Errorf("failed to scan HR email row: %w", err)
		}
		e.ReceivedAt = time.Unix(received, 0)
		e.ResponseDue = time.Unix(due, 0)
		emails = append(emails, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate HR emails: %w", err)
	}
	return emails, nil
}

// HealthPlan is one catalog entry shown for health-insurance questions.
type HealthPlan struct {
	Name                 string
	PlanType             string
	MonthlyCostEmployee  string
	MonthlyCostFamily    string
	DeductibleIndividual string
}

// SaveHealthPlan upserts a single health plan.
func (db *DB) SaveHealthPlan(ctx context.Context, plan *HealthPlan) error {
	query := `
		INSERT INTO health_plans (name, plan_type, monthly_cost_employee, monthly_cost_family, deductible_individual)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			plan_type = excluded.plan_type,
			monthly_cost_employee = excluded.monthly_cost_employee,
			monthly_cost_family = excluded.monthly_cost_family,
			deductible_individual = excluded.deductible_individual
	`
	if _, err := db.conn.ExecContext(ctx, query,
		plan.Name, plan.PlanType, plan.MonthlyCostEmployee,
		plan.MonthlyCostFamily, plan.DeductibleIndividual); err != nil {
		return fmt.Errorf("failed to save health plan: %w", err)
	}
	return nil
}

// ListHealthPlans returns the health plan catalog.
func (db *DB) ListHealthPlans(ctx context.Context) ([]HealthPlan, error) {
	query := `
		SELECT name, plan_type, monthly_cost_employee, monthly_cost_family, deductible_individual
		FROM health_plans
		ORDER BY id
	`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list health plans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var plans []HealthPlan
	for rows.Next() {
		var p HealthPlan
		if err := rows.Scan(&p.Name, &p.PlanType, &p.MonthlyCostEmployee,
			&p.MonthlyCostFamily, &p.DeductibleIndividual); err != nil {
			return nil, fmt.Errorf("failed to scan health plan row: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate health plans: %w", err)
	}
	return plans, nil
}
