package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dempseyco/hr-assistant-go/internal/employee"
)

// SeedEmployeesFromCSV imports employee records from a CSV export. Seeding
// only runs when the employees table is empty, so restarts never clobber
// mutations that already landed in the database.
func (db *DB) SeedEmployeesFromCSV(ctx context.Context, csvPath string) (int, error) {
	count, err := db.CountEmployees(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open employee CSV: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read employee CSV header: %w", err)
	}
	cols := indexColumns(header)

	rows, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to read employee CSV rows: %w", err)
	}

	imported := 0
	for i, row := range rows {
		rec, err := employeeFromRow(cols, row)
		if err != nil {
			return imported, fmt.Errorf("failed to parse employee CSV row %d: %w", i+2, err)
		}
		if err := db.Persist(ctx, rec); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

// SeedHealthPlansFromCSV imports the health plan catalog. Like employee
// seeding it is a no-op when rows already exist.
func (db *DB) SeedHealthPlansFromCSV(ctx context.Context, csvPath string) (int, error) {
	existing, err := db.ListHealthPlans(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open health plans CSV: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read health plans CSV header: %w", err)
	}
	cols := indexColumns(header)

	rows, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to read health plans CSV rows: %w", err)
	}

	imported := 0
	for _, row := range rows {
		plan := &HealthPlan{
			Name:                 columnValue(cols, row, "plan name", "name"),
			PlanType:             columnValue(cols, row, "plan type", "type"),
			MonthlyCostEmployee:  columnValue(cols, row, "monthly cost (employee)", "monthly cost employee"),
			MonthlyCostFamily:    columnValue(cols, row, "monthly cost (family)", "monthly cost family"),
			DeductibleIndividual: columnValue(cols, row, "deductible (individual)", "deductible individual", "deductible"),
		}
		if plan.Name == "" {
			continue
		}
		if err := db.SaveHealthPlan(ctx, plan); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

// indexColumns maps lowercased header names to their positions. HR exports
// vary in header spelling, so lookups go through aliases in columnValue.
func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
		cols[key] = i
	}
	return cols
}

func columnValue(cols map[string]int, row []string, names ...string) string {
	for _, name := range names {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
	}
	return ""
}

func employeeFromRow(cols map[string]int, row []string) (employee.Record, error) {
	var rec employee.Record

	rec.ID = columnValue(cols, row, "employee id", "employeeid", "id")
	rec.FirstName = columnValue(cols, row, "first name", "firstname", "name")
	if rec.ID == "" || rec.FirstName == "" {
		return rec, fmt.Errorf("missing employee id or first name")
	}

	if raw := columnValue(cols, row, "salary"); raw != "" {
		salary, err := parseNumber(raw)
		if err != nil {
			return rec, fmt.Errorf("invalid salary %q: %w", raw, err)
		}
		rec.Salary = salary
	}
	if raw := columnValue(cols, row, "bonus %", "bonus percent", "bonus"); raw != "" {
		bonus, err := parseNumber(raw)
		if err != nil {
			return rec, fmt.Errorf("invalid bonus %q: %w", raw, err)
		}
		rec.BonusPercent = bonus
	}
	if raw := columnValue(cols, row, "days off remaining", "days off"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return rec, fmt.Errorf("invalid days off %q: %w", raw, err)
		}
		rec.DaysOffRemaining = days
	}

	rec.Team = columnValue(cols, row, "team")
	rec.Town = columnValue(cols, row, "town", "location", "city")
	rec.StartDate = columnValue(cols, row, "start date", "startdate")
	rec.LastLogin = columnValue(cols, row, "last login", "lastlogin")

	rec.RemoteStatus = employee.RemoteStatusOnSite
	if raw := strings.ToLower(columnValue(cols, row, "remote status", "remote")); raw != "" {
		if strings.HasPrefix(raw, "remote") || raw == "yes" || raw == "true" {
			rec.RemoteStatus = employee.RemoteStatusRemote
		}
	}

	senior := strings.ToLower(columnValue(cols, row, "senior management", "senior"))
	rec.SeniorManagement = senior == "true" || senior == "yes" || senior == "1"

	return rec, nil
}

// parseNumber accepts "95000", "95,000" and "$95,000.00".
func parseNumber(raw string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", "%", "").Replace(raw)
	return strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
}
