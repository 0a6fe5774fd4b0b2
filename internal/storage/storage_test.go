package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dempseyco/hr-assistant-go/internal/employee"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPersistAndLoadAll(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	records := []employee.Record{
		{
			ID: "EID001", FirstName: "Douglas", Salary: 97308.00,
			BonusPercent: 10, DaysOffRemaining: 13, Team: "Engineering",
			Town: "Boston", RemoteStatus: employee.RemoteStatusOnSite,
			StartDate: "2019-03-11", Version: 1,
		},
		{
			ID: "EID002", FirstName: "Thomas", Salary: 61933.00,
			BonusPercent: 5, DaysOffRemaining: 21, Team: "Sales",
			Town: "Portland", RemoteStatus: employee.RemoteStatusRemote,
			SeniorManagement: true, StartDate: "2021-07-01", Version: 1,
		},
	}
	for _, rec := range records {
		if err := db.Persist(ctx, rec); err != nil {
			t.Fatalf("Persist(%s) error = %v", rec.ID, err)
		}
	}

	loaded, err := db.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("LoadAll() returned %d records, want 2", len(loaded))
	}
	// Insertion order must survive round-trips.
	if loaded[0].ID != "EID001" || loaded[1].ID != "EID002" {
		t.Errorf("LoadAll() order = [%s, %s], want [EID001, EID002]", loaded[0].ID, loaded[1].ID)
	}
	if loaded[0].Salary != 97308.00 {
		t.Errorf("loaded salary = %v, want 97308.00", loaded[0].Salary)
	}
	if !loaded[1].SeniorManagement {
		t.Error("loaded EID002 senior management = false, want true")
	}
	if loaded[1].RemoteStatus != employee.RemoteStatusRemote {
		t.Errorf("loaded remote status = %q, want %q", loaded[1].RemoteStatus, employee.RemoteStatusRemote)
	}
}

func TestPersistUpsert(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	rec := employee.Record{ID: "EID001", FirstName: "Douglas", Town: "Boston", Version: 1}
	if err := db.Persist(ctx, rec); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	rec.Town = "Austin"
	rec.Version = 2
	if err := db.Persist(ctx, rec); err != nil {
		t.Fatalf("Persist() update error = %v", err)
	}

	loaded, err := db.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("LoadAll() returned %d records after upsert, want 1", len(loaded))
	}
	if loaded[0].Town != "Austin" || loaded[0].Version != 2 {
		t.Errorf("loaded = {town: %q, version: %d}, want {town: Austin, version: 2}", loaded[0].Town, loaded[0].Version)
	}
}

func TestHREmails(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	email := &HREmail{
		EmployeeID:  "EID001",
		Recipient:   "hr@company.com",
		Subject:     "Question from Douglas (ID: EID001)",
		Body:        "Dear HR Team,\n\nEmployee: Douglas (ID: EID001)",
		Priority:    "Normal",
		Status:      "Pending",
		ReceivedAt:  now,
		ResponseDue: now.Add(48 * time.Hour),
	}
	if err := db.SaveHREmail(ctx, email); err != nil {
		t.Fatalf("SaveHREmail() error = %v", err)
	}
	if email.ID == 0 {
		t.Error("SaveHREmail() did not set ID")
	}

	emails, err := db.ListHREmails(ctx, "Pending")
	if err != nil {
		t.Fatalf("ListHREmails() error = %v", err)
	}
	if len(emails) != 1 {
		t.Fatalf("ListHREmails(Pending) returned %d rows, want 1", len(emails))
	}
	if emails[0].Subject != email.Subject {
		t.Errorf("subject = %q, want %q", emails[0].Subject, email.Subject)
	}
	if !emails[0].ReceivedAt.Equal(now) {
		t.Errorf("received_at = %v, want %v", emails[0].ReceivedAt, now)
	}

	emails, err = db.ListHREmails(ctx, "Resolved")
	if err != nil {
		t.Fatalf("ListHREmails() error = %v", err)
	}
	if len(emails) != 0 {
		t.Errorf("ListHREmails(Resolved) returned %d rows, want 0", len(emails))
	}
}

func TestHealthPlans(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	plan := &HealthPlan{
		Name:                 "Gold PPO",
		PlanType:             "PPO",
		MonthlyCostEmployee:  "$120",
		MonthlyCostFamily:    "$340",
		DeductibleIndividual: "$500",
	}
	if err := db.SaveHealthPlan(ctx, plan); err != nil {
		t.Fatalf("SaveHealthPlan() error = %v", err)
	}

	// Upsert by name keeps a single row.
	plan.MonthlyCostEmployee = "$130"
	if err := db.SaveHealthPlan(ctx, plan); err != nil {
		t.Fatalf("SaveHealthPlan() upsert error = %v", err)
	}

	plans, err := db.ListHealthPlans(ctx)
	if err != nil {
		t.Fatalf("ListHealthPlans() error = %v", err)
	}
	if len(plans) != 1 {
		t.Fatalf("ListHealthPlans() returned %d rows, want 1", len(plans))
	}
	if plans[0].MonthlyCostEmployee != "$130" {
		t.Errorf("monthly cost = %q, want $130", plans[0].MonthlyCostEmployee)
	}
}

func TestSeedEmployeesFromCSV(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	csvPath := filepath.Join(t.TempDir(), "employees.csv")
	content := "Employee ID,First Name,Salary,Bonus %,Days Off Remaining,Team,Town,Senior Management,Start Date\n" +
		"EID001,Douglas,\"97,308\",10,13,Engineering,Boston,False,2019-03-11\n" +
		"EID002,Thomas,61933,5,21,Sales,Portland,True,2021-07-01\n"
	if err := os.WriteFile(csvPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	imported, err := db.SeedEmployeesFromCSV(ctx, csvPath)
	if err != nil {
		t.Fatalf("SeedEmployeesFromCSV() error = %v", err)
	}
	if imported != 2 {
		t.Errorf("imported = %d, want 2", imported)
	}

	loaded, err := db.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("LoadAll() returned %d records, want 2", len(loaded))
	}
	if loaded[0].Salary != 97308 {
		t.Errorf("seeded salary = %v, want 97308", loaded[0].Salary)
	}
	if !loaded[1].SeniorManagement {
		t.Error("seeded EID002 senior management = false, want true")
	}

	// Re-seeding a populated table is a no-op.
	imported, err = db.SeedEmployeesFromCSV(ctx, csvPath)
	if err != nil {
		t.Fatalf("SeedEmployeesFromCSV() second run error = %v", err)
	}
	if imported != 0 {
		t.Errorf("second seed imported = %d, want 0", imported)
	}
}

func TestSeedEmployeesMissingFile(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	if _, err := db.SeedEmployeesFromCSV(context.Background(), "/nonexistent/employees.csv"); err == nil {
		t.Error("SeedEmployeesFromCSV() with missing file succeeded, want error")
	}
}
