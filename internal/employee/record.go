// Package employee provides the employee record model, the resolver that
// maps identifiers and first names to records, and the mutator that applies
// validated field updates.
package employee

import (
	"strconv"
	"strings"

	domerrors "github.com/dempseyco/hr-assistant-go/internal/errors"
	"github.com/dempseyco/hr-assistant-go/internal/stringutil"
)

// Remote status enum values. RemoteStatus is constrained to this closed set;
// an empty value means the employee works on-site at their recorded town.
const (
	RemoteStatusRemote = "remote"
	RemoteStatusOnSite = "on-site"
)

// Record is a single employee record. Records are created at load time from
// the record store and mutated only through Directory.Update.
type Record struct {
	ID               string
	FirstName        string
	Salary           float64
	BonusPercent     float64
	DaysOffRemaining int
	Team             string
	Town             string
	RemoteStatus     string
	SeniorManagement bool
	StartDate        string
	LastLogin        string

	// Version increments on every committed mutation and is used for
	// concurrent-write detection.
	Version int64
}

// Field identifies a mutable record field.
type Field string

// Mutable fields. Everything else is rejected with ErrFieldNotEditable.
const (
	FieldTown         Field = "town"
	FieldRemoteStatus Field = "remote_status"
	FieldTeam         Field = "team"
	FieldSalary       Field = "salary"
	FieldBonusPercent Field = "bonus_percent"
	FieldDaysOff      Field = "days_off_remaining"
)

// Value bounds for mutations.
const (
	maxSalary     = 5_000_000
	maxDaysOff    = 365
	maxTextLength = 80
)

// fieldAliases maps the names users and callers use to canonical fields.
var fieldAliases = map[string]Field{
	"town":               FieldTown,
	"city":               FieldTown,
	"address":            FieldTown,
	"location":           FieldTown,
	"remote_status":      FieldRemoteStatus,
	"remote-status":      FieldRemoteStatus,
	"remote":             FieldRemoteStatus,
	"team":               FieldTeam,
	"salary":             FieldSalary,
	"bonus":              FieldBonusPercent,
	"bonus_percent":      FieldBonusPercent,
	"bonus-percent":      FieldBonusPercent,
	"days_off":           FieldDaysOff,
	"days off":           FieldDaysOff,
	"days_off_remaining": FieldDaysOff,
	"pto":                FieldDaysOff,
}

// CanonicalField resolves a user-supplied field name to a mutable field.
// Returns ErrFieldNotEditable for anything outside the whitelist.
func CanonicalField(name string) (Field, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if f, ok := fieldAliases[key]; ok {
		return f, nil
	}
	return "", domerrors.ErrFieldNotEditable
}

// Change is a single validated field update.
type Change struct {
	Field Field
	value any
}

// NewChange validates and coerces a raw value for the given field.
// The returned Change carries the typed value; validation failures return a
// *ValidationError naming the field and reason.
func NewChange(field Field, raw string) (Change, error) {
	raw = strings.TrimSpace(raw)

	switch field {
	case FieldTown, FieldTeam:
		if raw == "" {
			return Change{}, domerrors.NewValidationError(string(field), "value cannot be empty")
		}
		if len([]rune(raw)) > maxTextLength {
			return Change{}, domerrors.NewValidationError(string(field), "value too long")
		}
		return Change{Field: field, value: stringutil.TitleCase(raw)}, nil

	case FieldRemoteStatus:
		switch strings.ToLower(raw) {
		case "remote", "remotely":
			return Change{Field: field, value: RemoteStatusRemote}, nil
		case "on-site", "onsite", "on site", "office", "in office", "in-office":
			return Change{Field: field, value: RemoteStatusOnSite}, nil
		default:
			return Change{}, domerrors.NewValidationError(string(field), "must be 'remote' or 'on-site'")
		}

	case FieldSalary:
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return Change{}, domerrors.NewValidationError(string(field), "must be a number")
		}
		if v <= 0 || v > maxSalary {
			return Change{}, domerrors.NewValidationError(string(field), "out of plausible range")
		}
		return Change{Field: field, value: v}, nil

	case FieldBonusPercent:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Change{}, domerrors.NewValidationError(string(field), "must be a number")
		}
		if v < 0 || v > 100 {
			return Change{}, domerrors.NewValidationError(string(field), "must be between 0 and 100")
		}
		return Change{Field: field, value: v}, nil

	case FieldDaysOff:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return Change{}, domerrors.NewValidationError(string(field), "must be a whole number")
		}
		if v < 0 || v > maxDaysOff {
			return Change{}, domerrors.NewValidationError(string(field), "must be between 0 and 365")
		}
		return Change{Field: field, value: v}, nil

	default:
		return Change{}, domerrors.ErrFieldNotEditable
	}
}

// Value returns the coerced value carried by the change.
func (c Change) Value() any {
	return c.value
}

// apply writes the change into the record. The value is already validated.
func (c Change) apply(r *Record) {
	switch c.Field {
	case FieldTown:
		r.Town = c.value.(string)
	case FieldRemoteStatus:
		r.RemoteStatus = c.value.(string)
	case FieldTeam:
		r.Team = c.value.(string)
	case FieldSalary:
		r.Salary = c.value.(float64)
	case FieldBonusPercent:
		r.BonusPercent = c.value.(float64)
	case FieldDaysOff:
		r.DaysOffRemaining = c.value.(int)
	}
}
