// Package intent maps free-text employee questions to a closed set of
// typed intents. Classification is deterministic pattern matching over an
// ordered grammar; it never fails, falling back to Unknown.
package intent

// Intent classifies what an utterance is asking for or requesting to change.
type Intent string

// The closed intent set. Order of evaluation is defined by the grammar
// priorities in grammar.go, not by this list.
const (
	Salary          Intent = "salary"
	DaysOff         Intent = "days-off"
	Bonus           Intent = "bonus"
	Location        Intent = "location"
	Team            Intent = "team"
	Seniority       Intent = "seniority"
	StartDate       Intent = "start-date"
	W2Request       Intent = "w2-request"
	UpdateField     Intent = "update-field"
	ScheduleCall    Intent = "schedule-call"
	EmailHR         Intent = "email-hr"
	HealthInsurance Intent = "health-insurance"
	RemoteChoice    Intent = "remote-choice"
	Hybrid          Intent = "hybrid"
	Unknown         Intent = "unknown"
)

// Slot keys captured during classification.
const (
	SlotField  = "field"  // canonical field name for update-field
	SlotValue  = "value"  // raw captured value for update-field
	SlotChoice = "choice" // "remote" or "on-site" for remote-choice
)

// Slots holds typed values extracted from an utterance by the matching
// pattern group. Empty for purely informational intents.
type Slots map[string]string

// Result is the outcome of classifying one utterance.
type Result struct {
	Intent Intent
	Slots  Slots
}

// String implements fmt.Stringer.
func (i Intent) String() string {
	return string(i)
}

// Informational reports whether the intent reads a record field and renders
// a templated answer, as opposed to mutating data or drafting an action.
func (i Intent) Informational() bool {
	switch i {
	case Salary, DaysOff, Bonus, Location, Team, Seniority, StartDate:
		return true
	}
	return false
}
