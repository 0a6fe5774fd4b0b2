package dialog

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/dempseyco/hr-assistant-go/internal/docs"
	"github.com/dempseyco/hr-assistant-go/internal/employee"
	domerrors "github.com/dempseyco/hr-assistant-go/internal/errors"
	"github.com/dempseyco/hr-assistant-go/internal/intent"
	"github.com/dempseyco/hr-assistant-go/internal/logger"
	"github.com/dempseyco/hr-assistant-go/internal/mail"
	"github.com/dempseyco/hr-assistant-go/internal/session"
)

type fakeStore struct {
	records    []employee.Record
	persisted  []employee.Record
	persistErr error
}

func (s *fakeStore) LoadAll(_ context.Context) ([]employee.Record, error) {
	out := make([]employee.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *fakeStore) Persist(_ context.Context, rec employee.Record) error {
	if s.persistErr != nil {
		return s.persistErr
	}
	s.persisted = append(s.persisted, rec)
	return nil
}

type fakeMailer struct {
	sent    []mail.Message
	sendErr error
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakePlans struct {
	plans []HealthPlan
}

func (p *fakePlans) ListHealthPlans(_ context.Context) ([]HealthPlan, error) {
	return p.plans, nil
}

type testRig struct {
	engine    *Engine
	store     *fakeStore
	mailer    *fakeMailer
	plans     *fakePlans
	sessions  *session.Manager
	generator *docs.Generator
	sessionID string
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()

	store := &fakeStore{
		records: []employee.Record{
			{
				ID: "EID001", FirstName: "Douglas", Salary: 95000.0,
				BonusPercent: 13, DaysOffRemaining: 13, Team: "Engineering",
				Town: "Boston", RemoteStatus: employee.RemoteStatusOnSite,
				StartDate: "2019-03-11", Version: 1,
			},
			{
				ID: "EID002", FirstName: "Thomas", Salary: 61933.0,
				BonusPercent: 5, DaysOffRemaining: 21, Team: "Sales",
				Town: "Portland", RemoteStatus: employee.RemoteStatusRemote,
				SeniorManagement: true, StartDate: "2021-07-01", Version: 1,
			},
			{ID: "EID003", FirstName: "Maria", Town: "Chicago", Version: 1},
			{ID: "EID004", FirstName: "Maria", Town: "Denver", Version: 1},
		},
	}
	log := logger.New("error")
	dir, err := employee.NewDirectory(context.Background(), store, log)
	if err != nil {
		t.Fatalf("NewDirectory() error = %v", err)
	}

	mailer := &fakeMailer{}
	plans := &fakePlans{}
	sessions := session.NewManager()
	generator := docs.NewGenerator()

	engine := NewEngine(Config{
		Directory: dir,
		Sessions:  sessions,
		Mailer:    mailer,
		Documents: generator,
		Plans:     plans,
		Logger:    log,
		TaxYear:   2025,
	})

	return &testRig{
		engine:    engine,
		store:     store,
		mailer:    mailer,
		plans:     plans,
		sessions:  sessions,
		generator: generator,
		sessionID: sessions.Create().ID,
	}
}

func (r *testRig) ask(t *testing.T, question string) *Response {
	t.Helper()
	resp, err := r.engine.Chat(context.Background(), Request{
		SessionID:  r.sessionID,
		Question:   question,
		EmployeeID: "EID001",
	})
	if err != nil {
		t.Fatalf("Chat(%q) error = %v", question, err)
	}
	return resp
}

func TestChatSalary(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	resp := rig.ask(t, "What's my salary?")
	if resp.Intent != intent.Salary {
		t.Errorf("intent = %s, want %s", resp.Intent, intent.Salary)
	}
	if !strings.Contains(resp.Answer, "$95,000.00") {
		t.Errorf("answer = %q, want it to contain $95,000.00", resp.Answer)
	}
	if len(resp.DataUsed) != 1 || resp.DataUsed[0] != "salary" {
		t.Errorf("data used = %v, want [salary]", resp.DataUsed)
	}
}

func TestChatAnswersDeterministic(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	questions := []string{
		"What's my salary?",
		"How many days off do I have left?",
		"What's my bonus percentage?",
		"What team am I on?",
	}
	for _, q := range questions {
		first := rig.ask(t, q)
		second := rig.ask(t, q)
		if first.Answer != second.Answer {
			t.Errorf("answer for %q not deterministic: %q vs %q", q, first.Answer, second.Answer)
		}
	}
}

func TestChatInformationalAnswers(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	tests := []struct {
		question string
		want     string
	}{
		{"How many days off do I have left?", "Douglas has 13 days off remaining this year."},
		{"What's my bonus percentage?", "Douglas's bonus percentage is 13%."},
		{"Where do I work?", "Douglas works on-site in Boston."},
		{"Where do I live?", "Douglas lives in Boston."},
		{"What team am I on?", "Douglas is on the Engineering team."},
		{"Am I part of senior management?", "Douglas is not part of senior management."},
		{"What's my start date?", "Douglas started on 2019-03-11."},
	}
	for _, tt := range tests {
		resp := rig.ask(t, tt.question)
		if resp.Answer != tt.want {
			t.Errorf("answer for %q = %q, want %q", tt.question, resp.Answer, tt.want)
		}
	}
}

func TestChatRemoteEmployeeLocation(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	resp, err := rig.engine.Chat(context.Background(), Request{
		SessionID:  rig.sessionID,
		Question:   "Where do I work?",
		EmployeeID: "EID002",
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Answer != "Thomas works remotely from Portland." {
		t.Errorf("answer = %q", resp.Answer)
	}
}

// A location change without a remote/on-site mention parks a pending
// LocationUpdate and asks for the missing choice.
func TestChatLocationUpdateFlow(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	resp := rig.ask(t, "I'm moving to Texas")
	if resp.Intent != intent.UpdateField {
		t.Fatalf("intent = %s, want %s", resp.Intent, intent.UpdateField)
	}
	lowered := strings.ToLower(resp.Answer)
	if !strings.Contains(lowered, "remote") || !strings.Contains(lowered, "on-site") {
		t.Errorf("answer = %q, want it to ask remote vs on-site", resp.Answer)
	}
	if resp.Action == nil || resp.Action.Type != ActionLocationPrompt {
		t.Fatalf("action = %+v, want %s", resp.Action, ActionLocationPrompt)
	}
	if resp.Action.Data["new_town"] != "Texas" {
		t.Errorf("new town = %q, want Texas", resp.Action.Data["new_town"])
	}

	pending := rig.sessions.Pending(rig.sessionID)
	if _, ok := pending.(session.LocationUpdate); !ok {
		t.Fatalf("pending = %T, want LocationUpdate", pending)
	}

	// Follow-up commits town and remote-status together.
	resp = rig.ask(t, "remote")
	if !strings.Contains(resp.Answer, "Texas") || !strings.Contains(resp.Answer, "remote") {
		t.Errorf("commit answer = %q", resp.Answer)
	}
	if got := rig.sessions.Pending(rig.sessionID); got != nil {
		t.Errorf("pending after commit = %v, want nil", got)
	}

	// Both fields are visible together afterwards.
	resp = rig.ask(t, "Where do I work?")
	if resp.Answer != "Douglas works remotely from Texas." {
		t.Errorf("post-commit answer = %q", resp.Answer)
	}
	if len(rig.store.persisted) != 1 {
		t.Fatalf("persisted %d records, want 1", len(rig.store.persisted))
	}
	if rig.store.persisted[0].Town != "Texas" || rig.store.persisted[0].RemoteStatus != employee.RemoteStatusRemote {
		t.Errorf("persisted record = %+v", rig.store.persisted[0])
	}
}

func TestChatLocationUpdateFailureRevertsToIdle(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	rig.ask(t, "I'm moving to Texas")
	rig.store.persistErr = fmt.Errorf("disk full")

	resp := rig.ask(t, "remote")
	if !strings.Contains(resp.Answer, "couldn't update") {
		t.Errorf("answer = %q, want a surfaced failure", resp.Answer)
	}
	if got := rig.sessions.Pending(rig.sessionID); got != nil {
		t.Errorf("pending after failure = %v, want nil", got)
	}

	// The record is untouched.
	rig.store.persistErr = nil
	resp = rig.ask(t, "Where do I work?")
	if resp.Answer != "Douglas works on-site in Boston." {
		t.Errorf("answer after failed update = %q", resp.Answer)
	}
}

func TestChatLocationUpdateCancel(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	rig.ask(t, "I'm moving to Texas")
	resp := rig.ask(t, "cancel")
	if !strings.Contains(resp.Answer, "unchanged") {
		t.Errorf("answer = %q", resp.Answer)
	}
	if got := rig.sessions.Pending(rig.sessionID); got != nil {
		t.Errorf("pending after cancel = %v, want nil", got)
	}
}

// Policy phrasing drafts an email whose subject carries the employee ID;
// explicit send hands it to the mail service.
func TestChatEscalationDraftAndSend(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	resp := rig.ask(t, "Is there a way I can get an extra day off?")
	if resp.Intent != intent.EmailHR {
		t.Errorf("intent = %s, want %s", resp.Intent, intent.EmailHR)
	}
	if !resp.Escalated {
		t.Error("response not marked escalated")
	}

	pending := rig.sessions.Pending(rig.sessionID)
	draft, ok := pending.(session.EmailDraft)
	if !ok {
		t.Fatalf("pending = %T, want EmailDraft", pending)
	}
	if !strings.Contains(draft.Subject, "EID001") {
		t.Errorf("draft subject = %q, want it to contain EID001", draft.Subject)
	}
	if !strings.Contains(draft.Body, "Dear HR Team,") {
		t.Errorf("draft body = %q, want the HR letter format", draft.Body)
	}

	// Delivery failure keeps the draft for retry.
	rig.mailer.sendErr = domerrors.ErrDeliveryFailed
	resp = rig.ask(t, "send")
	if !strings.Contains(resp.Answer, "could not be sent") {
		t.Errorf("failure answer = %q", resp.Answer)
	}
	if _, ok := rig.sessions.Pending(rig.sessionID).(session.EmailDraft); !ok {
		t.Error("draft was dropped after a delivery failure")
	}

	// Retry succeeds.
	rig.mailer.sendErr = nil
	resp = rig.ask(t, "send")
	if !strings.Contains(resp.Answer, "sent to HR") {
		t.Errorf("success answer = %q", resp.Answer)
	}
	if got := rig.sessions.Pending(rig.sessionID); got != nil {
		t.Errorf("pending after send = %v, want nil", got)
	}
	if len(rig.mailer.sent) != 1 {
		t.Fatalf("mailer received %d messages, want 1", len(rig.mailer.sent))
	}
	if rig.mailer.sent[0].EmployeeID != "EID001" {
		t.Errorf("sent employee = %q, want EID001", rig.mailer.sent[0].EmployeeID)
	}
}

func TestChatEscalationCancel(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	rig.ask(t, "Is there a way I can get an extra day off?")
	resp := rig.ask(t, "cancel")
	if !strings.Contains(resp.Answer, "discarded") {
		t.Errorf("answer = %q", resp.Answer)
	}
	if got := rig.sessions.Pending(rig.sessionID); got != nil {
		t.Errorf("pending after cancel = %v, want nil", got)
	}
	if len(rig.mailer.sent) != 0 {
		t.Errorf("mailer received %d messages after cancel, want 0", len(rig.mailer.sent))
	}
}

func TestChatUnknownEscalates(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	resp := rig.ask(t, "quarterly synergy cadence")
	if resp.Intent != intent.Unknown {
		t.Errorf("intent = %s, want %s", resp.Intent, intent.Unknown)
	}
	if !resp.Escalated {
		t.Error("unknown intent did not escalate")
	}
	if !strings.Contains(resp.Answer, "send") {
		t.Errorf("answer = %q, want a concrete next step", resp.Answer)
	}
}

// An answered question with permission phrasing still pairs with an HR
// email offer.
func TestChatEscalationOnAnsweredIntent(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	resp := rig.ask(t, "Can I take more days off?")
	if resp.Intent != intent.DaysOff {
		t.Errorf("intent = %s, want %s", resp.Intent, intent.DaysOff)
	}
	if !strings.Contains(resp.Answer, "13 days off") {
		t.Errorf("answer = %q, want the direct answer first", resp.Answer)
	}
	if !resp.Escalated {
		t.Error("policy phrasing did not escalate")
	}
	if _, ok := rig.sessions.Pending(rig.sessionID).(session.EmailDraft); !ok {
		t.Error("no email draft pending")
	}
}

func TestChatHybridOutranksLocationUpdate(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	resp := rig.ask(t, "I'm moving to Texas, can I work remote?")
	if resp.Intent != intent.Hybrid {
		t.Fatalf("intent = %s, want %s", resp.Intent, intent.Hybrid)
	}
	pending := rig.sessions.Pending(rig.sessionID)
	if _, ok := pending.(session.EmailDraft); !ok {
		t.Errorf("pending = %T, want EmailDraft (not a location update)", pending)
	}
}

// Creating a second pending action replaces the first entirely.
func TestChatPendingReplacement(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	rig.ask(t, "I'm moving to Texas")
	rig.ask(t, "Is there a way I can get an extra day off?")

	pending := rig.sessions.Pending(rig.sessionID)
	if _, ok := pending.(session.EmailDraft); !ok {
		t.Fatalf("pending = %T, want EmailDraft after replacement", pending)
	}

	rig.ask(t, "I'm moving to Miami")
	pending = rig.sessions.Pending(rig.sessionID)
	lu, ok := pending.(session.LocationUpdate)
	if !ok {
		t.Fatalf("pending = %T, want LocationUpdate after second replacement", pending)
	}
	if !strings.EqualFold(lu.NewTown, "miami") {
		t.Errorf("pending town = %q, want miami", lu.NewTown)
	}
}

func TestChatFieldUpdates(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	resp := rig.ask(t, "Update my team to Engineering")
	if !strings.Contains(resp.Answer, "Successfully updated team to Engineering") {
		t.Errorf("answer = %q", resp.Answer)
	}

	// Idempotence: updating to the current value succeeds with the same
	// final state.
	resp = rig.ask(t, "Update my team to Engineering")
	if !strings.Contains(resp.Answer, "Successfully updated") {
		t.Errorf("repeat answer = %q", resp.Answer)
	}
	followUp := rig.ask(t, "What team am I on?")
	if followUp.Answer != "Douglas is on the Engineering team." {
		t.Errorf("team after idempotent update = %q", followUp.Answer)
	}

	resp = rig.ask(t, "Change my salary to 120,000")
	if !strings.Contains(resp.Answer, "$120,000.00") {
		t.Errorf("salary update answer = %q", resp.Answer)
	}
	check := rig.ask(t, "What's my salary?")
	if !strings.Contains(check.Answer, "$120,000.00") {
		t.Errorf("salary after update = %q", check.Answer)
	}
}

func TestChatUpdateValidationRejection(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	resp := rig.ask(t, "Update my days off to 999")
	if !strings.Contains(resp.Answer, "between 0 and 365") {
		t.Errorf("answer = %q, want the specific rejection reason", resp.Answer)
	}

	// The record is untouched.
	check := rig.ask(t, "How many days off do I have left?")
	if !strings.Contains(check.Answer, "13 days off") {
		t.Errorf("days off after rejection = %q", check.Answer)
	}
}

func TestChatUpdateRoundTrip(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	rig.ask(t, "Change my address to Boston")
	rig.ask(t, "on-site")

	resp := rig.ask(t, "Where do I work?")
	if !strings.Contains(resp.Answer, "Boston") {
		t.Errorf("answer = %q, want it to contain Boston", resp.Answer)
	}
}

func TestChatW2Request(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	resp := rig.ask(t, "Can you send me my W2?")
	if resp.Intent != intent.W2Request {
		t.Fatalf("intent = %s, want %s", resp.Intent, intent.W2Request)
	}
	if resp.Action == nil || resp.Action.Type != ActionW2Document {
		t.Fatalf("action = %+v, want %s", resp.Action, ActionW2Document)
	}
	if resp.Action.Data["handle"] != "/files/w2/Douglas_W2_2025.pdf" {
		t.Errorf("handle = %q", resp.Action.Data["handle"])
	}
	if resp.Action.Data["year"] != "2025" {
		t.Errorf("year = %q, want 2025", resp.Action.Data["year"])
	}

	directives := rig.generator.Directives()
	if len(directives) != 1 || directives[0].EmployeeID != "EID001" {
		t.Errorf("directives = %+v", directives)
	}
}

func TestChatScheduleCall(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	resp := rig.ask(t, "Can we schedule a call with HR?")
	if resp.Intent != intent.ScheduleCall {
		t.Fatalf("intent = %s, want %s", resp.Intent, intent.ScheduleCall)
	}
	if resp.Action == nil || resp.Action.Type != ActionCalendar {
		t.Fatalf("action = %+v, want %s", resp.Action, ActionCalendar)
	}
	if resp.Action.Data["employee_id"] != "EID001" {
		t.Errorf("employee = %q, want EID001", resp.Action.Data["employee_id"])
	}
}

func TestChatHealthInsurance(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)
	rig.plans.plans = []HealthPlan{
		{Name: "Gold PPO", PlanType: "PPO", MonthlyCostEmployee: "$120", MonthlyCostFamily: "$340", DeductibleIndividual: "$500"},
		{Name: "Bronze HDHP", PlanType: "HDHP", MonthlyCostEmployee: "$40", MonthlyCostFamily: "$150", DeductibleIndividual: "$3,000"},
	}

	resp := rig.ask(t, "What health insurance plans do we offer?")
	if resp.Intent != intent.HealthInsurance {
		t.Fatalf("intent = %s, want %s", resp.Intent, intent.HealthInsurance)
	}
	if !strings.Contains(resp.Answer, "2 health insurance plans") {
		t.Errorf("answer = %q", resp.Answer)
	}
	if !strings.Contains(resp.Answer, "Gold PPO") || !strings.Contains(resp.Answer, "Bronze HDHP") {
		t.Errorf("answer = %q, want both plans listed", resp.Answer)
	}
	if resp.Escalated {
		t.Error("plan listing should not escalate")
	}
}

func TestChatHealthInsuranceWithoutPlansEscalates(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	resp := rig.ask(t, "What health insurance plans do we offer?")
	if !resp.Escalated {
		t.Error("missing plan data should escalate")
	}
	if _, ok := rig.sessions.Pending(rig.sessionID).(session.EmailDraft); !ok {
		t.Error("no email draft pending")
	}
}

func TestChatResolutionErrors(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)
	ctx := context.Background()

	// Unknown identifier: no pending action, no mutation.
	_, err := rig.engine.Chat(ctx, Request{
		SessionID:  rig.sessionID,
		Question:   "What's my salary?",
		EmployeeID: "ZZZ999",
	})
	if !domerrors.IsNotFound(err) {
		t.Errorf("Chat(ZZZ999) error = %v, want ErrEmployeeNotFound", err)
	}
	if got := rig.sessions.Pending(rig.sessionID); got != nil {
		t.Errorf("pending after failed resolve = %v, want nil", got)
	}
	if len(rig.store.persisted) != 0 {
		t.Errorf("persisted %d records after failed resolve, want 0", len(rig.store.persisted))
	}

	// No identifier at all is a distinct error.
	_, err = rig.engine.Chat(ctx, Request{SessionID: rig.sessionID, Question: "What's my salary?"})
	if !domerrors.IsMissingIdentifier(err) {
		t.Errorf("Chat(no identifier) error = %v, want ErrMissingIdentifier", err)
	}

	// Ambiguous first name surfaces, never silently picks one.
	_, err = rig.engine.Chat(ctx, Request{
		SessionID: rig.sessionID,
		Question:  "What's my salary?",
		FirstName: "Maria",
	})
	if !domerrors.IsAmbiguousName(err) {
		t.Errorf("Chat(Maria) error = %v, want ErrAmbiguousName", err)
	}
}

func TestChatResolveByFirstName(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	resp, err := rig.engine.Chat(context.Background(), Request{
		SessionID: rig.sessionID,
		Question:  "What's my salary?",
		FirstName: "douglas",
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if !strings.Contains(resp.Answer, "Douglas") {
		t.Errorf("answer = %q", resp.Answer)
	}
}

func TestChatEmptyQuestion(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	_, err := rig.engine.Chat(context.Background(), Request{
		SessionID:  rig.sessionID,
		Question:   "   ",
		EmployeeID: "EID001",
	})
	if _, ok := domerrors.AsValidation(err); !ok {
		t.Errorf("Chat(empty question) error = %v, want ValidationError", err)
	}
}

// An informational question asked while an action is pending answers
// normally and leaves the pending action alone.
func TestChatPendingSurvivesUnrelatedQuestion(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	rig.ask(t, "I'm moving to Texas")
	resp := rig.ask(t, "What's my bonus percentage?")
	if resp.Intent != intent.Bonus {
		t.Errorf("intent = %s, want %s", resp.Intent, intent.Bonus)
	}
	if _, ok := rig.sessions.Pending(rig.sessionID).(session.LocationUpdate); !ok {
		t.Error("pending location update was lost on an unrelated question")
	}

	// The follow-up still works afterwards.
	rig.ask(t, "remote")
	check := rig.ask(t, "Where do I work?")
	if !strings.Contains(check.Answer, "Texas") {
		t.Errorf("answer = %q, want Texas", check.Answer)
	}
}
