// Package dialog is the intent resolution and multi-turn dialogue core.
// It wires the classifier, employee directory, pending-action tracker and
// the mail/document collaborators into a single Chat operation.
package dialog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dempseyco/hr-assistant-go/internal/ctxutil"
	"github.com/dempseyco/hr-assistant-go/internal/docs"
	"github.com/dempseyco/hr-assistant-go/internal/employee"
	domerrors "github.com/dempseyco/hr-assistant-go/internal/errors"
	"github.com/dempseyco/hr-assistant-go/internal/intent"
	"github.com/dempseyco/hr-assistant-go/internal/logger"
	"github.com/dempseyco/hr-assistant-go/internal/mail"
	"github.com/dempseyco/hr-assistant-go/internal/metrics"
	"github.com/dempseyco/hr-assistant-go/internal/session"
	"github.com/dempseyco/hr-assistant-go/internal/stringutil"
)

// HealthPlan is one catalog entry rendered for health-insurance questions.
type HealthPlan struct {
	Name                 string
	PlanType             string
	MonthlyCostEmployee  string
	MonthlyCostFamily    string
	DeductibleIndividual string
}

// PlanSource supplies the health plan catalog.
type PlanSource interface {
	ListHealthPlans(ctx context.Context) ([]HealthPlan, error)
}

// Request is one inbound chat turn.
type Request struct {
	SessionID  string `json:"session_id"`
	Question   string `json:"question"`
	EmployeeID string `json:"employee_id"`
	FirstName  string `json:"first_name"`
}

// Action is an optional structured payload accompanying the answer text,
// consumed by the presentation layer (document downloads, calendar
// pickers, email draft previews).
type Action struct {
	Type string            `json:"type"`
	Data map[string]string `json:"data,omitempty"`
}

// Action types.
const (
	ActionW2Document     = "w2_document"
	ActionCalendar       = "calendar_request"
	ActionEmailDraft     = "email_draft"
	ActionLocationPrompt = "location_update_prompt"
)

// Response is the outcome of one chat turn.
type Response struct {
	SessionID string        `json:"session_id"`
	Answer    string        `json:"answer"`
	Intent    intent.Intent `json:"intent"`
	DataUsed  []string      `json:"data_used,omitempty"`
	Action    *Action       `json:"action,omitempty"`
	Escalated bool          `json:"escalated,omitempty"`
}

// Engine is the dialogue orchestrator. Safe for concurrent use.
type Engine struct {
	classifier *intent.Classifier
	directory  *employee.Directory
	sessions   *session.Manager
	mailer     mail.Service
	documents  docs.Service
	plans      PlanSource
	metrics    *metrics.Metrics
	logger     *logger.Logger

	taxYear          int
	maxQuestionChars int
}

// Config carries the engine's collaborators and tunables.
type Config struct {
	Directory        *employee.Directory
	Sessions         *session.Manager
	Mailer           mail.Service
	Documents        docs.Service
	Plans            PlanSource
	Metrics          *metrics.Metrics
	Logger           *logger.Logger
	TaxYear          int
	MaxQuestionChars int
}

// NewEngine creates the dialogue engine.
func NewEngine(cfg Config) *Engine {
	maxChars := cfg.MaxQuestionChars
	if maxChars <= 0 {
		maxChars = 2000
	}
	taxYear := cfg.TaxYear
	if taxYear <= 0 {
		taxYear = time.Now().Year() - 1
	}
	return &Engine{
		classifier:       intent.NewClassifier(),
		directory:        cfg.Directory,
		sessions:         cfg.Sessions,
		mailer:           cfg.Mailer,
		documents:        cfg.Documents,
		plans:            cfg.Plans,
		metrics:          cfg.Metrics,
		logger:           cfg.Logger,
		taxYear:          taxYear,
		maxQuestionChars: maxChars,
	}
}

// Chat handles one turn: resolve the employee, honor any pending
// follow-up, classify, and produce an answer or mutation. Resolution
// errors return before any session state is touched.
func (e *Engine) Chat(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	question := stringutil.NormalizeWhitespace(req.Question)
	if question == "" {
		return nil, domerrors.NewValidationError("question", "cannot be empty")
	}
	question = stringutil.Truncate(question, e.maxQuestionChars)

	identifier := strings.TrimSpace(req.EmployeeID)
	if identifier == "" {
		identifier = strings.TrimSpace(req.FirstName)
	}
	rec, err := e.directory.Resolve(identifier)
	if err != nil {
		e.record(intent.Unknown, "resolve_error", start)
		return nil, err
	}

	sess := e.sessions.GetOrCreate(req.SessionID)
	e.sessions.SetEmployee(sess.ID, rec.ID)
	// Carry the IDs in the context too so context-aware logging in the
	// storage and mail layers stays correlated with this turn.
	ctx = ctxutil.WithSessionID(ctx, sess.ID)
	ctx = ctxutil.WithEmployeeID(ctx, rec.ID)
	log := e.log().WithSessionID(sess.ID).WithField("employee_id", rec.ID)

	// A pending multi-turn action gets first claim on the utterance.
	if resp, handled := e.resumePending(ctx, sess.ID, question, rec, log); handled {
		e.record(resp.Intent, "pending_resumed", start)
		resp.SessionID = sess.ID
		return resp, nil
	}

	result := e.classifier.Classify(question)
	if e.metrics != nil {
		e.metrics.RecordIntentMatch(string(result.Intent))
	}
	log.Debugf("Classified intent: %s", result.Intent)

	resp := e.dispatch(ctx, sess.ID, question, result, rec, log)
	resp.SessionID = sess.ID
	e.record(resp.Intent, "answered", start)
	return resp, nil
}

// dispatch routes a classified utterance to the answer generator, the
// mutator, or an escalation flow.
func (e *Engine) dispatch(ctx context.Context, sessionID, question string, result intent.Result, rec employee.Record, log *logger.Logger) *Response {
	if result.Intent.Informational() {
		text, dataUsed := answerFor(result.Intent, question, rec)
		resp := &Response{Answer: text, Intent: result.Intent, DataUsed: dataUsed}
		e.maybeEscalate(sessionID, question, rec, resp)
		return resp
	}

	switch result.Intent {
	case intent.RemoteChoice:
		// A remote/on-site phrase with nothing pending is just a
		// location question.
		text, dataUsed := answerFor(intent.Location, question, rec)
		return &Response{Answer: text, Intent: intent.Location, DataUsed: dataUsed}

	case intent.UpdateField:
		return e.handleUpdate(ctx, sessionID, question, result.Slots, rec, log)

	case intent.W2Request:
		return e.handleW2(ctx, rec, log)

	case intent.ScheduleCall:
		resp := &Response{
			Answer: fmt.Sprintf("Sure, %s. Opening HR's calendar so you can pick a time that works for you.", rec.FirstName),
			Intent: intent.ScheduleCall,
			Action: &Action{
				Type: ActionCalendar,
				Data: map[string]string{"employee_id": rec.ID, "name": rec.FirstName},
			},
		}
		e.maybeEscalate(sessionID, question, rec, resp)
		return resp

	case intent.HealthInsurance:
		return e.handleHealthInsurance(ctx, sessionID, question, rec)

	case intent.Hybrid:
		resp := &Response{
			Answer: "That depends on company policy, so HR needs to approve it. " + escalationOffer,
			Intent: intent.Hybrid,
		}
		e.draftEscalation(sessionID, question, rec, resp, "hybrid")
		return resp

	case intent.EmailHR:
		resp := &Response{
			Answer: "Happy to help with that. " + escalationOffer,
			Intent: intent.EmailHR,
		}
		e.draftEscalation(sessionID, question, rec, resp, "policy_phrase")
		return resp

	default:
		resp := &Response{
			Answer: "I'm not sure how to answer that directly. " + escalationOffer,
			Intent: intent.Unknown,
		}
		e.draftEscalation(sessionID, question, rec, resp, "unknown_intent")
		return resp
	}
}

// resumePending handles follow-ups for an outstanding action. Returns
// handled=false when the utterance is unrelated, in which case normal
// classification proceeds and the action stays pending.
func (e *Engine) resumePending(ctx context.Context, sessionID, question string, rec employee.Record, log *logger.Logger) (*Response, bool) {
	switch pending := e.sessions.Pending(sessionID).(type) {
	case session.LocationUpdate:
		return e.resumeLocationUpdate(ctx, sessionID, question, pending, rec, log)
	case session.EmailDraft:
		return e.resumeEmailDraft(ctx, sessionID, question, pending, rec, log)
	default:
		return nil, false
	}
}

func (e *Engine) resumeLocationUpdate(ctx context.Context, sessionID, question string, pending session.LocationUpdate, rec employee.Record, log *logger.Logger) (*Response, bool) {
	if isCancellation(question) {
		e.sessions.ClearPending(sessionID)
		if e.metrics != nil {
			e.metrics.RecordPendingAction("location_update", "cancelled")
		}
		return &Response{
			Answer: "No problem, I've left your location unchanged.",
			Intent: intent.UpdateField,
		}, true
	}

	result := e.classifier.Classify(question)
	if result.Intent != intent.RemoteChoice {
		return nil, false
	}
	choice := result.Slots[intent.SlotChoice]

	// Resolution always returns the session to idle: either the commit
	// landed or the failure is surfaced and the exchange starts over.
	e.sessions.ClearPending(sessionID)

	townChange, err := employee.NewChange(employee.FieldTown, pending.NewTown)
	if err == nil {
		var statusChange employee.Change
		statusChange, err = employee.NewChange(employee.FieldRemoteStatus, choice)
		if err == nil {
			var updated employee.Record
			updated, err = e.directory.Update(ctx, rec.ID, rec.Version, townChange, statusChange)
			if err == nil {
				if e.metrics != nil {
					e.metrics.RecordMutation("town", "committed")
					e.metrics.RecordMutation("remote_status", "committed")
					e.metrics.RecordPendingAction("location_update", "resolved")
				}
				return &Response{
					Answer: fmt.Sprintf("Done! %s's town is now %s and the work status is %s.",
						updated.FirstName, updated.Town, updated.RemoteStatus),
					Intent:   intent.UpdateField,
					DataUsed: []string{"town", "remote_status"},
				}, true
			}
		}
	}

	log.WithError(err).Warnf("Location update failed for %s", rec.ID)
	if e.metrics != nil {
		e.metrics.RecordMutation("town", "failed")
		e.metrics.RecordPendingAction("location_update", "failed")
	}
	return &Response{
		Answer: fmt.Sprintf("Sorry, I couldn't update your location: %s. Please try again.", userReason(err)),
		Intent: intent.UpdateField,
	}, true
}

func (e *Engine) resumeEmailDraft(ctx context.Context, sessionID, question string, pending session.EmailDraft, rec employee.Record, log *logger.Logger) (*Response, bool) {
	switch {
	case isSendConfirmation(question):
		err := e.mailer.Send(ctx, mail.Message{
			EmployeeID:    rec.ID,
			RecipientRole: pending.RecipientRole,
			Subject:       pending.Subject,
			Body:          pending.Body,
		})
		if err != nil {
			// Keep the draft so "send" can be retried.
			log.WithError(err).Errorf("Email delivery failed for %s", rec.ID)
			if e.metrics != nil {
				e.metrics.RecordEscalation("draft", "delivery_failed")
			}
			return &Response{
				Answer: "Your email could not be sent. Please try again by replying 'send'.",
				Intent: intent.EmailHR,
			}, true
		}
		e.sessions.ClearPending(sessionID)
		if e.metrics != nil {
			e.metrics.RecordEscalation("draft", "sent")
			e.metrics.RecordPendingAction("email_draft", "resolved")
		}
		return &Response{
			Answer: "Your email has been sent to HR. They typically respond within two business days.",
			Intent: intent.EmailHR,
		}, true

	case isCancellation(question):
		e.sessions.ClearPending(sessionID)
		if e.metrics != nil {
			e.metrics.RecordEscalation("draft", "cancelled")
			e.metrics.RecordPendingAction("email_draft", "cancelled")
		}
		return &Response{
			Answer: "No problem, I've discarded the draft.",
			Intent: intent.EmailHR,
		}, true

	default:
		return nil, false
	}
}

func (e *Engine) handleUpdate(ctx context.Context, sessionID, question string, slots intent.Slots, rec employee.Record, log *logger.Logger) *Response {
	fieldName := slots[intent.SlotField]
	rawValue := slots[intent.SlotValue]
	if fieldName == "" || rawValue == "" {
		return &Response{
			Answer: "I'd like to help you update your information. Please tell me what you'd like to change. For example: 'Change my address to Miami' or 'Update my team to Engineering'.",
			Intent: intent.UpdateField,
		}
	}

	field, err := employee.CanonicalField(fieldName)
	if err != nil {
		resp := &Response{
			Answer: fmt.Sprintf("Sorry, the %s field can't be changed through me. %s", fieldName, escalationOffer),
			Intent: intent.UpdateField,
		}
		e.draftEscalation(sessionID, question, rec, resp, "field_not_editable")
		return resp
	}

	// Town changes are two-field commits: the remote/on-site choice comes
	// in the follow-up turn and both land atomically.
	if field == employee.FieldTown {
		e.setPending(sessionID, session.LocationUpdate{NewTown: rawValue}, "location_update")
		town := stringutil.TitleCase(rawValue)
		return &Response{
			Answer: fmt.Sprintf("Got it, you're moving to %s. Will you be working remote or on-site?", town),
			Intent: intent.UpdateField,
			Action: &Action{
				Type: ActionLocationPrompt,
				Data: map[string]string{"new_town": town},
			},
		}
	}

	change, err := employee.NewChange(field, rawValue)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordMutation(string(field), "rejected")
		}
		return &Response{
			Answer: fmt.Sprintf("I can't make that change: %s.", userReason(err)),
			Intent: intent.UpdateField,
		}
	}

	updated, err := e.directory.Update(ctx, rec.ID, rec.Version, change)
	if err != nil {
		log.WithError(err).Warnf("Update of %s failed for %s", field, rec.ID)
		if e.metrics != nil {
			e.metrics.RecordMutation(string(field), "failed")
		}
		return &Response{
			Answer: fmt.Sprintf("Sorry, I couldn't update your %s: %s. Please try again.", field, userReason(err)),
			Intent: intent.UpdateField,
		}
	}

	if e.metrics != nil {
		e.metrics.RecordMutation(string(field), "committed")
	}
	return &Response{
		Answer:   fmt.Sprintf("Successfully updated %s to %s for %s.", field, formatChangeValue(field, change), updated.FirstName),
		Intent:   intent.UpdateField,
		DataUsed: []string{string(field)},
	}
}

func (e *Engine) handleW2(ctx context.Context, rec employee.Record, log *logger.Logger) *Response {
	handle, err := e.documents.GenerateW2(ctx, docs.Directive{
		EmployeeID: rec.ID,
		FirstName:  rec.FirstName,
		Year:       e.taxYear,
	})
	if err != nil {
		log.WithError(err).Errorf("W-2 generation failed for %s", rec.ID)
		return &Response{
			Answer: "Sorry, I couldn't prepare your W-2 right now. Please try again in a moment.",
			Intent: intent.W2Request,
		}
	}
	return &Response{
		Answer: fmt.Sprintf("I've requested your W-2 for %d. You can download it here: %s", e.taxYear, handle),
		Intent: intent.W2Request,
		Action: &Action{
			Type: ActionW2Document,
			Data: map[string]string{
				"employee_id": rec.ID,
				"year":        strconv.Itoa(e.taxYear),
				"handle":      handle,
			},
		},
	}
}

func (e *Engine) handleHealthInsurance(ctx context.Context, sessionID, question string, rec employee.Record) *Response {
	var plans []HealthPlan
	if e.plans != nil {
		var err error
		plans, err = e.plans.ListHealthPlans(ctx)
		if err != nil {
			e.log().WithError(err).Warn("Failed to load health plans")
		}
	}

	if len(plans) == 0 {
		resp := &Response{
			Answer: "I don't have health insurance information loaded. Let me connect you with HR to discuss your benefits options. " + escalationOffer,
			Intent: intent.HealthInsurance,
		}
		e.draftEscalation(sessionID, question, rec, resp, "no_plan_data")
		return resp
	}

	var b strings.Builder
	fmt.Fprintf(&b, "We offer %d health insurance plans:\n\n", len(plans))
	for _, p := range plans {
		fmt.Fprintf(&b, "%s (%s)\n  Employee: %s/month\n  Family: %s/month\n  Deductible: %s\n\n",
			p.Name, p.PlanType, p.MonthlyCostEmployee, p.MonthlyCostFamily, p.DeductibleIndividual)
	}
	b.WriteString("Would you like more details about a specific plan?")

	return &Response{
		Answer: b.String(),
		Intent: intent.HealthInsurance,
	}
}

// maybeEscalate applies the escalation policy on top of a direct answer:
// permission phrasing pairs the response with an HR email offer even when
// the question was answered.
func (e *Engine) maybeEscalate(sessionID, question string, rec employee.Record, resp *Response) {
	if !e.classifier.EscalationWorthy(question) {
		return
	}
	resp.Answer += "\n\nIt sounds like this may need HR approval. " + escalationOffer
	e.draftEscalation(sessionID, question, rec, resp, "policy_phrase")
}

// draftEscalation composes the email draft, parks it as the session's
// pending action (replacing any outstanding one) and attaches the draft
// payload to the response.
func (e *Engine) draftEscalation(sessionID, question string, rec employee.Record, resp *Response, trigger string) {
	draft := composeDraft(rec, question)
	e.setPending(sessionID, draft, "email_draft")
	resp.Escalated = true
	resp.Action = &Action{
		Type: ActionEmailDraft,
		Data: map[string]string{
			"subject":   draft.Subject,
			"body":      draft.Body,
			"recipient": draft.RecipientRole,
		},
	}
	if e.metrics != nil {
		e.metrics.RecordEscalation(trigger, "drafted")
	}
}

// setPending replaces the session's pending action, counting replacements
// of a live action separately.
func (e *Engine) setPending(sessionID string, action session.PendingAction, kind string) {
	replaced := e.sessions.Pending(sessionID) != nil
	e.sessions.SetPending(sessionID, action)
	if e.metrics == nil {
		return
	}
	e.metrics.RecordPendingAction(kind, "created")
	if replaced {
		e.metrics.RecordPendingReplacement()
	}
}

func (e *Engine) record(it intent.Intent, status string, start time.Time) {
	if e.metrics != nil {
		e.metrics.RecordChat(string(it), status, time.Since(start).Seconds())
	}
}

func (e *Engine) log() *logger.Logger {
	if e.logger != nil {
		return e.logger.WithModule("dialog")
	}
	return logger.New("error")
}

// userReason extracts a short, user-presentable reason from an error.
func userReason(err error) string {
	if err == nil {
		return "unknown error"
	}
	if ve, ok := domerrors.AsValidation(err); ok {
		return fmt.Sprintf("%s %s", ve.Field, ve.Message)
	}
	switch {
	case domerrors.IsMutationConflict(err):
		return "your record just changed elsewhere"
	case domerrors.IsNotFound(err):
		return "the record could not be found"
	}
	return "something went wrong saving the change"
}

func formatChangeValue(field employee.Field, change employee.Change) string {
	switch field {
	case employee.FieldSalary:
		return formatCurrency(change.Value().(float64))
	case employee.FieldBonusPercent:
		return formatPercent(change.Value().(float64))
	default:
		return fmt.Sprintf("%v", change.Value())
	}
}
