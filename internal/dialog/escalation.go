package dialog

import (
	"fmt"
	"strings"

	"github.com/dempseyco/hr-assistant-go/internal/employee"
	"github.com/dempseyco/hr-assistant-go/internal/session"
)

// The recipient role every escalation draft is addressed to.
const recipientRoleHR = "hr"

// composeDraft builds the HR email draft for an escalation-worthy
// utterance. The subject always carries the employee identifier so the
// dashboard can tie the request back to a record.
func composeDraft(rec employee.Record, question string) session.EmailDraft {
	subject := fmt.Sprintf("Request from %s (ID: %s)", rec.FirstName, rec.ID)
	body := fmt.Sprintf(`Dear HR Team,

Employee: %s (ID: %s)
Subject: %s

REQUEST DETAILS:
%s

This request has been escalated for your review and assistance.

Best regards,
HR Assistant Bot`, rec.FirstName, rec.ID, subject, question)

	return session.EmailDraft{
		Subject:       subject,
		Body:          body,
		RecipientRole: recipientRoleHR,
	}
}

// escalationOffer is the concrete next step appended to any response that
// pairs with a drafted email. The user is never left at a dead end.
const escalationOffer = "I've drafted an email to HR about your request. Reply 'send' to deliver it or 'cancel' to discard it."

// Send/cancel recognition for the EmailDraft follow-up. Matching is
// deliberately forgiving: a one-word confirmation is the common case.
var (
	sendWords   = []string{"send", "yes", "ok", "okay", "confirm", "sure", "go ahead"}
	cancelWords = []string{"cancel", "no", "discard", "never mind", "nevermind", "don't send", "dont send"}
)

func isSendConfirmation(utterance string) bool {
	text := strings.ToLower(strings.TrimSpace(utterance))
	for _, w := range sendWords {
		if text == w || strings.HasPrefix(text, w+" ") {
			return true
		}
	}
	return false
}

func isCancellation(utterance string) bool {
	text := strings.ToLower(strings.TrimSpace(utterance))
	for _, w := range cancelWords {
		if text == w || strings.HasPrefix(text, w+" ") {
			return true
		}
	}
	return false
}
