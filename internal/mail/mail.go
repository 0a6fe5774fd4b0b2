// Package mail delivers finalized escalation emails to HR. The concrete
// implementation writes into the SQLite outbox that the HR dashboard
// reads; delivery failures surface as ErrDeliveryFailed so the dialog
// layer can tell the user to retry.
package mail

import (
	"context"
	"fmt"
	"time"

	domerrors "github.com/dempseyco/hr-assistant-go/internal/errors"
	"github.com/dempseyco/hr-assistant-go/internal/logger"
	"github.com/dempseyco/hr-assistant-go/internal/storage"
)

// Message is a finalized email payload handed over on explicit send.
type Message struct {
	EmployeeID    string
	RecipientRole string
	Subject       string
	Body          string
	Priority      string
}

// Service accepts finalized messages for delivery.
type Service interface {
	Send(ctx context.Context, msg Message) error
}

// Response SLA for escalation emails shown on the HR dashboard.
const responseDue = 48 * time.Hour

// Outbox is the SQLite-backed mail service.
type Outbox struct {
	db        *storage.DB
	recipient string
	logger    *logger.Logger
}

// NewOutbox creates a mail service writing to the given database. The
// recipient address comes from configuration.
func NewOutbox(db *storage.DB, recipient string, log *logger.Logger) *Outbox {
	return &Outbox{
		db:        db,
		recipient: recipient,
		logger:    log,
	}
}

// Send records the message in the outbox with a pending status.
func (o *Outbox) Send(ctx context.Context, msg Message) error {
	now := time.Now()
	email := &storage.HREmail{
		EmployeeID:  msg.EmployeeID,
		Recipient:   o.recipient,
		Subject:     msg.Subject,
		Body:        msg.Body,
		Priority:    msg.Priority,
		Status:      "Pending",
		ReceivedAt:  now,
		ResponseDue: now.Add(responseDue),
	}
	if email.Priority == "" {
		email.Priority = "Normal"
	}

	if err := o.db.SaveHREmail(ctx, email); err != nil {
		if o.logger != nil {
			o.logger.WithModule("mail").WithError(err).Errorf("Failed to deliver email for %s", msg.EmployeeID)
		}
		return fmt.Errorf("%w: %v", domerrors.ErrDeliveryFailed, err)
	}

	if o.logger != nil {
		o.logger.WithModule("mail").WithField("employee_id", msg.EmployeeID).
			Infof("Email queued for HR: %s", msg.Subject)
	}
	return nil
}
