// Package reminder delivers the one-shot booster reminder emails. A
// background scanner periodically walks flagged doses and mails the
// ones whose due date has slipped past the owner's lead window.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rokotuskortti/vaccination-erecord/internal/dates"
	"github.com/rokotuskortti/vaccination-erecord/internal/dose"
	"github.com/rokotuskortti/vaccination-erecord/internal/email"
	"github.com/rokotuskortti/vaccination-erecord/internal/logging"
)

const subject = "Remember to take your booster vaccine!"

// DoseSource is the slice of dose persistence the scanner needs.
type DoseSource interface {
	ListFlaggedForReminder(ctx context.Context) ([]dose.ReminderItem, error)
	ClearReminderFlag(ctx context.Context, doseID int64) error
}

// Scanner walks flagged doses and sends due reminders. The flag is
// cleared only after a successful send, so a failed delivery is retried
// on the next pass and a crashed pass can at worst resend.
type Scanner struct {
	doses           DoseSource
	mailer          email.Sender
	codec           *dates.Codec
	logger          *logging.Logger
	defaultLeadDays int

	now func() time.Time
}

func NewScanner(doses DoseSource, mailer email.Sender, codec *dates.Codec, logger *logging.Logger, defaultLeadDays int) *Scanner {
	return &Scanner{
		doses:           doses,
		mailer:          mailer,
		codec:           codec,
		logger:          logger,
		defaultLeadDays: defaultLeadDays,
		now:             time.Now,
	}
}

// SetClock overrides the time source. Used in tests.
func (s *Scanner) SetClock(now func() time.Time) {
	s.now = now
}

// Run scans immediately and then on every interval tick until the
// context is canceled.
func (s *Scanner) Run(ctx context.Context, interval time.Duration) {
	s.logger.Info("reminder scanner started", "interval", interval.String(), "default_lead_days", s.defaultLeadDays)

	s.Tick(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scanner stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one scan pass. Every dose is handled independently; one
// bad dose never blocks the rest.
func (s *Scanner) Tick(ctx context.Context) {
	logger := s.logger.WithFields(map[string]any{"scan_id": uuid.NewString()})

	items, err := s.doses.ListFlaggedForReminder(ctx)
	if err != nil {
		logger.Error("failed to list flagged doses", "error", err.Error())
		return
	}

	now := s.now()
	sent := 0
	for _, item := range items {
		if s.process(ctx, logger, item, now) {
			sent++
		}
	}

	scansTotal.Inc()
	logger.Debug("reminder scan finished", "flagged", len(items), "sent", sent)
}

func (s *Scanner) process(ctx context.Context, logger *logging.Logger, item dose.ReminderItem, now time.Time) bool {
	if item.DueDate == nil {
		logger.Debug("skipping dose without booster due date", "dose_id", item.DoseID)
		return false
	}
	if item.Address == "" {
		logger.Warn("skipping dose without reminder address", "dose_id", item.DoseID)
		return false
	}

	lead := s.defaultLeadDays
	if item.UserLeadDays != nil {
		lead = *item.UserLeadDays
	}
	if dates.DaysBetween(now, *item.DueDate) < lead {
		return false
	}

	msg := email.Message{
		To:      item.Address,
		Subject: subject,
		Text:    s.body(item),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		sendFailuresTotal.Inc()
		logger.Error("failed to send booster reminder", "dose_id", item.DoseID, "error", err.Error())
		return false
	}
	sentTotal.Inc()
	logger.Info("booster reminder sent", "dose_id", item.DoseID, "user_id", item.UserID, "vaccine", item.VaccineName)

	if err := s.doses.ClearReminderFlag(ctx, item.DoseID); err != nil {
		flagClearFailuresTotal.Inc()
		logger.Error("failed to clear reminder flag, reminder may repeat", "dose_id", item.DoseID, "error", err.Error())
	}
	return true
}

func (s *Scanner) body(item dose.ReminderItem) string {
	return fmt.Sprintf(
		"Hello!\n\n"+
			"Your booster dose of %s was due on %s.\n\n"+
			"This is a one-time reminder. You will not be reminded about this dose again.\n\n"+
			"Rokotuskortti",
		item.VaccineName, s.codec.Format(*item.DueDate),
	)
}
