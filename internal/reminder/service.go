package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/danbahadur2060/event/internal/ai"
	"github.com/danbahadur2060/event/internal/logger"
	"github.com/danbahadur2060/event/internal/mailer"
	"github.com/danbahadur2060/event/internal/models"
)

type EventSource interface {
	ListByDates(ctx context.Context, dates []string) ([]models.Event, error)
}

type BookingSource interface {
	Unreminded(ctx context.Context, eventID string) ([]models.Booking, error)
	MarkReminded(ctx context.Context, bookings []models.Booking, at time.Time) error
}

type Generator interface {
	GenerateReminderEmail(ctx context.Context, ev ai.EventDetails) ai.EmailDraft
}

// Service sends reminder emails for events happening today or tomorrow
// (UTC). Triggered by an external scheduler hitting the cron endpoint.
type Service struct {
	Events   EventSource
	Bookings BookingSource
	AI       Generator
	Mailer   mailer.Sender
	Logger   *logger.Logger
}

func NewService(events EventSource, bookings BookingSource, gen Generator, sender mailer.Sender, log *logger.Logger) *Service {
	return &Service{
		Events:   events,
		Bookings: bookings,
		AI:       gen,
		Mailer:   sender,
		Logger:   log,
	}
}

// targetDates is the scan window: today and the day 24 hours out, in UTC.
func targetDates(now time.Time) []string {
	utc := now.UTC()
	return []string{
		utc.Format("2006-01-02"),
		utc.Add(24 * time.Hour).Format("2006-01-02"),
	}
}

// Run scans the window and sends one batch email per event. A failure on one
// event never blocks the rest of the scan. Returns the number of recipients
// reminded.
func (s *Service) Run(ctx context.Context, now time.Time) (int, error) {
	dates := targetDates(now)
	events, err := s.Events.ListByDates(ctx, dates)
	if err != nil {
		return 0, fmt.Errorf("list events in window: %w", err)
	}

	sent := 0
	for _, ev := range events {
		n, err := s.remindEvent(ctx, ev, now)
		if err != nil {
			s.Logger.Error("REMINDER", fmt.Sprintf("event %s (%s): %v", ev.ID, ev.Slug, err))
			continue
		}
		sent += n
	}

	s.Logger.Info("REMINDER", fmt.Sprintf("reminder scan complete, %d recipients notified", sent))
	return sent, nil
}

func (s *Service) remindEvent(ctx context.Context, ev models.Event, now time.Time) (int, error) {
	attendees, err := s.Bookings.Unreminded(ctx, ev.ID)
	if err != nil {
		return 0, fmt.Errorf("load attendees: %w", err)
	}
	if len(attendees) == 0 {
		return 0, nil
	}

	draft := s.AI.GenerateReminderEmail(ctx, ai.EventDetails{
		Title:       ev.Title,
		Date:        ev.Date,
		Time:        ev.Time,
		Location:    ev.Location,
		Venue:       ev.Venue,
		Description: ev.Description,
	})

	recipients := make([]string, len(attendees))
	for i, a := range attendees {
		recipients[i] = a.Email
	}

	if err := s.Mailer.Send(recipients, draft.Subject, draft.HTML, draft.Text); err != nil {
		return 0, fmt.Errorf("send reminder: %w", err)
	}

	// Stamp only after the mail went out so a failed send is retried on the
	// next scan.
	if err := s.Bookings.MarkReminded(ctx, attendees, now); err != nil {
		return 0, fmt.Errorf("mark reminded: %w", err)
	}

	return len(recipients), nil
}
