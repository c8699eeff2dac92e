package events

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danbahadur2060/event/internal/logger"
	"github.com/danbahadur2060/event/internal/models"
)

var (
	ErrNotFound    = errors.New("event not found")
	ErrSlugExists  = errors.New("event slug already exists")
	ErrMissingInfo = errors.New("missing required event fields")
	ErrInvalidDate = errors.New("invalid date, use YYYY-MM-DD")
	ErrInvalidTime = errors.New("invalid time, use HH:mm or h:mm AM/PM")
)

type DBLayer interface {
	CreateEvent(ctx context.Context, e models.Event) error
	UpdateEvent(ctx context.Context, e models.Event) error
	DeleteEvent(ctx context.Context, id string) error
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListEventsByDates(ctx context.Context, dates []string) ([]models.Event, error)
}

type Service struct {
	DB     DBLayer
	Logger *logger.Logger
}

func NewService(db DBLayer, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log}
}

var (
	slugStrip   = regexp.MustCompile(`[^a-z0-9]+`)
	time24      = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)(?::[0-5]\d)?$`)
	time12      = regexp.MustCompile(`(?i)^(0?\d|1[0-2]):([0-5]\d)\s*([AP]M)$`)
	dateFormats = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}
)

// Slugify derives the URL slug from a title: lower-cased, runs of
// non-alphanumerics collapsed to single dashes.
func Slugify(title string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
	return strings.Trim(s, "-")
}

// NormalizeDate accepts a calendar date in a few common shapes and returns
// the date-only YYYY-MM-DD form.
func NormalizeDate(value string) (string, error) {
	v := strings.TrimSpace(value)
	for _, layout := range dateFormats {
		if d, err := time.Parse(layout, v); err == nil {
			return d.Format("2006-01-02"), nil
		}
	}
	return "", ErrInvalidDate
}

// NormalizeTime accepts 24h (H:mm, HH:mm, HH:mm:ss) or 12h (h:mm AM/PM)
// and returns HH:mm in 24-hour form.
func NormalizeTime(value string) (string, error) {
	v := strings.TrimSpace(value)

	if m := time24.FindStringSubmatch(v); m != nil {
		hh, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%02d:%s", hh, m[2]), nil
	}
	if m := time12.FindStringSubmatch(v); m != nil {
		hh, _ := strconv.Atoi(m[1])
		switch strings.ToUpper(m[3]) {
		case "AM":
			if hh == 12 {
				hh = 0
			}
		case "PM":
			if hh != 12 {
				hh += 12
			}
		}
		return fmt.Sprintf("%02d:%s", hh, m[2]), nil
	}
	return "", ErrInvalidTime
}

type EventInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Overview    string   `json:"overview"`
	Venue       string   `json:"venue"`
	Location    string   `json:"location"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Mode        string   `json:"mode"`
	Audience    string   `json:"audience"`
	Organizer   string   `json:"organizer"`
	Tags        []string `json:"tags"`
}

func (in EventInput) validate() error {
	for _, v := range []string{in.Title, in.Date, in.Time} {
		if strings.TrimSpace(v) == "" {
			return ErrMissingInfo
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in EventInput) (*models.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	date, err := NormalizeDate(in.Date)
	if err != nil {
		return nil, err
	}
	timeOfDay, err := NormalizeTime(in.Time)
	if err != nil {
		return nil, err
	}

	e := models.Event{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Slug:        Slugify(in.Title),
		Description: strings.TrimSpace(in.Description),
		Overview:    strings.TrimSpace(in.Overview),
		Venue:       strings.TrimSpace(in.Venue),
		Location:    strings.TrimSpace(in.Location),
		Date:        date,
		Time:        timeOfDay,
		Mode:        strings.TrimSpace(in.Mode),
		Audience:    strings.TrimSpace(in.Audience),
		Organizer:   strings.TrimSpace(in.Organizer),
		Tags:        in.Tags,
		CreatedAt:   time.Now(),
	}

	if err := s.DB.CreateEvent(ctx, e); err != nil {
		return nil, err
	}
	s.Logger.Info("EVENTS", fmt.Sprintf("created event %s (%s)", e.ID, e.Slug))
	return &e, nil
}

func (s *Service) Update(ctx context.Context, id string, in EventInput) (*models.Event, error) {
	existing, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	if t := strings.TrimSpace(in.Title); t != "" && t != existing.Title {
		existing.Title = t
		existing.Slug = Slugify(t)
	}
	if in.Date != "" {
		date, err := NormalizeDate(in.Date)
		if err != nil {
			return nil, err
		}
		existing.Date = date
	}
	if in.Time != "" {
		timeOfDay, err := NormalizeTime(in.Time)
		if err != nil {
			return nil, err
		}
		existing.Time = timeOfDay
	}
	if in.Description != "" {
		existing.Description = strings.TrimSpace(in.Description)
	}
	if in.Overview != "" {
		existing.Overview = strings.TrimSpace(in.Overview)
	}
	if in.Venue != "" {
		existing.Venue = strings.TrimSpace(in.Venue)
	}
	if in.Location != "" {
		existing.Location = strings.TrimSpace(in.Location)
	}
	if in.Mode != "" {
		existing.Mode = strings.TrimSpace(in.Mode)
	}
	if in.Audience != "" {
		existing.Audience = strings.TrimSpace(in.Audience)
	}
	if in.Organizer != "" {
		existing.Organizer = strings.TrimSpace(in.Organizer)
	}
	if in.Tags != nil {
		existing.Tags = in.Tags
	}
	existing.UpdatedAt = time.Now()

	if err := s.DB.UpdateEvent(ctx, *existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.DB.DeleteEvent(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.Event, error) {
	return s.DB.ListEvents(ctx)
}

// ListByDates returns events whose date matches any of the given
// YYYY-MM-DD values.
func (s *Service) ListByDates(ctx context.Context, dates []string) ([]models.Event, error) {
	return s.DB.ListEventsByDates(ctx, dates)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	e, err := s.DB.GetEventBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotFound
	}
	return e, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.Event, error) {
	e, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotFound
	}
	return e, nil
}
