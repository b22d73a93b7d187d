package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lifehubapp/lifehub/internal/record"
)

// Collection is the document collection events persist to.
const Collection = "calendar_events"

var (
	// ErrEventNotFound indicates the event doesn't exist.
	ErrEventNotFound = errors.New("event not found")
	// ErrInvalidInput indicates malformed event input.
	ErrInvalidInput = errors.New("invalid event input")
)

// Event is one calendar entry.
type Event struct {
	record.Meta
	Title    string    `json:"title"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
	AllDay   bool      `json:"allDay"`
}

// Gateway is the slice of the persistence gateway this service uses.
type Gateway interface {
	List(ctx context.Context, collection string, out any) error
	SaveOrCreate(ctx context.Context, collection string, e record.Entity) (string, bool, error)
	Delete(ctx context.Context, collection, id string) error
}

// Service maintains one owner's events.
type Service struct {
	gw     Gateway
	logger *slog.Logger

	mu     sync.Mutex
	events []Event
}

// NewService creates a calendar service.
func NewService(gw Gateway, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{gw: gw, logger: logger}
}

// Reload discards the cache and loads the given owner's events.
func (s *Service) Reload(ctx context.Context, ownerID string) error {
	var loaded []Event
	if err := s.gw.List(ctx, Collection, &loaded); err != nil {
		return fmt.Errorf("reloading events: %w", err)
	}

	s.mu.Lock()
	s.events = loaded
	s.mu.Unlock()

	s.logger.Debug("events reloaded", "owner", ownerID, "count", len(loaded))
	return nil
}

// Events returns the cached entries.
func (s *Service) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Add creates an event. All-day events ignore the end time.
func (s *Service) Add(ctx context.Context, title string, startsAt, endsAt time.Time, allDay bool) (*Event, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title required", ErrInvalidInput)
	}
	if !allDay && !endsAt.After(startsAt) {
		return nil, fmt.Errorf("%w: event must end after it starts", ErrInvalidInput)
	}

	e := &Event{Title: title, StartsAt: startsAt, EndsAt: endsAt, AllDay: allDay}
	if _, _, err := s.gw.SaveOrCreate(ctx, Collection, e); err != nil {
		return nil, fmt.Errorf("saving event: %w", err)
	}

	s.mu.Lock()
	s.events = append([]Event{*e}, s.events...)
	s.mu.Unlock()
	return e, nil
}

// Delete removes an event.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.gw.Delete(ctx, Collection, id); err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}

	s.mu.Lock()
	for i, e := range s.events {
		if e.ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// EventsOn returns the cached events overlapping the given calendar day.
func (s *Service) EventsOn(day time.Time) []Event {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Event
	for _, e := range s.events {
		if e.AllDay {
			if !e.StartsAt.Before(dayStart) && e.StartsAt.Before(dayEnd) {
				out = append(out, e)
			}
			continue
		}
		if e.StartsAt.Before(dayEnd) && e.EndsAt.After(dayStart) {
			out = append(out, e)
		}
	}
	return out
}
