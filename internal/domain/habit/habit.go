package habit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/lifehubapp/lifehub/internal/record"
)

// Collection is the document collection habits persist to.
const Collection = "habits"

// ErrHabitNotFound indicates the habit doesn't exist.
var ErrHabitNotFound = errors.New("habit not found")

// ErrInvalidInput indicates malformed habit input.
var ErrInvalidInput = errors.New("invalid habit input")

// DateLayout is the calendar-day format completion dates are stored in.
const DateLayout = "2006-01-02"

// Habit tracks a recurring daily practice. CompletedDates holds the
// calendar days it was done on, one entry per day.
type Habit struct {
	record.Meta
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	CompletedDates []string `json:"completedDates"`
}

// Gateway is the slice of the persistence gateway this service uses.
type Gateway interface {
	List(ctx context.Context, collection string, out any) error
	SaveOrCreate(ctx context.Context, collection string, e record.Entity) (string, bool, error)
	Delete(ctx context.Context, collection, id string) error
}

// Service maintains one owner's habits.
type Service struct {
	gw     Gateway
	logger *slog.Logger

	mu     sync.Mutex
	habits []*Habit
}

// NewService creates a habit service.
func NewService(gw Gateway, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{gw: gw, logger: logger}
}

// Reload discards the cache and loads the given owner's habits.
func (s *Service) Reload(ctx context.Context, ownerID string) error {
	var loaded []Habit
	if err := s.gw.List(ctx, Collection, &loaded); err != nil {
		return fmt.Errorf("reloading habits: %w", err)
	}

	habits := make([]*Habit, len(loaded))
	for i := range loaded {
		habits[i] = &loaded[i]
	}

	s.mu.Lock()
	s.habits = habits
	s.mu.Unlock()

	s.logger.Debug("habits reloaded", "owner", ownerID, "count", len(habits))
	return nil
}

// Habits returns the cached collection.
func (s *Service) Habits() []*Habit {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Habit, len(s.habits))
	copy(out, s.habits)
	return out
}

// Add creates a habit.
func (s *Service) Add(ctx context.Context, name, description string) (*Habit, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrInvalidInput)
	}

	h := &Habit{Name: name, Description: description}
	if _, _, err := s.gw.SaveOrCreate(ctx, Collection, h); err != nil {
		return nil, fmt.Errorf("saving habit: %w", err)
	}

	s.mu.Lock()
	s.habits = append([]*Habit{h}, s.habits...)
	s.mu.Unlock()
	return h, nil
}

// Delete removes a habit.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.gw.Delete(ctx, Collection, id); err != nil {
		return fmt.Errorf("deleting habit: %w", err)
	}

	s.mu.Lock()
	for i, h := range s.habits {
		if h.ID == id {
			s.habits = append(s.habits[:i], s.habits[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// MarkDone records day as completed. Marking the same day twice is a
// no-op.
func (s *Service) MarkDone(ctx context.Context, id string, day time.Time) (*Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.find(id)
	if !ok {
		return nil, ErrHabitNotFound
	}

	date := day.Format(DateLayout)
	if !slices.Contains(h.CompletedDates, date) {
		h.CompletedDates = append(h.CompletedDates, date)
		sort.Strings(h.CompletedDates)
		if _, _, err := s.gw.SaveOrCreate(ctx, Collection, h); err != nil {
			return nil, fmt.Errorf("saving habit: %w", err)
		}
	}
	return h, nil
}

// UnmarkDone removes day from the completion log.
func (s *Service) UnmarkDone(ctx context.Context, id string, day time.Time) (*Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.find(id)
	if !ok {
		return nil, ErrHabitNotFound
	}

	date := day.Format(DateLayout)
	if i := slices.Index(h.CompletedDates, date); i >= 0 {
		h.CompletedDates = append(h.CompletedDates[:i], h.CompletedDates[i+1:]...)
		if _, _, err := s.gw.SaveOrCreate(ctx, Collection, h); err != nil {
			return nil, fmt.Errorf("saving habit: %w", err)
		}
	}
	return h, nil
}

func (s *Service) find(id string) (*Habit, bool) {
	for _, h := range s.habits {
		if h.ID == id {
			return h, true
		}
	}
	return nil, false
}

// Streak reports the run of consecutive completed days ending at today
// (or yesterday, so an unfinished today doesn't break the run).
func Streak(h *Habit, today time.Time) int {
	done := make(map[string]bool, len(h.CompletedDates))
	for _, d := range h.CompletedDates {
		done[d] = true
	}

	day := today
	if !done[day.Format(DateLayout)] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for done[day.Format(DateLayout)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// BestStreak reports the longest run of consecutive completed days in the
// habit's history. CompletedDates is kept sorted and deduplicated.
func BestStreak(h *Habit) int {
	best, run := 0, 0
	var prev time.Time
	for i, d := range h.CompletedDates {
		day, err := time.Parse(DateLayout, d)
		if err != nil {
			continue
		}
		if i > 0 && day.Sub(prev) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
		prev = day
	}
	return best
}
