package goal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lifehubapp/lifehub/internal/record"
)

// Collection is the document collection goals persist to.
const Collection = "goals"

var (
	// ErrGoalNotFound indicates the goal doesn't exist.
	ErrGoalNotFound = errors.New("goal not found")
	// ErrInvalidInput indicates malformed goal input.
	ErrInvalidInput = errors.New("invalid goal input")
)

// Milestone is one checkpoint toward a goal.
type Milestone struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
}

// Goal is a long-running objective with manual progress tracking.
type Goal struct {
	record.Meta
	Title       string      `json:"title"`
	Description string      `json:"description"`
	TargetDate  *time.Time  `json:"targetDate,omitempty"`
	Progress    int         `json:"progress"` // 0-100
	Milestones  []Milestone `json:"milestones"`
}

// Gateway is the slice of the persistence gateway this service uses.
type Gateway interface {
	List(ctx context.Context, collection string, out any) error
	SaveOrCreate(ctx context.Context, collection string, e record.Entity) (string, bool, error)
	Delete(ctx context.Context, collection, id string) error
}

// Service maintains one owner's goals.
type Service struct {
	gw     Gateway
	logger *slog.Logger

	mu    sync.Mutex
	goals []*Goal
}

// NewService creates a goal service.
func NewService(gw Gateway, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{gw: gw, logger: logger}
}

// Reload discards the cache and loads the given owner's goals.
func (s *Service) Reload(ctx context.Context, ownerID string) error {
	var loaded []Goal
	if err := s.gw.List(ctx, Collection, &loaded); err != nil {
		return fmt.Errorf("reloading goals: %w", err)
	}

	goals := make([]*Goal, len(loaded))
	for i := range loaded {
		goals[i] = &loaded[i]
	}

	s.mu.Lock()
	s.goals = goals
	s.mu.Unlock()

	s.logger.Debug("goals reloaded", "owner", ownerID, "count", len(goals))
	return nil
}

// Goals returns the cached collection.
func (s *Service) Goals() []*Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Goal, len(s.goals))
	copy(out, s.goals)
	return out
}

// Add creates a goal.
func (s *Service) Add(ctx context.Context, title, description string, targetDate *time.Time) (*Goal, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title required", ErrInvalidInput)
	}

	g := &Goal{Title: title, Description: description, TargetDate: targetDate}
	if _, _, err := s.gw.SaveOrCreate(ctx, Collection, g); err != nil {
		return nil, fmt.Errorf("saving goal: %w", err)
	}

	s.mu.Lock()
	s.goals = append([]*Goal{g}, s.goals...)
	s.mu.Unlock()
	return g, nil
}

// SetProgress updates a goal's progress, clamped to 0-100.
func (s *Service) SetProgress(ctx context.Context, id string, progress int) (*Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.find(id)
	if !ok {
		return nil, ErrGoalNotFound
	}

	g.Progress = min(100, max(0, progress))
	if _, _, err := s.gw.SaveOrCreate(ctx, Collection, g); err != nil {
		return nil, fmt.Errorf("saving goal: %w", err)
	}
	return g, nil
}

// AddMilestone appends a checkpoint.
func (s *Service) AddMilestone(ctx context.Context, id, name string) (*Goal, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: milestone name required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.find(id)
	if !ok {
		return nil, ErrGoalNotFound
	}

	g.Milestones = append(g.Milestones, Milestone{Name: name})
	if _, _, err := s.gw.SaveOrCreate(ctx, Collection, g); err != nil {
		return nil, fmt.Errorf("saving goal: %w", err)
	}
	return g, nil
}

// Delete removes a goal.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.gw.Delete(ctx, Collection, id); err != nil {
		return fmt.Errorf("deleting goal: %w", err)
	}

	s.mu.Lock()
	for i, g := range s.goals {
		if g.ID == id {
			s.goals = append(s.goals[:i], s.goals[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *Service) find(id string) (*Goal, bool) {
	for _, g := range s.goals {
		if g.ID == id {
			return g, true
		}
	}
	return nil, false
}
