package pomodoro

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lifehubapp/lifehub/internal/record"
)

// ErrInvalidSession indicates malformed session input.
var ErrInvalidSession = errors.New("invalid pomodoro session")

// Gateway is the slice of the persistence gateway this service uses.
type Gateway interface {
	Get(ctx context.Context, collection, id string, out any) (bool, error)
	List(ctx context.Context, collection string, out any) error
	SaveOrCreate(ctx context.Context, collection string, e record.Entity) (string, bool, error)
	Delete(ctx context.Context, collection, id string) error
}

// OwnerSource resolves the owner id the singleton documents are keyed by.
type OwnerSource interface {
	OwnerID() string
}

// Service manages pomodoro sessions plus the per-owner settings and
// timer-state singletons.
type Service struct {
	gw     Gateway
	owner  OwnerSource
	logger *slog.Logger

	mu       sync.Mutex
	sessions []Session
}

// NewService creates a pomodoro service.
func NewService(gw Gateway, owner OwnerSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{gw: gw, owner: owner, logger: logger}
}

// Reload discards cached sessions and loads the given owner's history.
func (s *Service) Reload(ctx context.Context, ownerID string) error {
	var sessions []Session
	if err := s.gw.List(ctx, SessionsCollection, &sessions); err != nil {
		return fmt.Errorf("reloading pomodoro sessions: %w", err)
	}

	s.mu.Lock()
	s.sessions = sessions
	s.mu.Unlock()

	s.logger.Debug("pomodoro sessions reloaded", "owner", ownerID, "count", len(sessions))
	return nil
}

// Sessions returns the cached history, most recent first.
func (s *Service) Sessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// LogSession records a completed block.
func (s *Service) LogSession(ctx context.Context, name string, typ SessionType, duration int) (*Session, error) {
	if typ != TypeFocus && typ != TypeBreak {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidSession, typ)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidSession)
	}

	sess := &Session{
		Name:        name,
		Type:        typ,
		Duration:    duration,
		CompletedAt: time.Now(),
	}
	if _, _, err := s.gw.SaveOrCreate(ctx, SessionsCollection, sess); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	s.mu.Lock()
	s.sessions = append([]Session{*sess}, s.sessions...)
	s.mu.Unlock()
	return sess, nil
}

// Settings loads the owner's preferences, falling back to defaults when
// none are saved yet.
func (s *Service) Settings(ctx context.Context) (Settings, error) {
	var settings Settings
	found, err := s.gw.Get(ctx, SettingsCollection, s.owner.OwnerID(), &settings)
	if err != nil {
		return Settings{}, fmt.Errorf("loading settings: %w", err)
	}
	if !found {
		return DefaultSettings(), nil
	}
	return settings, nil
}

// SaveSettings writes the per-owner singleton through the fixed-id path.
func (s *Service) SaveSettings(ctx context.Context, settings Settings) error {
	settings.ID = s.owner.OwnerID()
	if _, _, err := s.gw.SaveOrCreate(ctx, SettingsCollection, &settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// State loads the saved timer snapshot; ok is false when there is none.
func (s *Service) State(ctx context.Context) (State, bool, error) {
	var state State
	found, err := s.gw.Get(ctx, StateCollection, s.owner.OwnerID(), &state)
	if err != nil {
		return State{}, false, fmt.Errorf("loading timer state: %w", err)
	}
	return state, found, nil
}

// SaveState persists the timer snapshot.
func (s *Service) SaveState(ctx context.Context, state State) error {
	state.ID = s.owner.OwnerID()
	if _, _, err := s.gw.SaveOrCreate(ctx, StateCollection, &state); err != nil {
		return fmt.Errorf("saving timer state: %w", err)
	}
	return nil
}

// ClearState removes the snapshot, e.g. when the timer finishes.
func (s *Service) ClearState(ctx context.Context) error {
	if err := s.gw.Delete(ctx, StateCollection, s.owner.OwnerID()); err != nil {
		return fmt.Errorf("clearing timer state: %w", err)
	}
	return nil
}
