package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// AnonymousOwner is the sentinel owner id for records created before
// sign-in.
const AnonymousOwner = "anonymous"

// State is the lifecycle state of the identity context.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

var (
	// ErrUninitialized indicates the context has not been bootstrapped.
	ErrUninitialized = errors.New("identity context not initialized")
	// ErrAlreadyAuthenticated indicates a sign-in while signed in.
	ErrAlreadyAuthenticated = errors.New("already authenticated")
	// ErrNotAuthenticated indicates a sign-out without a signed-in user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidCredentials indicates credential verification failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Observer is notified after every identity transition. Feature modules
// use it to discard their in-memory caches and reload for the new owner.
type Observer func(ctx context.Context, ownerID string) error

// Verifier validates credentials and resolves the authenticated
// principal id.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// Migrator re-owns records during the anonymous-to-authenticated
// transition. Implemented by gateway.Gateway.
type Migrator interface {
	MigrateOwnership(ctx context.Context, fromOwner, toOwner string, collections []string) error
}

// Context holds the current owner id and drives identity transitions.
// Observers run synchronously in registration order and the transition
// returns their joined error, so callers never observe a half-reloaded
// application.
type Context struct {
	verifier    Verifier
	migrator    Migrator
	collections []string
	logger      *slog.Logger

	mu        sync.RWMutex
	state     State
	ownerID   string
	observers []Observer
}

// New creates an uninitialized identity context. collections lists every
// record collection subject to ownership migration.
func New(verifier Verifier, migrator Migrator, collections []string, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Context{
		verifier:    verifier,
		migrator:    migrator,
		collections: collections,
		logger:      logger,
		state:       StateUninitialized,
	}
}

// OwnerID returns the current owner id. Before bootstrap it returns the
// anonymous sentinel so early reads are still scoped.
func (c *Context) OwnerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ownerID == "" {
		return AnonymousOwner
	}
	return c.ownerID
}

// State returns the current lifecycle state.
func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// OnChange registers an observer. Registration order is notification
// order.
func (c *Context) OnChange(obs Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, obs)
}

// Bootstrap moves Uninitialized to Anonymous and performs the initial
// load cascade.
func (c *Context) Bootstrap(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateUninitialized {
		c.mu.Unlock()
		return nil
	}
	c.state = StateAnonymous
	c.ownerID = AnonymousOwner
	c.mu.Unlock()

	c.logger.Info("identity bootstrapped", "owner", AnonymousOwner)
	return c.notify(ctx, AnonymousOwner)
}

// SignIn validates the token, migrates anonymous records to the
// authenticated principal, transitions to Authenticated, and reloads
// every observer. A partial migration still transitions; the
// MigrationError is returned so the caller can report or retry the
// failed records.
func (c *Context) SignIn(ctx context.Context, token string) error {
	switch c.State() {
	case StateUninitialized:
		return ErrUninitialized
	case StateAuthenticated:
		return ErrAlreadyAuthenticated
	}

	principal, err := c.verifier.Verify(ctx, token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	migErr := c.migrator.MigrateOwnership(ctx, AnonymousOwner, principal, c.collections)
	if migErr != nil {
		c.logger.Warn("ownership migration incomplete", "owner", principal, "error", migErr)
	}

	c.mu.Lock()
	c.state = StateAuthenticated
	c.ownerID = principal
	c.mu.Unlock()

	c.logger.Info("signed in", "owner", principal)
	if err := c.notify(ctx, principal); err != nil {
		return errors.Join(migErr, err)
	}
	return migErr
}

// SignOut reverts to the anonymous identity. Authenticated records stay
// in storage; observers reload whatever the anonymous owner has.
func (c *Context) SignOut(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateAuthenticated {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	c.state = StateAnonymous
	c.ownerID = AnonymousOwner
	c.mu.Unlock()

	c.logger.Info("signed out")
	return c.notify(ctx, AnonymousOwner)
}

func (c *Context) notify(ctx context.Context, ownerID string) error {
	c.mu.RLock()
	observers := make([]Observer, len(c.observers))
	copy(observers, c.observers)
	c.mu.RUnlock()

	var errs []error
	for _, obs := range observers {
		if err := obs(ctx, ownerID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
