package remote

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrNotFound is returned when a document doesn't exist. Absence is
	// not a failure; every other error means the remote store is
	// unreachable.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable indicates the remote store cannot be reached.
	ErrUnavailable = errors.New("remote store unavailable")
)

// Store is the facade over the remote document database. Documents are
// opaque JSON; the gateway owns metadata stamping and ordering. ListOwned
// filters by owner equality only; sorting is always done client-side so
// the remote store never needs a composite index.
type Store interface {
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)
	Set(ctx context.Context, collection, id string, doc json.RawMessage) error
	Add(ctx context.Context, collection string, doc json.RawMessage) (string, error)
	Delete(ctx context.Context, collection, id string) error
	ListOwned(ctx context.Context, collection, ownerID string) ([]json.RawMessage, error)
}
