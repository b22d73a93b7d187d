package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lifehubapp/lifehub/internal/local"
	"github.com/lifehubapp/lifehub/internal/record"
	"github.com/lifehubapp/lifehub/internal/remote"
)

var (
	// ErrInvalidCollection indicates a malformed collection name. This is
	// a programming error, never a runtime condition.
	ErrInvalidCollection = errors.New("invalid collection name")

	// ErrInvalidID indicates an empty document id where one is required.
	ErrInvalidID = errors.New("invalid document id")
)

// OwnerSource provides the owner id every operation is scoped to.
// Implemented by identity.Context.
type OwnerSource interface {
	OwnerID() string
}

// OwnerFunc adapts a function to OwnerSource.
type OwnerFunc func() string

func (f OwnerFunc) OwnerID() string { return f() }

// Gateway is the single persistence API used by every feature module. It
// writes through to the remote store and mirrors into the fallback store;
// reads prefer the remote store and degrade transparently when it is
// unreachable. Remote transport errors never cross this boundary.
type Gateway struct {
	remote remote.Store // nil when running without a remote backend
	local  *local.Store
	owner  OwnerSource
	logger *slog.Logger
}

// New creates a gateway. remoteStore may be nil, in which case every
// operation is served by the fallback store alone.
func New(remoteStore remote.Store, localStore *local.Store, owner OwnerSource, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gateway{
		remote: remoteStore,
		local:  localStore,
		owner:  owner,
		logger: logger,
	}
}

// Get loads a document into out. It returns false with a nil error when
// the document doesn't exist anywhere, so callers can apply their own
// defaults. A remote failure silently degrades to the fallback copy.
func (g *Gateway) Get(ctx context.Context, collection, id string, out any) (bool, error) {
	if !record.ValidCollection(collection) {
		return false, fmt.Errorf("%w: %q", ErrInvalidCollection, collection)
	}
	if id == "" {
		return false, ErrInvalidID
	}

	doc, err := g.fetch(ctx, collection, id)
	if err != nil {
		return false, err
	}
	if doc == nil {
		return false, nil
	}

	// A record that belongs to someone else is invisible, same as absent.
	if docOwner(doc) != g.owner.OwnerID() {
		return false, nil
	}

	if err := json.Unmarshal(doc, out); err != nil {
		return false, fmt.Errorf("failed to decode document: %w", err)
	}
	return true, nil
}

func (g *Gateway) fetch(ctx context.Context, collection, id string) (json.RawMessage, error) {
	if g.remote != nil {
		doc, err := g.remote.Get(ctx, collection, id)
		if err == nil {
			// Reconcile the fallback copy with the authoritative read.
			if perr := g.local.Put(context.WithoutCancel(ctx), collection, id, doc); perr != nil {
				g.logger.Warn("failed to reconcile fallback copy", "collection", collection, "id", id, "error", perr)
			}
			return doc, nil
		}
		if errors.Is(err, remote.ErrNotFound) {
			return nil, nil
		}
		g.logger.Debug("remote store unavailable, serving fallback", "collection", collection, "id", id, "error", err)
	}

	doc, err := g.local.Get(ctx, collection, id)
	if errors.Is(err, local.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fallback store: %w", err)
	}
	return doc, nil
}

// Put writes an entity under an explicit id. Metadata is stamped before
// the write leaves the process. The fallback write is unconditional so
// the record stays durable even when the remote write fails; the returned
// bool reports the remote outcome for caller-visible feedback.
func (g *Gateway) Put(ctx context.Context, collection, id string, e record.Entity) (bool, error) {
	if !record.ValidCollection(collection) {
		return false, fmt.Errorf("%w: %q", ErrInvalidCollection, collection)
	}
	if id == "" {
		return false, ErrInvalidID
	}

	record.Stamp(e, g.owner.OwnerID(), time.Now())
	e.Record().ID = id

	doc, err := json.Marshal(e)
	if err != nil {
		return false, fmt.Errorf("failed to encode entity: %w", err)
	}

	remoteOK := false
	if g.remote != nil {
		if err := g.remote.Set(ctx, collection, id, doc); err != nil {
			g.logger.Debug("remote write failed, record kept locally", "collection", collection, "id", id, "error", err)
		} else {
			remoteOK = true
		}
	}

	if err := g.local.Put(context.WithoutCancel(ctx), collection, id, doc); err != nil {
		return remoteOK, fmt.Errorf("failed to write fallback store: %w", err)
	}
	return remoteOK, nil
}

// Add writes an entity under a store-issued id and returns it. When the
// remote store is unreachable the id is synthesized locally; such ids are
// never reused or reconciled once the remote store comes back.
func (g *Gateway) Add(ctx context.Context, collection string, e record.Entity) (string, bool, error) {
	if !record.ValidCollection(collection) {
		return "", false, fmt.Errorf("%w: %q", ErrInvalidCollection, collection)
	}

	record.Stamp(e, g.owner.OwnerID(), time.Now())

	doc, err := json.Marshal(e)
	if err != nil {
		return "", false, fmt.Errorf("failed to encode entity: %w", err)
	}

	var id string
	remoteOK := false
	if g.remote != nil {
		id, err = g.remote.Add(ctx, collection, doc)
		if err != nil {
			g.logger.Debug("remote add failed, synthesizing local id", "collection", collection, "error", err)
		} else {
			remoteOK = true
		}
	}
	if id == "" {
		id = localID()
	}

	e.Record().ID = id
	doc, err = json.Marshal(e)
	if err != nil {
		return "", false, fmt.Errorf("failed to encode entity: %w", err)
	}

	if err := g.local.Put(context.WithoutCancel(ctx), collection, id, doc); err != nil {
		return id, remoteOK, fmt.Errorf("failed to write fallback store: %w", err)
	}
	return id, remoteOK, nil
}

// localID synthesizes a document id while the remote store is
// unreachable. The monotonic-clock prefix keeps local ids sortable; the
// uuid suffix keeps them collision-free across restarts.
func localID() string {
	return fmt.Sprintf("local-%d-%s", time.Now().UnixNano(), uuid.NewString()[:8])
}

// List loads every record of the current owner into out, which must be a
// pointer to a slice. Results are sorted by updatedAt descending with
// createdAt as tiebreak; sorting always happens here, never in the
// remote store.
func (g *Gateway) List(ctx context.Context, collection string, out any) error {
	if !record.ValidCollection(collection) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, collection)
	}

	ownerID := g.owner.OwnerID()
	docs, err := g.listDocs(ctx, collection, ownerID)
	if err != nil {
		return err
	}

	type sortable struct {
		meta record.Meta
		doc  json.RawMessage
	}
	items := make([]sortable, 0, len(docs))
	for _, doc := range docs {
		var meta record.Meta
		if err := json.Unmarshal(doc, &meta); err != nil {
			g.logger.Warn("skipping undecodable document", "collection", collection, "error", err)
			continue
		}
		if meta.OwnerID != ownerID {
			continue
		}
		items = append(items, sortable{meta: meta, doc: doc})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return record.MoreRecent(items[i].meta, items[j].meta)
	})

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(item.doc)
	}
	buf.WriteByte(']')

	if err := json.Unmarshal(buf.Bytes(), out); err != nil {
		return fmt.Errorf("failed to decode documents: %w", err)
	}
	return nil
}

func (g *Gateway) listDocs(ctx context.Context, collection, ownerID string) ([]json.RawMessage, error) {
	if g.remote != nil {
		docs, err := g.remote.ListOwned(ctx, collection, ownerID)
		if err == nil {
			return docs, nil
		}
		g.logger.Debug("remote list failed, serving fallback", "collection", collection, "error", err)
	}

	docs, err := g.local.ListCollection(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list fallback store: %w", err)
	}
	return docs, nil
}

// Delete removes a record from both stores. Deleting an absent id is a
// no-op success, and a remote failure never surfaces: the local delete
// keeps offline sessions consistent.
func (g *Gateway) Delete(ctx context.Context, collection, id string) error {
	if !record.ValidCollection(collection) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, collection)
	}
	if id == "" {
		return ErrInvalidID
	}

	if g.remote != nil {
		if err := g.remote.Delete(ctx, collection, id); err != nil {
			g.logger.Debug("remote delete failed", "collection", collection, "id", id, "error", err)
		}
	}

	if err := g.local.Delete(context.WithoutCancel(ctx), collection, id); err != nil {
		return fmt.Errorf("failed to delete from fallback store: %w", err)
	}
	return nil
}

// SaveOrCreate is the idiom every feature module uses: entities with an
// id are written under it (update, or create-with-fixed-id when the id
// was issued by a counter); entities without one go through Add.
func (g *Gateway) SaveOrCreate(ctx context.Context, collection string, e record.Entity) (string, bool, error) {
	id := e.Record().ID
	if id == "" {
		return g.Add(ctx, collection, e)
	}

	var probe record.Meta
	found, err := g.Get(ctx, collection, id, &probe)
	if err != nil {
		return "", false, err
	}
	if found {
		// Update path: keep the original creation time even when the
		// caller's copy lost it.
		if e.Record().CreatedAt.IsZero() {
			e.Record().CreatedAt = probe.CreatedAt
		}
	}

	remoteOK, err := g.Put(ctx, collection, id, e)
	return id, remoteOK, err
}

func docOwner(doc json.RawMessage) string {
	var probe struct {
		OwnerID string `json:"ownerId"`
	}
	if err := json.Unmarshal(doc, &probe); err != nil {
		return ""
	}
	return probe.OwnerID
}
