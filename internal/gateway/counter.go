package gateway

import (
	"context"
	"fmt"

	"github.com/lifehubapp/lifehub/internal/record"
)

// counterDoc is the per-owner singleton holding the next numeric id for
// each field of an entity family. It is keyed by the owner id, which
// makes it per-owner unique without a query.
type counterDoc struct {
	record.Meta
	Next map[string]int64 `json:"next"`
}

// Counters issues monotonically increasing numeric ids for entities that
// live inside documents rather than as documents (tasks inside a project
// tree). Document ids themselves are always store-issued strings; the
// two id spaces never mix.
//
// The read-modify-write here is not protected against concurrent
// callers. The application has one logical caller per owner, which makes
// that tolerable; a multi-writer deployment would need a transactional
// increment at the remote store.
type Counters struct {
	g *Gateway
}

// NewCounters creates a counter source over the gateway.
func NewCounters(g *Gateway) *Counters {
	return &Counters{g: g}
}

// Next returns the next id for field within family and advances the
// counter. Counters start at 1.
func (c *Counters) Next(ctx context.Context, family, field string) (int64, error) {
	collection := family + "_counters"
	ownerID := c.g.owner.OwnerID()

	var doc counterDoc
	found, err := c.g.Get(ctx, collection, ownerID, &doc)
	if err != nil {
		return 0, fmt.Errorf("loading counter: %w", err)
	}
	if !found || doc.Next == nil {
		doc = counterDoc{Next: make(map[string]int64)}
	}

	next := doc.Next[field]
	if next < 1 {
		next = 1
	}
	doc.Next[field] = next + 1

	if _, err := c.g.Put(ctx, collection, ownerID, &doc); err != nil {
		return 0, fmt.Errorf("saving counter: %w", err)
	}
	return next, nil
}

// NextProjectID issues the next project number.
func (c *Counters) NextProjectID(ctx context.Context) (int64, error) {
	return c.Next(ctx, "projects", "projectId")
}

// NextTaskID issues the next task number.
func (c *Counters) NextTaskID(ctx context.Context) (int64, error) {
	return c.Next(ctx, "projects", "taskId")
}
