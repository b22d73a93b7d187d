package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// FailedRecord identifies one record that could not be re-owned.
type FailedRecord struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

// MigrationError reports a partial ownership migration. The records
// listed remain under the old owner; callers retry or report them. There
// is no rollback.
type MigrationError struct {
	Failures []FailedRecord
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("ownership migration incomplete: %d records failed", len(e.Failures))
}

// MigrateOwnership re-stamps every record owned by fromOwner with
// toOwner, in place, across the given collections. Records keyed by the
// owner id itself (counters, per-owner singletons) are rewritten under
// the new owner's key and the old document is removed, so lookups keep
// working after the transition.
//
// Unlike Put, a record is re-stamped locally only after the remote
// accepts the new owner: when the remote is unreachable the record stays
// under the old owner in both stores, so a retry finds it and the two
// stores never disagree about who owns it.
func (g *Gateway) MigrateOwnership(ctx context.Context, fromOwner, toOwner string, collections []string) error {
	if fromOwner == toOwner || fromOwner == "" || toOwner == "" {
		return nil
	}

	var failures []FailedRecord
	for _, collection := range collections {
		docs, err := g.listDocs(ctx, collection, fromOwner)
		if err != nil {
			g.logger.Warn("migration could not list collection", "collection", collection, "error", err)
			failures = append(failures, FailedRecord{Collection: collection})
			continue
		}

		for _, doc := range docs {
			id, err := g.migrateDoc(ctx, collection, doc, fromOwner, toOwner)
			if err != nil {
				g.logger.Warn("migration failed for record", "collection", collection, "id", id, "error", err)
				failures = append(failures, FailedRecord{Collection: collection, ID: id})
			}
		}
	}

	if len(failures) > 0 {
		return &MigrationError{Failures: failures}
	}
	return nil
}

func (g *Gateway) migrateDoc(ctx context.Context, collection string, doc json.RawMessage, fromOwner, toOwner string) (string, error) {
	var data map[string]any
	if err := json.Unmarshal(doc, &data); err != nil {
		return "", fmt.Errorf("failed to decode document: %w", err)
	}

	id, _ := data["id"].(string)
	if id == "" {
		return "", fmt.Errorf("document has no id")
	}
	if owner, _ := data["ownerId"].(string); owner != fromOwner {
		return id, nil
	}

	newID := id
	if id == fromOwner {
		newID = toOwner
		data["id"] = toOwner
	}

	data["ownerId"] = toOwner
	data["updatedAt"] = time.Now().UTC().Format(time.RFC3339Nano)

	rewritten, err := json.Marshal(data)
	if err != nil {
		return id, fmt.Errorf("failed to encode document: %w", err)
	}

	if g.remote != nil {
		if err := g.remote.Set(ctx, collection, newID, rewritten); err != nil {
			return id, fmt.Errorf("remote write failed: %w", err)
		}
	}
	if err := g.local.Put(context.WithoutCancel(ctx), collection, newID, rewritten); err != nil {
		return id, fmt.Errorf("fallback write failed: %w", err)
	}

	if newID != id {
		if g.remote != nil {
			if err := g.remote.Delete(ctx, collection, id); err != nil {
				return id, fmt.Errorf("removing old singleton: %w", err)
			}
		}
		if err := g.local.Delete(context.WithoutCancel(ctx), collection, id); err != nil {
			return id, fmt.Errorf("removing old singleton locally: %w", err)
		}
	}

	return id, nil
}
