package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lifehubapp/lifehub/internal/gateway"
	"github.com/lifehubapp/lifehub/internal/local"
	"github.com/lifehubapp/lifehub/internal/remote"
)

func TestMigrateOwnership_MovesAllRecords(t *testing.T) {
	g, _, owner := newTestGateway(t, "anonymous")
	ctx := context.Background()

	for _, id := range []string{"p1", "p2", "p3"} {
		_, err := g.Put(ctx, "projects", id, &note{Name: id})
		require.NoError(t, err)
	}

	err := g.MigrateOwnership(ctx, "anonymous", "alice", []string{"projects"})
	require.NoError(t, err)

	owner.id = "alice"
	var mine []note
	require.NoError(t, g.List(ctx, "projects", &mine))
	require.Len(t, mine, 3)

	owner.id = "anonymous"
	var leftovers []note
	require.NoError(t, g.List(ctx, "projects", &leftovers))
	require.Empty(t, leftovers)
}

func TestMigrateOwnership_RekeysOwnerSingletons(t *testing.T) {
	g, _, owner := newTestGateway(t, "anonymous")
	counters := gateway.NewCounters(g)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := counters.NextTaskID(ctx)
		require.NoError(t, err)
	}

	err := g.MigrateOwnership(ctx, "anonymous", "alice", []string{"projects_counters"})
	require.NoError(t, err)

	// The sequence continues under the new identity instead of restarting.
	owner.id = "alice"
	got, err := counters.NextTaskID(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(4), got)
}

func TestMigrateOwnership_NoopCases(t *testing.T) {
	g, _, _ := newTestGateway(t, "anonymous")
	ctx := context.Background()

	require.NoError(t, g.MigrateOwnership(ctx, "anonymous", "anonymous", []string{"projects"}))
	require.NoError(t, g.MigrateOwnership(ctx, "", "alice", []string{"projects"}))
	require.NoError(t, g.MigrateOwnership(ctx, "anonymous", "alice", []string{"projects"}))
}

// failingSet fails remote writes for one document id, leaving the rest of
// the store healthy.
type failingSet struct {
	*remote.Memory
	failID string
}

func (f *failingSet) Set(ctx context.Context, collection, id string, doc json.RawMessage) error {
	if id == f.failID {
		return errors.New("simulated write failure")
	}
	return f.Memory.Set(ctx, collection, id, doc)
}

func TestMigrateOwnership_PartialFailure(t *testing.T) {
	store, err := local.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	mem := remote.NewMemory()
	owner := &staticOwner{id: "anonymous"}
	g := gateway.New(&failingSet{Memory: mem, failID: "p2"}, store, owner, nil)
	ctx := context.Background()

	for _, id := range []string{"p1", "p2", "p3"} {
		seed, merr := json.Marshal(map[string]any{"id": id, "ownerId": "anonymous", "name": id})
		require.NoError(t, merr)
		require.NoError(t, mem.Set(ctx, "projects", id, seed))
	}

	err = g.MigrateOwnership(ctx, "anonymous", "alice", []string{"projects"})

	var migErr *gateway.MigrationError
	require.ErrorAs(t, err, &migErr)
	require.Len(t, migErr.Failures, 1)
	require.Equal(t, "projects", migErr.Failures[0].Collection)
	require.Equal(t, "p2", migErr.Failures[0].ID)

	// The failed record is still owned by the old identity for retry.
	owner.id = "alice"
	var migrated []note
	require.NoError(t, g.List(ctx, "projects", &migrated))
	require.Len(t, migrated, 2)
}
