package goal_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lifehubapp/lifehub/internal/domain/goal"
	"github.com/lifehubapp/lifehub/internal/gateway"
	"github.com/lifehubapp/lifehub/internal/local"
	"github.com/lifehubapp/lifehub/internal/remote"
)

type owner struct {
	id string
}

func (o *owner) OwnerID() string { return o.id }

func newService(t *testing.T) *goal.Service {
	t.Helper()

	store, err := local.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	g := gateway.New(remote.NewMemory(), store, &owner{id: "anonymous"}, nil)
	return goal.NewService(g, nil)
}

func TestService_AddAndProgress(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	g, err := svc.Add(ctx, "Learn Go", "ship a real project", nil)
	require.NoError(t, err)
	require.NotEmpty(t, g.ID)
	require.Equal(t, 0, g.Progress)

	g, err = svc.SetProgress(ctx, g.ID, 150)
	require.NoError(t, err)
	require.Equal(t, 100, g.Progress, "progress is clamped")

	g, err = svc.SetProgress(ctx, g.ID, -5)
	require.NoError(t, err)
	require.Equal(t, 0, g.Progress)
}

func TestService_Milestones(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	g, err := svc.Add(ctx, "Run a marathon", "", nil)
	require.NoError(t, err)

	g, err = svc.AddMilestone(ctx, g.ID, "10k race")
	require.NoError(t, err)
	require.Len(t, g.Milestones, 1)
	require.False(t, g.Milestones[0].Done)

	_, err = svc.AddMilestone(ctx, g.ID, "")
	require.ErrorIs(t, err, goal.ErrInvalidInput)

	_, err = svc.AddMilestone(ctx, "404", "x")
	require.ErrorIs(t, err, goal.ErrGoalNotFound)
}

func TestService_Delete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	g, err := svc.Add(ctx, "Doomed", "", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, g.ID))
	require.Empty(t, svc.Goals())
}
