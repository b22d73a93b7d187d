package mcp_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lifehubapp/lifehub/internal/domain/calendar"
	"github.com/lifehubapp/lifehub/internal/domain/goal"
	"github.com/lifehubapp/lifehub/internal/domain/habit"
	"github.com/lifehubapp/lifehub/internal/domain/pomodoro"
	"github.com/lifehubapp/lifehub/internal/domain/project"
	"github.com/lifehubapp/lifehub/internal/domain/wallet"
	"github.com/lifehubapp/lifehub/internal/gateway"
	"github.com/lifehubapp/lifehub/internal/identity"
	"github.com/lifehubapp/lifehub/internal/local"
	"github.com/lifehubapp/lifehub/internal/mcp"
	"github.com/lifehubapp/lifehub/internal/remote"
)

type tokenVerifier struct{}

func (tokenVerifier) Verify(_ context.Context, token string) (string, error) {
	if token == "good-token" {
		return "uid-1", nil
	}
	return "", errors.New("token rejected")
}

func newHandler(t *testing.T) *mcp.Handler {
	t.Helper()

	store, err := local.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	var idc *identity.Context
	gw := gateway.New(remote.NewMemory(), store, gateway.OwnerFunc(func() string {
		return idc.OwnerID()
	}), nil)

	collections := []string{
		project.Collection, "projects_counters",
		pomodoro.SessionsCollection, pomodoro.SettingsCollection, pomodoro.StateCollection,
		habit.Collection, wallet.Collection, goal.Collection, calendar.Collection,
	}
	idc = identity.New(tokenVerifier{}, gw, collections, nil)

	counters := gateway.NewCounters(gw)
	projectSvc := project.NewService(gw, counters, nil)
	pomodoroSvc := pomodoro.NewService(gw, idc, nil)
	habitSvc := habit.NewService(gw, nil)
	walletSvc := wallet.NewService(gw, nil)
	goalSvc := goal.NewService(gw, nil)
	calendarSvc := calendar.NewService(gw, nil)

	idc.OnChange(projectSvc.Reload)
	idc.OnChange(pomodoroSvc.Reload)
	idc.OnChange(habitSvc.Reload)
	idc.OnChange(walletSvc.Reload)
	idc.OnChange(goalSvc.Reload)
	idc.OnChange(calendarSvc.Reload)

	require.NoError(t, idc.Bootstrap(context.Background()))

	return mcp.NewHandler(mcp.Services{
		Auth:     idc,
		Projects: projectSvc,
		Pomodoro: pomodoroSvc,
		Habits:   habitSvc,
		Wallet:   walletSvc,
		Goals:    goalSvc,
		Calendar: calendarSvc,
	})
}

func TestHandler_ProjectLifecycle(t *testing.T) {
	h := newHandler(t)
	ctx := context.Background()

	created, err := h.CreateProject(ctx, mcp.CreateProjectParams{
		Name:       "Website relaunch",
		ClientName: "ACME",
	})
	require.NoError(t, err)
	proj := created.(mcp.ProjectResponse)
	require.NotEmpty(t, proj.ID)
	require.Equal(t, int64(1), proj.Number)
	require.Equal(t, 0, proj.Progress)

	added, err := h.AddTask(ctx, mcp.AddTaskParams{
		ProjectID: proj.ID,
		Name:      "Design homepage",
		Price:     500,
	})
	require.NoError(t, err)
	task := added.(*project.Task)

	toggled, err := h.ToggleTask(ctx, mcp.ToggleTaskParams{
		ProjectID: proj.ID,
		TaskID:    task.ID,
	})
	require.NoError(t, err)
	require.True(t, toggled.(*project.Task).Completed)

	got, err := h.GetProject(ctx, mcp.GetProjectParams{ID: proj.ID})
	require.NoError(t, err)
	require.Equal(t, 100, got.(mcp.ProjectResponse).Progress)

	_, err = h.DeleteProject(ctx, mcp.DeleteParams{ID: proj.ID})
	require.NoError(t, err)

	_, err = h.GetProject(ctx, mcp.GetProjectParams{ID: proj.ID})
	var apiErr *mcp.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "PROJECT_NOT_FOUND", apiErr.Code)
}

func TestHandler_SignInMigratesAnonymousData(t *testing.T) {
	h := newHandler(t)
	ctx := context.Background()

	_, err := h.CreateHabit(ctx, mcp.CreateHabitParams{Name: "Read daily"})
	require.NoError(t, err)

	out, err := h.SignIn(ctx, mcp.SignInParams{Token: "good-token"})
	require.NoError(t, err)
	status := out.(mcp.AuthStatusResponse)
	require.Equal(t, string(identity.StateAuthenticated), status.State)
	require.Equal(t, "uid-1", status.OwnerID)

	// The habit created before sign-in followed the user.
	listed, err := h.ListHabits(ctx, mcp.EmptyParams{})
	require.NoError(t, err)
	habits := listed.([]mcp.HabitResponse)
	require.Len(t, habits, 1)
	require.Equal(t, "uid-1", habits[0].OwnerID)

	_, err = h.SignOut(ctx, mcp.EmptyParams{})
	require.NoError(t, err)

	listed, err = h.ListHabits(ctx, mcp.EmptyParams{})
	require.NoError(t, err)
	require.Empty(t, listed.([]mcp.HabitResponse))
}

func TestHandler_SignInRejectsBadToken(t *testing.T) {
	h := newHandler(t)

	_, err := h.SignIn(context.Background(), mcp.SignInParams{Token: "bad"})
	var apiErr *mcp.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
}

func TestHandler_WalletSummary(t *testing.T) {
	h := newHandler(t)
	ctx := context.Background()

	_, err := h.AddTransaction(ctx, mcp.AddTransactionParams{Amount: 1000, Kind: "income", Category: "salary"})
	require.NoError(t, err)
	_, err = h.AddTransaction(ctx, mcp.AddTransactionParams{Amount: 250, Kind: "expense", Category: "rent"})
	require.NoError(t, err)

	out, err := h.WalletSummary(ctx, mcp.EmptyParams{})
	require.NoError(t, err)
	summary := out.(mcp.WalletSummaryResponse)
	require.InDelta(t, 750, summary.Balance, 0.001)
	require.InDelta(t, 250, summary.SpendingByCategory["rent"], 0.001)
}

func TestHandler_InvalidTimestamps(t *testing.T) {
	h := newHandler(t)
	ctx := context.Background()

	_, err := h.CreateProject(ctx, mcp.CreateProjectParams{Name: "X", Deadline: ptr("not-a-date")})
	var apiErr *mcp.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "INVALID_INPUT", apiErr.Code)

	_, err = h.MarkHabitDone(ctx, mcp.HabitDayParams{ID: "h1", Date: "03/10/2026"})
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "INVALID_INPUT", apiErr.Code)
}

func ptr[T any](v T) *T { return &v }
