package integration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lifehubapp/lifehub/internal/domain/habit"
	"github.com/lifehubapp/lifehub/internal/domain/pomodoro"
	"github.com/lifehubapp/lifehub/internal/domain/project"
	"github.com/lifehubapp/lifehub/internal/gateway"
	"github.com/lifehubapp/lifehub/internal/identity"
	"github.com/lifehubapp/lifehub/internal/local"
	"github.com/lifehubapp/lifehub/internal/remote"
)

type testEnv struct {
	remote *remote.Memory
	local  *local.Store
	idc    *identity.Context

	projectSvc  *project.Service
	habitSvc    *habit.Service
	pomodoroSvc *pomodoro.Service
}

type staticVerifier struct {
	uid string
}

func (v staticVerifier) Verify(context.Context, string) (string, error) {
	return v.uid, nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := local.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	mem := remote.NewMemory()

	var idc *identity.Context
	gw := gateway.New(mem, store, gateway.OwnerFunc(func() string {
		return idc.OwnerID()
	}), nil)

	collections := []string{
		project.Collection, "projects_counters",
		pomodoro.SessionsCollection, pomodoro.SettingsCollection, pomodoro.StateCollection,
		habit.Collection,
	}
	idc = identity.New(staticVerifier{uid: "uid-1"}, gw, collections, nil)

	projectSvc := project.NewService(gw, gateway.NewCounters(gw), nil)
	habitSvc := habit.NewService(gw, nil)
	pomodoroSvc := pomodoro.NewService(gw, idc, nil)

	idc.OnChange(projectSvc.Reload)
	idc.OnChange(habitSvc.Reload)
	idc.OnChange(pomodoroSvc.Reload)

	require.NoError(t, idc.Bootstrap(context.Background()))

	return &testEnv{
		remote:      mem,
		local:       store,
		idc:         idc,
		projectSvc:  projectSvc,
		habitSvc:    habitSvc,
		pomodoroSvc: pomodoroSvc,
	}
}

func confirmCompletion(hours float64, note string) project.CompletionCapture {
	return project.CaptureFunc(func(context.Context, *project.Task) (project.Completion, bool, error) {
		return project.Completion{HoursSpent: &hours, Note: &note}, true, nil
	})
}

func TestIntegration_OfflineFirstWorkflow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	// The backend is down from the start; every operation still works.
	env.remote.SetFailing(true)

	proj, err := env.projectSvc.AddProject(ctx, project.AddProjectRequest{Name: "Offline work"})
	require.NoError(t, err)
	require.NotEmpty(t, proj.ID)
	require.Equal(t, int64(1), proj.Number)

	task, err := env.projectSvc.AddTask(ctx, proj.ID, project.TaskInput{Name: "Draft", Price: 100}, nil)
	require.NoError(t, err)

	_, err = env.projectSvc.ToggleTask(ctx, proj.ID, task.ID, confirmCompletion(2, "done offline"))
	require.NoError(t, err)

	// A fresh load while still offline is served by the fallback store.
	require.NoError(t, env.projectSvc.Reload(ctx, env.idc.OwnerID()))
	reloaded, ok := env.projectSvc.Get(proj.ID)
	require.True(t, ok)
	require.Equal(t, 100, project.Progress(reloaded))

	// Once the backend recovers, new writes reach it.
	env.remote.SetFailing(false)
	_, err = env.projectSvc.EditProject(ctx, proj.ID, project.EditProjectRequest{Completed: boolPtr(true)})
	require.NoError(t, err)

	doc, err := env.remote.Get(ctx, project.Collection, proj.ID)
	require.NoError(t, err)
	require.NotEmpty(t, doc)
}

func TestIntegration_SignInCarriesDataAndCounters(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.projectSvc.AddProject(ctx, project.AddProjectRequest{Name: "Anonymous project"})
	require.NoError(t, err)
	_, err = env.habitSvc.Add(ctx, "Stretch", "")
	require.NoError(t, err)

	require.NoError(t, env.idc.SignIn(ctx, "token"))
	require.Equal(t, "uid-1", env.idc.OwnerID())

	// Records created before sign-in followed the user.
	require.Len(t, env.projectSvc.Projects(), 1)
	require.Len(t, env.habitSvc.Habits(), 1)

	// The number counter followed too, so numbering continues instead of
	// restarting at 1.
	proj, err := env.projectSvc.AddProject(ctx, project.AddProjectRequest{Name: "Authenticated project"})
	require.NoError(t, err)
	require.Equal(t, int64(2), proj.Number)
}

func TestIntegration_SignOutThenCreateDoesNotClobber(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	first, err := env.projectSvc.AddProject(ctx, project.AddProjectRequest{Name: "First draft"})
	require.NoError(t, err)
	require.NoError(t, env.idc.SignIn(ctx, "token"))

	// Back to anonymous: the counter restarts at 1, but the new project
	// must get its own document, not the one migrated to the user.
	require.NoError(t, env.idc.SignOut(ctx))
	second, err := env.projectSvc.AddProject(ctx, project.AddProjectRequest{Name: "Second draft"})
	require.NoError(t, err)
	require.Equal(t, int64(1), second.Number)
	require.NotEqual(t, first.ID, second.ID)

	// Signing in again brings the second project along; the first is
	// still there, untouched.
	require.NoError(t, env.idc.SignIn(ctx, "token"))
	projects := env.projectSvc.Projects()
	require.Len(t, projects, 2)

	names := map[string]string{}
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	require.Equal(t, "First draft", names[first.ID])
	require.Equal(t, "Second draft", names[second.ID])
}

func TestIntegration_SignOutRestoresAnonymousView(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	require.NoError(t, env.idc.SignIn(ctx, "token"))

	_, err := env.habitSvc.Add(ctx, "Private habit", "")
	require.NoError(t, err)
	require.NoError(t, env.pomodoroSvc.SaveSettings(ctx, pomodoro.Settings{FocusTime: 50 * 60, BreakTime: 10 * 60}))

	require.NoError(t, env.idc.SignOut(ctx))
	require.Equal(t, identity.AnonymousOwner, env.idc.OwnerID())

	// Authenticated records stay in storage but out of the anonymous view.
	require.Empty(t, env.habitSvc.Habits())

	settings, err := env.pomodoroSvc.Settings(ctx)
	require.NoError(t, err)
	require.Equal(t, pomodoro.DefaultSettings().FocusTime, settings.FocusTime)
}

func boolPtr(v bool) *bool { return &v }
