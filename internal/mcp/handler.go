package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/lifehubapp/lifehub/internal/domain/calendar"
	"github.com/lifehubapp/lifehub/internal/domain/goal"
	"github.com/lifehubapp/lifehub/internal/domain/habit"
	"github.com/lifehubapp/lifehub/internal/domain/pomodoro"
	"github.com/lifehubapp/lifehub/internal/domain/project"
	"github.com/lifehubapp/lifehub/internal/domain/wallet"
	"github.com/lifehubapp/lifehub/internal/identity"
)

// AuthService defines identity operations needed by MCP.
type AuthService interface {
	SignIn(ctx context.Context, token string) error
	SignOut(ctx context.Context) error
	State() identity.State
	OwnerID() string
}

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Projects() []*project.Project
	Get(id string) (*project.Project, bool)
	AddProject(ctx context.Context, req project.AddProjectRequest) (*project.Project, error)
	EditProject(ctx context.Context, id string, req project.EditProjectRequest) (*project.Project, error)
	DeleteProject(ctx context.Context, id string) error
	AddTask(ctx context.Context, projectID string, in project.TaskInput, parentTaskID *int64) (*project.Task, error)
	ToggleTask(ctx context.Context, projectID string, taskID int64, capture project.CompletionCapture) (*project.Task, error)
	DeleteTask(ctx context.Context, projectID string, taskID int64) error
}

// PomodoroService defines pomodoro operations needed by MCP.
type PomodoroService interface {
	Sessions() []pomodoro.Session
	LogSession(ctx context.Context, name string, typ pomodoro.SessionType, duration int) (*pomodoro.Session, error)
	Settings(ctx context.Context) (pomodoro.Settings, error)
	SaveSettings(ctx context.Context, settings pomodoro.Settings) error
}

// HabitService defines habit operations needed by MCP.
type HabitService interface {
	Habits() []*habit.Habit
	Add(ctx context.Context, name, description string) (*habit.Habit, error)
	MarkDone(ctx context.Context, id string, day time.Time) (*habit.Habit, error)
	UnmarkDone(ctx context.Context, id string, day time.Time) (*habit.Habit, error)
	Delete(ctx context.Context, id string) error
}

// WalletService defines wallet operations needed by MCP.
type WalletService interface {
	Transactions() []wallet.Transaction
	Add(ctx context.Context, amount float64, kind wallet.Kind, category, note string, occurredAt time.Time) (*wallet.Transaction, error)
	Delete(ctx context.Context, id string) error
	Balance() float64
	SpendingByCategory() map[string]float64
}

// GoalService defines goal operations needed by MCP.
type GoalService interface {
	Goals() []*goal.Goal
	Add(ctx context.Context, title, description string, targetDate *time.Time) (*goal.Goal, error)
	SetProgress(ctx context.Context, id string, progress int) (*goal.Goal, error)
	AddMilestone(ctx context.Context, id, name string) (*goal.Goal, error)
	Delete(ctx context.Context, id string) error
}

// CalendarService defines calendar operations needed by MCP.
type CalendarService interface {
	Events() []calendar.Event
	EventsOn(day time.Time) []calendar.Event
	Add(ctx context.Context, title string, startsAt, endsAt time.Time, allDay bool) (*calendar.Event, error)
	Delete(ctx context.Context, id string) error
}

// Handler implements the tool surface on top of the domain services.
type Handler struct {
	auth      AuthService
	projects  ProjectService
	pomodoros PomodoroService
	habits    HabitService
	wallet    WalletService
	goals     GoalService
	calendar  CalendarService
}

// NewHandler creates a new MCP handler.
func NewHandler(svcs Services) *Handler {
	return &Handler{
		auth:      svcs.Auth,
		projects:  svcs.Projects,
		pomodoros: svcs.Pomodoro,
		habits:    svcs.Habits,
		wallet:    svcs.Wallet,
		goals:     svcs.Goals,
		calendar:  svcs.Calendar,
	}
}

// Auth

func (h *Handler) SignIn(ctx context.Context, in SignInParams) (any, error) {
	if err := h.auth.SignIn(ctx, in.Token); err != nil {
		return nil, mapError(err)
	}
	return AuthStatusResponse{State: string(h.auth.State()), OwnerID: h.auth.OwnerID()}, nil
}

func (h *Handler) SignOut(ctx context.Context, _ EmptyParams) (any, error) {
	if err := h.auth.SignOut(ctx); err != nil {
		return nil, mapError(err)
	}
	return AuthStatusResponse{State: string(h.auth.State()), OwnerID: h.auth.OwnerID()}, nil
}

func (h *Handler) AuthStatus(_ context.Context, _ EmptyParams) (any, error) {
	return AuthStatusResponse{State: string(h.auth.State()), OwnerID: h.auth.OwnerID()}, nil
}

// Projects

func (h *Handler) ListProjects(_ context.Context, _ EmptyParams) (any, error) {
	projects := h.projects.Projects()
	resp := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		resp = append(resp, newProjectResponse(p))
	}
	return resp, nil
}

func (h *Handler) GetProject(_ context.Context, in GetProjectParams) (any, error) {
	p, ok := h.projects.Get(in.ID)
	if !ok {
		return nil, mapError(project.ErrProjectNotFound)
	}
	return newProjectResponse(p), nil
}

func (h *Handler) CreateProject(ctx context.Context, in CreateProjectParams) (any, error) {
	deadline, err := parseOptionalTime(in.Deadline)
	if err != nil {
		return nil, err
	}
	p, err := h.projects.AddProject(ctx, project.AddProjectRequest{
		Name:        in.Name,
		Description: in.Description,
		Deadline:    deadline,
		Client:      project.Client{Name: in.ClientName, Email: in.ClientEmail},
	})
	if err != nil {
		return nil, mapError(err)
	}
	return newProjectResponse(p), nil
}

func (h *Handler) EditProject(ctx context.Context, in EditProjectParams) (any, error) {
	req := project.EditProjectRequest{
		Name:        in.Name,
		Description: in.Description,
		Completed:   in.Completed,
	}
	deadline, err := parseOptionalTime(in.Deadline)
	if err != nil {
		return nil, err
	}
	req.Deadline = deadline
	if in.ClientName != nil || in.ClientEmail != nil {
		client := project.Client{}
		if in.ClientName != nil {
			client.Name = *in.ClientName
		}
		if in.ClientEmail != nil {
			client.Email = *in.ClientEmail
		}
		req.Client = &client
	}
	p, err := h.projects.EditProject(ctx, in.ID, req)
	if err != nil {
		return nil, mapError(err)
	}
	return newProjectResponse(p), nil
}

func (h *Handler) DeleteProject(ctx context.Context, in DeleteParams) (any, error) {
	if err := h.projects.DeleteProject(ctx, in.ID); err != nil {
		return nil, mapError(err)
	}
	return statusOK, nil
}

// Tasks

func (h *Handler) AddTask(ctx context.Context, in AddTaskParams) (any, error) {
	t, err := h.projects.AddTask(ctx, in.ProjectID, project.TaskInput{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
	}, in.ParentTaskID)
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

// ToggleTask flips completion. Completing requires the caller to supply
// the completion details up front; the capture workflow confirms with
// whatever arrived in the params.
func (h *Handler) ToggleTask(ctx context.Context, in ToggleTaskParams) (any, error) {
	capture := project.CaptureFunc(func(context.Context, *project.Task) (project.Completion, bool, error) {
		return project.Completion{HoursSpent: in.HoursSpent, Note: in.CompletionNote}, true, nil
	})
	t, err := h.projects.ToggleTask(ctx, in.ProjectID, in.TaskID, capture)
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

func (h *Handler) DeleteTask(ctx context.Context, in DeleteTaskParams) (any, error) {
	if err := h.projects.DeleteTask(ctx, in.ProjectID, in.TaskID); err != nil {
		return nil, mapError(err)
	}
	return statusOK, nil
}

// Pomodoro

func (h *Handler) LogPomodoro(ctx context.Context, in LogPomodoroParams) (any, error) {
	sess, err := h.pomodoros.LogSession(ctx, in.Name, pomodoro.SessionType(in.Type), in.Duration)
	if err != nil {
		return nil, mapError(err)
	}
	return sess, nil
}

func (h *Handler) ListPomodoros(_ context.Context, _ EmptyParams) (any, error) {
	return h.pomodoros.Sessions(), nil
}

func (h *Handler) GetPomodoroSettings(ctx context.Context, _ EmptyParams) (any, error) {
	settings, err := h.pomodoros.Settings(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return settings, nil
}

func (h *Handler) SavePomodoroSettings(ctx context.Context, in PomodoroSettingsParams) (any, error) {
	settings := pomodoro.Settings{
		FocusTime:   in.FocusTime,
		BreakTime:   in.BreakTime,
		SessionName: in.SessionName,
	}
	if err := h.pomodoros.SaveSettings(ctx, settings); err != nil {
		return nil, mapError(err)
	}
	return statusOK, nil
}

// Habits

func (h *Handler) ListHabits(_ context.Context, _ EmptyParams) (any, error) {
	habits := h.habits.Habits()
	resp := make([]HabitResponse, 0, len(habits))
	now := time.Now()
	for _, hb := range habits {
		resp = append(resp, newHabitResponse(hb, now))
	}
	return resp, nil
}

func (h *Handler) CreateHabit(ctx context.Context, in CreateHabitParams) (any, error) {
	hb, err := h.habits.Add(ctx, in.Name, in.Description)
	if err != nil {
		return nil, mapError(err)
	}
	return hb, nil
}

func (h *Handler) MarkHabitDone(ctx context.Context, in HabitDayParams) (any, error) {
	day, err := parseDay(in.Date)
	if err != nil {
		return nil, err
	}
	hb, err := h.habits.MarkDone(ctx, in.ID, day)
	if err != nil {
		return nil, mapError(err)
	}
	return newHabitResponse(hb, time.Now()), nil
}

func (h *Handler) UnmarkHabitDone(ctx context.Context, in HabitDayParams) (any, error) {
	day, err := parseDay(in.Date)
	if err != nil {
		return nil, err
	}
	hb, err := h.habits.UnmarkDone(ctx, in.ID, day)
	if err != nil {
		return nil, mapError(err)
	}
	return newHabitResponse(hb, time.Now()), nil
}

func (h *Handler) DeleteHabit(ctx context.Context, in DeleteParams) (any, error) {
	if err := h.habits.Delete(ctx, in.ID); err != nil {
		return nil, mapError(err)
	}
	return statusOK, nil
}

// Wallet

func (h *Handler) AddTransaction(ctx context.Context, in AddTransactionParams) (any, error) {
	occurredAt, err := parseOptionalTime(in.OccurredAt)
	if err != nil {
		return nil, err
	}
	var when time.Time
	if occurredAt != nil {
		when = *occurredAt
	}
	tx, err := h.wallet.Add(ctx, in.Amount, wallet.Kind(in.Kind), in.Category, in.Note, when)
	if err != nil {
		return nil, mapError(err)
	}
	return tx, nil
}

func (h *Handler) ListTransactions(_ context.Context, _ EmptyParams) (any, error) {
	return h.wallet.Transactions(), nil
}

func (h *Handler) WalletSummary(_ context.Context, _ EmptyParams) (any, error) {
	return WalletSummaryResponse{
		Balance:            h.wallet.Balance(),
		SpendingByCategory: h.wallet.SpendingByCategory(),
	}, nil
}

func (h *Handler) DeleteTransaction(ctx context.Context, in DeleteParams) (any, error) {
	if err := h.wallet.Delete(ctx, in.ID); err != nil {
		return nil, mapError(err)
	}
	return statusOK, nil
}

// Goals

func (h *Handler) ListGoals(_ context.Context, _ EmptyParams) (any, error) {
	return h.goals.Goals(), nil
}

func (h *Handler) CreateGoal(ctx context.Context, in CreateGoalParams) (any, error) {
	targetDate, err := parseOptionalTime(in.TargetDate)
	if err != nil {
		return nil, err
	}
	g, err := h.goals.Add(ctx, in.Title, in.Description, targetDate)
	if err != nil {
		return nil, mapError(err)
	}
	return g, nil
}

func (h *Handler) SetGoalProgress(ctx context.Context, in SetGoalProgressParams) (any, error) {
	g, err := h.goals.SetProgress(ctx, in.ID, in.Progress)
	if err != nil {
		return nil, mapError(err)
	}
	return g, nil
}

func (h *Handler) AddGoalMilestone(ctx context.Context, in AddGoalMilestoneParams) (any, error) {
	g, err := h.goals.AddMilestone(ctx, in.ID, in.Name)
	if err != nil {
		return nil, mapError(err)
	}
	return g, nil
}

func (h *Handler) DeleteGoal(ctx context.Context, in DeleteParams) (any, error) {
	if err := h.goals.Delete(ctx, in.ID); err != nil {
		return nil, mapError(err)
	}
	return statusOK, nil
}

// Calendar

func (h *Handler) ListEvents(_ context.Context, in ListEventsParams) (any, error) {
	if in.Date == "" {
		return h.calendar.Events(), nil
	}
	day, err := parseDay(in.Date)
	if err != nil {
		return nil, err
	}
	return h.calendar.EventsOn(day), nil
}

func (h *Handler) CreateEvent(ctx context.Context, in CreateEventParams) (any, error) {
	startsAt, err := time.Parse(time.RFC3339, in.StartsAt)
	if err != nil {
		return nil, &APIError{Code: "INVALID_INPUT", Message: fmt.Sprintf("invalid starts_at: %v", err)}
	}
	var endsAt time.Time
	if in.EndsAt != "" {
		endsAt, err = time.Parse(time.RFC3339, in.EndsAt)
		if err != nil {
			return nil, &APIError{Code: "INVALID_INPUT", Message: fmt.Sprintf("invalid ends_at: %v", err)}
		}
	}
	e, err := h.calendar.Add(ctx, in.Title, startsAt, endsAt, in.AllDay)
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

func (h *Handler) DeleteEvent(ctx context.Context, in DeleteParams) (any, error) {
	if err := h.calendar.Delete(ctx, in.ID); err != nil {
		return nil, mapError(err)
	}
	return statusOK, nil
}

var statusOK = map[string]string{"status": "ok"}

func newProjectResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{Project: p, Progress: project.Progress(p)}
}

func newHabitResponse(hb *habit.Habit, now time.Time) HabitResponse {
	return HabitResponse{Habit: hb, Streak: habit.Streak(hb, now), BestStreak: habit.BestStreak(hb)}
}

func parseOptionalTime(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil, &APIError{Code: "INVALID_INPUT", Message: fmt.Sprintf("invalid timestamp %q", *value)}
	}
	return &t, nil
}

func parseDay(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	day, err := time.Parse(habit.DateLayout, value)
	if err != nil {
		return time.Time{}, &APIError{Code: "INVALID_INPUT", Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value)}
	}
	return day, nil
}
