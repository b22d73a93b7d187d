package mcp

import (
	"github.com/lifehubapp/lifehub/internal/domain/habit"
	"github.com/lifehubapp/lifehub/internal/domain/project"
)

// EmptyParams is used by tools that take no arguments.
type EmptyParams struct{}

// SignInParams carries the credential for auth_sign_in.
type SignInParams struct {
	Token string `json:"token"`
}

// AuthStatusResponse reports the identity state after an auth operation.
type AuthStatusResponse struct {
	State   string `json:"state"`
	OwnerID string `json:"owner_id"`
}

// GetProjectParams identifies a project.
type GetProjectParams struct {
	ID string `json:"id"`
}

// CreateProjectParams defines create_project arguments.
type CreateProjectParams struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Deadline    *string `json:"deadline,omitempty"`
	ClientName  string  `json:"client_name,omitempty"`
	ClientEmail string  `json:"client_email,omitempty"`
}

// EditProjectParams defines edit_project arguments. Omitted fields are
// left untouched.
type EditProjectParams struct {
	ID          string  `json:"id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Deadline    *string `json:"deadline,omitempty"`
	ClientName  *string `json:"client_name,omitempty"`
	ClientEmail *string `json:"client_email,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// DeleteParams identifies a record for deletion.
type DeleteParams struct {
	ID string `json:"id"`
}

// AddTaskParams defines add_task arguments.
type AddTaskParams struct {
	ProjectID    string  `json:"project_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Price        float64 `json:"price,omitempty"`
	ParentTaskID *int64  `json:"parent_task_id,omitempty"`
}

// ToggleTaskParams defines toggle_task arguments. The completion fields
// only matter when the toggle completes the task.
type ToggleTaskParams struct {
	ProjectID      string   `json:"project_id"`
	TaskID         int64    `json:"task_id"`
	HoursSpent     *float64 `json:"hours_spent,omitempty"`
	CompletionNote *string  `json:"completion_note,omitempty"`
}

// DeleteTaskParams identifies a task within a project.
type DeleteTaskParams struct {
	ProjectID string `json:"project_id"`
	TaskID    int64  `json:"task_id"`
}

// ProjectResponse is a project with its computed progress.
type ProjectResponse struct {
	*project.Project
	Progress int `json:"progress"`
}

// LogPomodoroParams defines log_pomodoro arguments.
type LogPomodoroParams struct {
	Name     string `json:"name,omitempty"`
	Type     string `json:"type"`
	Duration int    `json:"duration"`
}

// PomodoroSettingsParams defines save_pomodoro_settings arguments.
type PomodoroSettingsParams struct {
	FocusTime   int    `json:"focus_time"`
	BreakTime   int    `json:"break_time"`
	SessionName string `json:"session_name,omitempty"`
}

// CreateHabitParams defines create_habit arguments.
type CreateHabitParams struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// HabitDayParams identifies a habit and an optional day.
type HabitDayParams struct {
	ID   string `json:"id"`
	Date string `json:"date,omitempty"`
}

// HabitResponse is a habit with its computed streaks.
type HabitResponse struct {
	*habit.Habit
	Streak     int `json:"streak"`
	BestStreak int `json:"best_streak"`
}

// AddTransactionParams defines add_transaction arguments.
type AddTransactionParams struct {
	Amount     float64 `json:"amount"`
	Kind       string  `json:"kind"`
	Category   string  `json:"category,omitempty"`
	Note       string  `json:"note,omitempty"`
	OccurredAt *string `json:"occurred_at,omitempty"`
}

// WalletSummaryResponse aggregates the cached transactions.
type WalletSummaryResponse struct {
	Balance            float64            `json:"balance"`
	SpendingByCategory map[string]float64 `json:"spending_by_category"`
}

// CreateGoalParams defines create_goal arguments.
type CreateGoalParams struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	TargetDate  *string `json:"target_date,omitempty"`
}

// SetGoalProgressParams defines set_goal_progress arguments.
type SetGoalProgressParams struct {
	ID       string `json:"id"`
	Progress int    `json:"progress"`
}

// AddGoalMilestoneParams defines add_goal_milestone arguments.
type AddGoalMilestoneParams struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListEventsParams filters list_events by an optional day.
type ListEventsParams struct {
	Date string `json:"date,omitempty"`
}

// CreateEventParams defines create_event arguments.
type CreateEventParams struct {
	Title    string `json:"title"`
	StartsAt string `json:"starts_at"`
	EndsAt   string `json:"ends_at,omitempty"`
	AllDay   bool   `json:"all_day,omitempty"`
}
