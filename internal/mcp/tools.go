package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// addTool registers one handler method as an SDK tool. The input schema
// is inferred from the In struct.
func addTool[In any](server *sdkmcp.Server, name, description string, fn func(ctx context.Context, in In) (any, error)) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        name,
		Description: description,
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
		out, err := fn(ctx, in)
		if err != nil {
			return nil, nil, err
		}
		return nil, out, nil
	})
}

func registerTools(server *sdkmcp.Server, h *Handler) {
	// Auth
	addTool(server, "auth_sign_in", "Sign in with an ID token. Anonymous records migrate to the signed-in user.", h.SignIn)
	addTool(server, "auth_sign_out", "Sign out and return to the anonymous identity", h.SignOut)
	addTool(server, "auth_status", "Report the current identity state and owner id", h.AuthStatus)

	// Projects and tasks
	addTool(server, "list_projects", "List all projects with their completion progress", h.ListProjects)
	addTool(server, "get_project", "Get one project including its full task tree", h.GetProject)
	addTool(server, "create_project", "Create a new project", h.CreateProject)
	addTool(server, "edit_project", "Update project fields; omitted fields are left untouched", h.EditProject)
	addTool(server, "delete_project", "Delete a project and its whole task tree", h.DeleteProject)
	addTool(server, "add_task", "Add a task to a project, optionally under a parent task", h.AddTask)
	addTool(server, "toggle_task", "Flip a task's completion. Completing cascades to every subtask.", h.ToggleTask)
	addTool(server, "delete_task", "Delete a task and its subtasks", h.DeleteTask)

	// Pomodoro
	addTool(server, "log_pomodoro", "Record a completed focus or break session", h.LogPomodoro)
	addTool(server, "list_pomodoros", "List recorded pomodoro sessions", h.ListPomodoros)
	addTool(server, "get_pomodoro_settings", "Get timer preferences for the current identity", h.GetPomodoroSettings)
	addTool(server, "save_pomodoro_settings", "Save timer preferences for the current identity", h.SavePomodoroSettings)

	// Habits
	addTool(server, "list_habits", "List habits with their current streaks", h.ListHabits)
	addTool(server, "create_habit", "Create a habit to track daily", h.CreateHabit)
	addTool(server, "mark_habit_done", "Mark a habit done for a day (default today)", h.MarkHabitDone)
	addTool(server, "unmark_habit_done", "Remove a habit completion for a day (default today)", h.UnmarkHabitDone)
	addTool(server, "delete_habit", "Delete a habit and its history", h.DeleteHabit)

	// Wallet
	addTool(server, "add_transaction", "Record an income or expense", h.AddTransaction)
	addTool(server, "list_transactions", "List wallet transactions, most recent first", h.ListTransactions)
	addTool(server, "get_wallet_summary", "Get the balance and per-category spending totals", h.WalletSummary)
	addTool(server, "delete_transaction", "Delete a transaction", h.DeleteTransaction)

	// Goals
	addTool(server, "list_goals", "List long-term goals", h.ListGoals)
	addTool(server, "create_goal", "Create a goal", h.CreateGoal)
	addTool(server, "set_goal_progress", "Set a goal's progress percentage (clamped to 0-100)", h.SetGoalProgress)
	addTool(server, "add_goal_milestone", "Append a milestone to a goal", h.AddGoalMilestone)
	addTool(server, "delete_goal", "Delete a goal", h.DeleteGoal)

	// Calendar
	addTool(server, "list_events", "List calendar events, optionally for a single day", h.ListEvents)
	addTool(server, "create_event", "Create a calendar event", h.CreateEvent)
	addTool(server, "delete_event", "Delete a calendar event", h.DeleteEvent)
}
