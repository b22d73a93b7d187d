package mcp

import (
	"errors"
	"fmt"

	"github.com/lifehubapp/lifehub/internal/domain/calendar"
	"github.com/lifehubapp/lifehub/internal/domain/goal"
	"github.com/lifehubapp/lifehub/internal/domain/habit"
	"github.com/lifehubapp/lifehub/internal/domain/pomodoro"
	"github.com/lifehubapp/lifehub/internal/domain/project"
	"github.com/lifehubapp/lifehub/internal/domain/wallet"
	"github.com/lifehubapp/lifehub/internal/gateway"
	"github.com/lifehubapp/lifehub/internal/identity"
	"github.com/lifehubapp/lifehub/internal/remote"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors pass
// through unmapped.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects for valid ids"}
	case errors.Is(err, project.ErrTaskNotFound):
		return &APIError{Code: "TASK_NOT_FOUND", Message: "task not found", RecoveryHint: "Check the task id against get_project"}
	case errors.Is(err, project.ErrParentTaskNotFound):
		return &APIError{Code: "PARENT_TASK_NOT_FOUND", Message: "parent task not found", RecoveryHint: "Check parent_task_id against get_project"}
	case errors.Is(err, project.ErrNegativePrice):
		return &APIError{Code: "INVALID_INPUT", Message: "task price cannot be negative"}
	case errors.Is(err, project.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, habit.ErrHabitNotFound):
		return &APIError{Code: "HABIT_NOT_FOUND", Message: "habit not found", RecoveryHint: "Call list_habits for valid ids"}
	case errors.Is(err, habit.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, goal.ErrGoalNotFound):
		return &APIError{Code: "GOAL_NOT_FOUND", Message: "goal not found", RecoveryHint: "Call list_goals for valid ids"}
	case errors.Is(err, goal.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, calendar.ErrEventNotFound):
		return &APIError{Code: "EVENT_NOT_FOUND", Message: "event not found"}
	case errors.Is(err, calendar.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, wallet.ErrInvalidTransaction):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, pomodoro.ErrInvalidSession):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, identity.ErrInvalidCredentials):
		return &APIError{Code: "INVALID_CREDENTIALS", Message: "credential verification failed", RecoveryHint: "Obtain a fresh token and retry"}
	case errors.Is(err, identity.ErrAlreadyAuthenticated):
		return &APIError{Code: "ALREADY_AUTHENTICATED", Message: "already signed in", RecoveryHint: "Call auth_sign_out first"}
	case errors.Is(err, identity.ErrNotAuthenticated):
		return &APIError{Code: "NOT_AUTHENTICATED", Message: "no signed-in user"}
	case errors.Is(err, gateway.ErrInvalidCollection), errors.Is(err, gateway.ErrInvalidID):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, remote.ErrUnavailable):
		return &APIError{Code: "BACKEND_UNAVAILABLE", Message: "cloud backend unreachable, changes saved locally", RecoveryHint: "Retry once connectivity returns"}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
