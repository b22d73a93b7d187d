package pomodoro

import (
	"time"

	"github.com/lifehubapp/lifehub/internal/record"
)

const (
	SessionsCollection = "pomodoro_sessions"
	SettingsCollection = "pomodoro_settings"
	StateCollection    = "pomodoro_state"
)

// SessionType distinguishes focus blocks from breaks.
type SessionType string

const (
	TypeFocus SessionType = "focus"
	TypeBreak SessionType = "break"
)

// Session is one completed pomodoro block.
type Session struct {
	record.Meta
	Name        string      `json:"name"`
	Type        SessionType `json:"type"`
	Duration    int         `json:"duration"` // seconds
	CompletedAt time.Time   `json:"completedAt"`
}

// Settings is the per-owner singleton of timer preferences, keyed by the
// owner id.
type Settings struct {
	record.Meta
	FocusTime   int    `json:"focusTime"` // seconds
	BreakTime   int    `json:"breakTime"` // seconds
	SessionName string `json:"sessionName"`
}

// State is the per-owner singleton snapshot of a running timer, so a
// reload resumes where the timer left off.
type State struct {
	record.Meta
	CurrentTime int        `json:"currentTime"` // seconds remaining
	IsRunning   bool       `json:"isRunning"`
	IsPaused    bool       `json:"isPaused"`
	IsFocusMode bool       `json:"isFocusMode"`
	StartTime   *time.Time `json:"startTime"`
	PausedTime  *time.Time `json:"pausedTime"`
}

// DefaultSettings are applied when an owner has none saved.
func DefaultSettings() Settings {
	return Settings{
		FocusTime:   25 * 60,
		BreakTime:   5 * 60,
		SessionName: "Focus",
	}
}
