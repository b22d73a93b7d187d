package project

import (
	"time"

	"github.com/lifehubapp/lifehub/internal/record"
)

// Collection is the document collection projects persist to.
const Collection = "projects"

// Client identifies who a project is billed to.
type Client struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Project is the aggregate root. The full task tree is nested in the
// document; tasks are never persisted as separate rows, so every
// task-level mutation round-trips the whole project. Number is the
// counter-issued display number; the document id is store-issued, never
// the number, so ids from different owners cannot collide in the shared
// collection.
type Project struct {
	record.Meta
	Number      int64      `json:"number"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Client      Client     `json:"client"`
	Tasks       []Task     `json:"tasks"`
	Completed   bool       `json:"completed"`
}

// Task is a billable unit of work. Subtasks nest to arbitrary depth. A
// task belongs to exactly one container: the project's top-level list or
// one parent's Subtasks. Completing a task forces its whole subtree
// complete; completing a subtask never completes its ancestors.
type Task struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Price          float64    `json:"price"`
	Completed      bool       `json:"completed"`
	HoursSpent     *float64   `json:"hoursSpent"`
	CompletionNote *string    `json:"completionNote"`
	CompletedAt    *time.Time `json:"completedAt"`
	ParentTaskID   *int64     `json:"parentTaskId"`
	Subtasks       []Task     `json:"subtasks"`
}

// Completion is what the capture workflow collects before a task may be
// marked complete.
type Completion struct {
	HoursSpent *float64
	Note       *string
}
