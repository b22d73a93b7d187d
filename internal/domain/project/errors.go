package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrTaskNotFound indicates no task in the tree has the given id.
	ErrTaskNotFound = errors.New("task not found")
	// ErrParentTaskNotFound indicates the requested parent task is absent.
	ErrParentTaskNotFound = errors.New("parent task not found")
	// ErrInvalidInput indicates a malformed request, rejected before any
	// write is attempted.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrNegativePrice indicates a task price below zero.
	ErrNegativePrice = errors.New("task price must not be negative")
)
