package project

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/lifehubapp/lifehub/internal/record"
)

// Gateway is the slice of the persistence gateway this service uses.
type Gateway interface {
	List(ctx context.Context, collection string, out any) error
	SaveOrCreate(ctx context.Context, collection string, e record.Entity) (string, bool, error)
	Delete(ctx context.Context, collection, id string) error
}

// Counters issues project display numbers and task ids.
type Counters interface {
	NextProjectID(ctx context.Context) (int64, error)
	NextTaskID(ctx context.Context) (int64, error)
}

// CompletionCapture is the workflow that collects hours spent and an
// optional note before a task is marked complete. The UI implements it
// with a modal; tests and tools implement it directly.
type CompletionCapture interface {
	Capture(ctx context.Context, t *Task) (Completion, bool, error)
}

// CaptureFunc adapts a function to CompletionCapture.
type CaptureFunc func(ctx context.Context, t *Task) (Completion, bool, error)

func (f CaptureFunc) Capture(ctx context.Context, t *Task) (Completion, bool, error) {
	return f(ctx, t)
}

// Service maintains one owner's project aggregates and their task
// trees. Every mutation goes through the gateway; on identity change the
// cache is discarded and reloaded for the new owner.
type Service struct {
	gw       Gateway
	counters Counters
	logger   *slog.Logger

	mu       sync.Mutex
	projects []*Project
}

// NewService creates a project service.
func NewService(gw Gateway, counters Counters, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{gw: gw, counters: counters, logger: logger}
}

// Reload discards the in-memory collection and loads the given owner's
// projects. Registered as the identity-change observer.
func (s *Service) Reload(ctx context.Context, ownerID string) error {
	var loaded []Project
	if err := s.gw.List(ctx, Collection, &loaded); err != nil {
		return fmt.Errorf("reloading projects: %w", err)
	}

	projects := make([]*Project, len(loaded))
	for i := range loaded {
		projects[i] = &loaded[i]
	}

	s.mu.Lock()
	s.projects = projects
	s.mu.Unlock()

	s.logger.Debug("projects reloaded", "owner", ownerID, "count", len(projects))
	return nil
}

// Projects returns the cached collection, most recently updated first.
func (s *Service) Projects() []*Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// AddProjectRequest defines project creation inputs.
type AddProjectRequest struct {
	Name        string
	Description string
	Deadline    *time.Time
	Client      Client
}

// AddProject creates a project. The counter issues the display number
// only; the document id comes from the store, so numbers restarting at 1
// for a fresh owner can never key-collide with another owner's projects.
func (s *Service) AddProject(ctx context.Context, req AddProjectRequest) (*Project, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: project name required", ErrInvalidInput)
	}

	n, err := s.counters.NextProjectID(ctx)
	if err != nil {
		return nil, fmt.Errorf("issuing project number: %w", err)
	}

	p := &Project{
		Number:      n,
		Name:        req.Name,
		Description: req.Description,
		Deadline:    req.Deadline,
		Client:      req.Client,
	}

	if err := s.save(ctx, p); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.projects = append([]*Project{p}, s.projects...)
	s.mu.Unlock()
	return p, nil
}

// EditProjectRequest carries optional field updates; nil leaves a field
// untouched.
type EditProjectRequest struct {
	Name        *string
	Description *string
	Deadline    *time.Time
	Client      *Client
	Completed   *bool
}

// EditProject applies the request and persists the whole aggregate.
func (s *Service) EditProject(ctx context.Context, id string, req EditProjectRequest) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.find(id)
	if !ok {
		return nil, ErrProjectNotFound
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: project name required", ErrInvalidInput)
		}
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Deadline != nil {
		p.Deadline = req.Deadline
	}
	if req.Client != nil {
		p.Client = *req.Client
	}
	if req.Completed != nil {
		p.Completed = *req.Completed
	}

	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProject removes the project and its whole task tree from both
// stores.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if err := s.gw.Delete(ctx, Collection, id); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	s.mu.Lock()
	for i, p := range s.projects {
		if p.ID == id {
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// Get returns a cached project by id.
func (s *Service) Get(id string) (*Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(id)
}

// TaskInput defines task creation fields.
type TaskInput struct {
	Name        string
	Description string
	Price       float64
}

// AddTask appends a task to the project's top level, or to the subtasks
// of parentTaskID when given. The task gets the next counter-issued
// numeric id. Validation happens before any write.
func (s *Service) AddTask(ctx context.Context, projectID string, in TaskInput, parentTaskID *int64) (*Task, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: task name required", ErrInvalidInput)
	}
	if in.Price < 0 {
		return nil, ErrNegativePrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.find(projectID)
	if !ok {
		return nil, ErrProjectNotFound
	}

	id, err := s.counters.NextTaskID(ctx)
	if err != nil {
		return nil, fmt.Errorf("issuing task id: %w", err)
	}

	task := Task{
		ID:           id,
		Name:         in.Name,
		Description:  in.Description,
		Price:        in.Price,
		ParentTaskID: parentTaskID,
	}

	if parentTaskID != nil {
		ref, found := locateTask(&p.Tasks, *parentTaskID)
		if !found {
			return nil, ErrParentTaskNotFound
		}
		ref.task.Subtasks = append(ref.task.Subtasks, task)
	} else {
		p.Tasks = append(p.Tasks, task)
	}

	if err := s.save(ctx, p); err != nil {
		return nil, err
	}

	ref, _ := locateTask(&p.Tasks, id)
	return ref.task, nil
}

// ToggleTask flips a task's completion. Un-completing clears the
// completion fields of that task only. Completing hands control to the
// capture workflow first; only on explicit confirmation does the task
// complete, cascading completion down through every descendant.
// A declined capture returns the task unchanged.
func (s *Service) ToggleTask(ctx context.Context, projectID string, taskID int64, capture CompletionCapture) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.find(projectID)
	if !ok {
		return nil, ErrProjectNotFound
	}

	ref, found := locateTask(&p.Tasks, taskID)
	if !found {
		return nil, ErrTaskNotFound
	}
	task := ref.task

	if task.Completed {
		task.Completed = false
		task.HoursSpent = nil
		task.CompletionNote = nil
		task.CompletedAt = nil

		if err := s.save(ctx, p); err != nil {
			return nil, err
		}
		return task, nil
	}

	if capture == nil {
		return nil, fmt.Errorf("%w: completion capture required", ErrInvalidInput)
	}

	comp, confirmed, err := capture.Capture(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("completion capture: %w", err)
	}
	if !confirmed {
		return task, nil
	}

	now := time.Now()
	task.Completed = true
	task.HoursSpent = comp.HoursSpent
	task.CompletionNote = comp.Note
	task.CompletedAt = timePtr(now)
	forceCompleteSubtree(task, now)

	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task and its entire subtree.
func (s *Service) DeleteTask(ctx context.Context, projectID string, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.find(projectID)
	if !ok {
		return ErrProjectNotFound
	}

	ref, found := locateTask(&p.Tasks, taskID)
	if !found {
		return ErrTaskNotFound
	}
	removeAt(ref)

	return s.save(ctx, p)
}

// FindTask returns a task from the cached tree by pre-order search.
func (s *Service) FindTask(projectID string, taskID int64) (*Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.find(projectID)
	if !ok {
		return nil, false
	}
	ref, found := locateTask(&p.Tasks, taskID)
	if !found {
		return nil, false
	}
	return ref.task, true
}

// Progress reports the percentage of completed tasks across the whole
// tree, all depths flattened. An empty tree is 0, never a division by
// zero.
func Progress(p *Project) int {
	all := flatten(p.Tasks)
	if len(all) == 0 {
		return 0
	}

	completed := 0
	for _, t := range all {
		if t.Completed {
			completed++
		}
	}
	return int(math.Round(float64(completed) / float64(len(all)) * 100))
}

func (s *Service) find(id string) (*Project, bool) {
	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func (s *Service) save(ctx context.Context, p *Project) error {
	if _, _, err := s.gw.SaveOrCreate(ctx, Collection, p); err != nil {
		return fmt.Errorf("saving project: %w", err)
	}
	return nil
}
