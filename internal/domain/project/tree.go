package project

import "time"

// taskRef locates a task inside its container so structural edits never
// chase parent pointers: container is the slice the task lives in,
// index its position there.
type taskRef struct {
	task      *Task
	container *[]Task
	index     int
}

// locateTask walks tasks in pre-order and returns the first task with
// the given id. The tree has no duplicate ids by invariant, so the first
// match is the only one.
func locateTask(container *[]Task, id int64) (taskRef, bool) {
	for i := range *container {
		t := &(*container)[i]
		if t.ID == id {
			return taskRef{task: t, container: container, index: i}, true
		}
		if ref, ok := locateTask(&t.Subtasks, id); ok {
			return ref, true
		}
	}
	return taskRef{}, false
}

// removeAt deletes the task at ref, taking its whole subtree with it.
func removeAt(ref taskRef) {
	c := *ref.container
	*ref.container = append(c[:ref.index], c[ref.index+1:]...)
}

// flatten collects pointers to every task at every depth, pre-order.
func flatten(tasks []Task) []*Task {
	var all []*Task
	for i := range tasks {
		all = append(all, &tasks[i])
		all = append(all, flatten(tasks[i].Subtasks)...)
	}
	return all
}

// syntheticNote marks descendants completed by cascade rather than by
// their own capture.
const syntheticNote = "Completed together with parent task"

// forceCompleteSubtree marks every descendant of t complete, filling in
// a synthetic note for tasks that lack their own completion data. The
// cascade only flows downward.
func forceCompleteSubtree(t *Task, now time.Time) {
	for i := range t.Subtasks {
		sub := &t.Subtasks[i]
		if !sub.Completed {
			sub.Completed = true
			sub.CompletedAt = timePtr(now)
			if sub.CompletionNote == nil {
				note := syntheticNote
				sub.CompletionNote = &note
			}
		}
		forceCompleteSubtree(sub, now)
	}
}

func timePtr(t time.Time) *time.Time { return &t }
