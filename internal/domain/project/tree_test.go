package project

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func deepTree() []Task {
	return []Task{
		{ID: 1, Name: "design", Subtasks: []Task{
			{ID: 2, Name: "wireframes", Subtasks: []Task{
				{ID: 3, Name: "mobile"},
			}},
			{ID: 4, Name: "palette"},
		}},
		{ID: 5, Name: "build"},
	}
}

func TestLocateTask_PreOrder(t *testing.T) {
	tasks := deepTree()

	ref, ok := locateTask(&tasks, 3)
	require.True(t, ok)
	require.Equal(t, "mobile", ref.task.Name)
	require.Equal(t, 0, ref.index)

	ref, ok = locateTask(&tasks, 5)
	require.True(t, ok)
	require.Equal(t, "build", ref.task.Name)
	require.Equal(t, 1, ref.index)

	_, ok = locateTask(&tasks, 99)
	require.False(t, ok)
}

func TestRemoveAt_TakesSubtree(t *testing.T) {
	tasks := deepTree()

	ref, ok := locateTask(&tasks, 2)
	require.True(t, ok)
	removeAt(ref)

	require.Len(t, tasks, 2)
	_, ok = locateTask(&tasks, 2)
	require.False(t, ok)
	_, ok = locateTask(&tasks, 3)
	require.False(t, ok, "descendants go with the removed task")
	_, ok = locateTask(&tasks, 4)
	require.True(t, ok)
}

func TestFlatten_AllDepths(t *testing.T) {
	tasks := deepTree()

	all := flatten(tasks)
	require.Len(t, all, 5)

	var ids []int64
	for _, task := range all {
		ids = append(ids, task.ID)
	}
	require.Equal(t, []int64{1, 2, 3, 4, 5}, ids)
}

func TestForceCompleteSubtree(t *testing.T) {
	ownNote := "done early"
	tasks := []Task{
		{ID: 1, Subtasks: []Task{
			{ID: 2, Subtasks: []Task{{ID: 3}}},
			{ID: 4, Completed: true, CompletionNote: &ownNote},
		}},
	}

	now := time.Now()
	forceCompleteSubtree(&tasks[0], now)

	ref, _ := locateTask(&tasks, 3)
	require.True(t, ref.task.Completed)
	require.NotNil(t, ref.task.CompletedAt)
	require.Equal(t, syntheticNote, *ref.task.CompletionNote)

	// Already-completed descendants keep their own completion data.
	ref, _ = locateTask(&tasks, 4)
	require.Equal(t, ownNote, *ref.task.CompletionNote)
}
