package record_test

import (
	"testing"
	"time"

	"github.com/lifehubapp/lifehub/internal/record"
	"github.com/stretchr/testify/require"
)

type note struct {
	record.Meta
	Text string `json:"text"`
}

func TestStamp_NewEntity(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	n := &note{Text: "hello"}

	record.Stamp(n, "owner1", now)

	require.Equal(t, "owner1", n.OwnerID)
	require.Equal(t, now, n.CreatedAt)
	require.Equal(t, now, n.UpdatedAt)
}

func TestStamp_PreservesCreatedAt(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := created.Add(48 * time.Hour)

	n := &note{Text: "hello"}
	record.Stamp(n, "owner1", created)
	record.Stamp(n, "owner2", later)

	require.Equal(t, "owner2", n.OwnerID)
	require.Equal(t, created, n.CreatedAt)
	require.Equal(t, later, n.UpdatedAt)
}

func TestValidCollection(t *testing.T) {
	valid := []string{"projects", "pomodoro_sessions", "task_counters", "a1"}
	for _, name := range valid {
		require.True(t, record.ValidCollection(name), name)
	}

	invalid := []string{"", "Projects", "pomodoro sessions", "1abc", "a/b", "_x"}
	for _, name := range invalid {
		require.False(t, record.ValidCollection(name), name)
	}
}

func TestMoreRecent(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	newer := record.Meta{UpdatedAt: base.Add(time.Hour)}
	older := record.Meta{UpdatedAt: base}
	require.True(t, record.MoreRecent(newer, older))
	require.False(t, record.MoreRecent(older, newer))

	// Tie on UpdatedAt falls through to CreatedAt.
	a := record.Meta{UpdatedAt: base, CreatedAt: base.Add(time.Minute)}
	b := record.Meta{UpdatedAt: base, CreatedAt: base}
	require.True(t, record.MoreRecent(a, b))
}
