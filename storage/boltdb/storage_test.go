package boltdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~pdg/lectern/canvas"
	"git.sr.ht/~pdg/lectern/storage"
)

func testRepo(t *testing.T) *repo {
	t.Helper()
	return New(Config{Path: filepath.Join(t.TempDir(), DefaultFile)})
}

func at(day, hour int) time.Time {
	return time.Date(2026, time.February, day, hour, 0, 0, 0, time.UTC)
}

func TestRepo_SaveAndLoadEvents(t *testing.T) {
	r := testRepo(t)

	events := []canvas.Event{
		{ID: 5001, Title: "Week 1 Lecture", StartAt: at(2, 10), EndAt: at(2, 11)},
		{ID: 5002, Title: "Week 2 Lecture", StartAt: at(9, 10), EndAt: at(9, 11)},
		{ID: 5003, Title: "Week 3 Lecture", StartAt: at(16, 10), EndAt: at(16, 11)},
	}
	require.NoError(t, r.SaveEvents(1187, events...))

	t.Run("full range", func(t *testing.T) {
		start := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
		loaded, err := r.LoadEvents(storage.Cursor(start, 60*24*time.Hour), 1187)
		require.NoError(t, err)
		assert.Len(t, loaded, 3)
	})
	t.Run("narrow range", func(t *testing.T) {
		loaded, err := r.LoadEvents(storage.Cursor(at(8, 0), 3*24*time.Hour), 1187)
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, "Week 2 Lecture", loaded[0].Title)
	})
	t.Run("other course is empty", func(t *testing.T) {
		loaded, err := r.LoadEvents(storage.Cursor(at(1, 0), 60*24*time.Hour), 9999)
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})
}

func TestRepo_LoadEvent(t *testing.T) {
	r := testRepo(t)
	ev := canvas.Event{ID: 5001, Title: "Week 1 Lecture", StartAt: at(2, 10), EndAt: at(2, 11)}
	require.NoError(t, r.SaveEvent(1187, ev))

	got := r.LoadEvent(1187, at(2, 10), 5001)
	assert.Equal(t, ev.Title, got.Title)

	missing := r.LoadEvent(1187, at(2, 10), 404)
	assert.Zero(t, missing.ID)
}

func TestRepo_SaveEventOverwrites(t *testing.T) {
	r := testRepo(t)
	ev := canvas.Event{ID: 5001, Title: "Week 1 Lecture", StartAt: at(2, 10), EndAt: at(2, 11)}
	require.NoError(t, r.SaveEvent(1187, ev))

	ev.Title = "Week 1 Lecture (moved)"
	require.NoError(t, r.SaveEvent(1187, ev))

	loaded, err := r.LoadEvents(storage.Cursor(at(1, 0), 2*24*time.Hour), 1187)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Week 1 Lecture (moved)", loaded[0].Title)
}
