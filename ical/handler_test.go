package ical

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~pdg/lectern/canvas"
	"git.sr.ht/~pdg/lectern/storage/boltdb"
)

func TestHandler(t *testing.T) {
	path := t.TempDir()
	st := boltdb.New(boltdb.Config{Path: filepath.Join(path, boltdb.DefaultFile)})
	require.NoError(t, st.SaveEvents(1187, canvas.Event{
		ID:           5001,
		Title:        "Week 1 Lecture",
		StartAt:      time.Date(2026, time.February, 2, 10, 0, 0, 0, time.UTC),
		EndAt:        time.Date(2026, time.February, 2, 11, 0, 0, 0, time.UTC),
		LocationName: "0G.005",
	}))

	srv := httptest.NewServer(Routes(path, "test"))
	t.Cleanup(srv.Close)

	t.Run("serves the course feed", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/1187.ics?start=2026-01-01")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/calendar; charset=utf-8", resp.Header.Get("Content-Type"))

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "BEGIN:VCALENDAR")
		assert.Contains(t, string(body), "SUMMARY:Week 1 Lecture (0G.005)")
	})

	t.Run("rejects a non numeric course", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/nope.ics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("unknown course yields an empty calendar", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/4242.ics?start=2026-01-01")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.NotContains(t, string(body), "BEGIN:VEVENT")
	})
}
