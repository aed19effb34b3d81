package ical

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~pdg/lectern/canvas"
)

func testEvents() []canvas.Event {
	return []canvas.Event{
		{
			ID:           5001,
			Title:        "Week 1 Lecture",
			Description:  "<p>Supervised by Dr. Finch</p>",
			StartAt:      time.Date(2026, time.February, 2, 10, 0, 0, 0, time.UTC),
			EndAt:        time.Date(2026, time.February, 2, 11, 0, 0, 0, time.UTC),
			LocationName: "0G.005",
			UpdatedAt:    time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:      5002,
			Title:   "Reading Week",
			StartAt: time.Date(2026, time.February, 16, 0, 0, 0, 0, time.UTC),
			EndAt:   time.Date(2026, time.February, 21, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestCalendar(t *testing.T) {
	cal := Calendar(1187, "CSC1029", testEvents(), "test")

	assert.Equal(t, "CSC1029", cal.NAME)
	assert.Equal(t, "CSC1029", cal.X_WR_CALNAME)
	assert.Equal(t, "UTC", cal.TIMEZONE_ID)
	assert.Equal(t, "GREGORIAN", cal.CALSCALE)
	require.Len(t, cal.VComponent, 2)
}

func TestCalendar_NameFallback(t *testing.T) {
	cal := Calendar(1187, "", nil, "test")
	assert.Equal(t, "Course 1187", cal.NAME)
}

func TestWrite(t *testing.T) {
	b := bytes.Buffer{}
	require.NoError(t, Write(&b, 1187, "CSC1029", testEvents(), "test"))
	out := b.String()

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "END:VCALENDAR")
	assert.Contains(t, out, "UID:5001@canvas")
	// the room rides along in the summary, markup is stripped from the body
	assert.Contains(t, out, "SUMMARY:Week 1 Lecture (0G.005)")
	assert.Contains(t, out, "DESCRIPTION:Supervised by Dr. Finch")
	assert.NotContains(t, out, "<p>")
	// the multi day event is rendered without a time component
	assert.Contains(t, out, "VALUE=DATE:20260216")
}
