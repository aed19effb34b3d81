// Package ical renders stored Canvas course events as an iCalendar feed.
package ical

import (
	"fmt"
	"io"
	"time"

	"github.com/soh335/ical"

	"git.sr.ht/~pdg/lectern/canvas"
	"git.sr.ht/~pdg/lectern/tabular"
)

const (
	calendarVersion = "2.0"
	refreshInterval = "PT1H"
)

// Calendar builds a VCALENDAR for a course's events. The soh335 VEVENT has
// no LOCATION property, so the room gets folded into the description.
func Calendar(courseID int64, name string, events []canvas.Event, version string) *ical.VCalendar {
	cal := ical.NewBasicVCalendar()
	cal.PRODID = fmt.Sprintf("-//lectern//canvas-course-cal//EN/%s", version)
	cal.VERSION = calendarVersion

	if name == "" {
		name = fmt.Sprintf("Course %d", courseID)
	}
	description := fmt.Sprintf("Canvas calendar events for %s", name)

	cal.NAME = name
	cal.X_WR_CALNAME = name
	cal.DESCRIPTION = description
	cal.X_WR_CALDESC = description

	tz := time.UTC.String()
	if len(events) > 0 {
		tz = events[0].StartAt.Location().String()
	}
	cal.TIMEZONE_ID = tz
	cal.X_WR_TIMEZONE = tz

	cal.REFRESH_INTERVAL = refreshInterval
	cal.X_PUBLISHED_TTL = refreshInterval
	cal.CALSCALE = "GREGORIAN"
	cal.METHOD = "PUBLISH"

	for _, ev := range events {
		summary := ev.Title
		if ev.LocationName != "" {
			summary = fmt.Sprintf("%s (%s)", summary, ev.LocationName)
		}
		stamp := ev.UpdatedAt
		if stamp.IsZero() {
			stamp = ev.StartAt
		}
		e := &ical.VEvent{
			UID:         fmt.Sprintf("%d@canvas", ev.ID),
			DTSTAMP:     stamp,
			DTSTART:     ev.StartAt,
			DTEND:       ev.EndAt,
			SUMMARY:     summary,
			DESCRIPTION: tabular.FlattenHTML(ev.Description),
			TZID:        tz,
			AllDay:      ev.Duration() > 24*time.Hour,
		}
		cal.VComponent = append(cal.VComponent, e)
	}
	return cal
}

// Write encodes the events of a course as iCalendar data.
func Write(w io.Writer, courseID int64, name string, events []canvas.Event, version string) error {
	return Calendar(courseID, name, events, version).Encode(w)
}
