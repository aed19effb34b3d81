// Package timetable turns a teaching timetable spreadsheet into Canvas
// calendar events. A timetable row carries a Topic, Staff, Room, Date and
// wall-clock Start/End Time columns, plus optional free-form Notes written
// in Markdown.
package timetable

import (
	"bytes"
	"fmt"
	"time"

	"gitlab.com/golang-commonmark/markdown"

	"git.sr.ht/~pdg/lectern/canvas"
	"git.sr.ht/~pdg/lectern/tabular"
)

type Row struct {
	Topic string
	Staff string
	Room  string
	Notes string
	Start time.Time
	End   time.Time
}

var dateFormats = []string{"2006-01-02", "02/01/2006", "02-01-2006"}

const clockFormat = "15:04"

func parseDate(s string, loc *time.Location) (time.Time, error) {
	for _, f := range dateFormats {
		if d, err := time.ParseInLocation(f, s, loc); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func combine(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse(clockFormat, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized time %q: %w", clock, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}

// FromTable parses timetable rows out of a table. The Date, Start Time and
// End Time columns are required; everything else may be blank. Times are
// interpreted in loc, which matters when the resulting events are compared
// against what Canvas already has.
func FromTable(t *tabular.Table, loc *time.Location) ([]Row, error) {
	if t.IsEmpty() {
		return nil, fmt.Errorf("timetable is empty")
	}
	if loc == nil {
		loc = time.Local
	}
	date := t.Column("Date")
	start := t.Column("Start Time")
	end := t.Column("End Time")
	if date < 0 || start < 0 || end < 0 {
		return nil, fmt.Errorf("timetable needs Date, Start Time and End Time columns, got %v", t.Header)
	}
	topic := t.Column("Topic")
	staff := t.Column("Staff")
	room := t.Column("Room")
	notes := t.Column("Notes")

	rows := make([]Row, 0, len(t.Rows))
	for i := range t.Rows {
		d, err := parseDate(t.Cell(i, date), loc)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		r := Row{
			Topic: t.Cell(i, topic),
			Staff: t.Cell(i, staff),
			Room:  t.Cell(i, room),
			Notes: t.Cell(i, notes),
		}
		if r.Start, err = combine(d, t.Cell(i, start)); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if r.End, err = combine(d, t.Cell(i, end)); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if !r.End.After(r.Start) {
			return nil, fmt.Errorf("row %d: end %s is not after start %s", i+1, r.End.Format(clockFormat), r.Start.Format(clockFormat))
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func (r Row) Title() string {
	if r.Topic == "" {
		return "No Topic"
	}
	return r.Topic
}

func (r Row) Location() string {
	if r.Room == "" {
		return "No specified location"
	}
	return r.Room
}

var md = markdown.New(
	markdown.HTML(true),
	markdown.Tables(true),
	markdown.Linkify(false),
	markdown.Typographer(true),
	markdown.Breaks(true),
)

// Description renders the event body: who supervises, plus the Notes cell
// rendered from Markdown to the HTML Canvas stores.
func (r Row) Description() string {
	supervised := "No additional notes"
	if r.Staff != "" {
		supervised = fmt.Sprintf("Supervised by %s", r.Staff)
	}
	if r.Notes == "" {
		return supervised
	}
	cont := bytes.Buffer{}
	if err := md.Render(&cont, []byte(r.Notes)); err != nil {
		return fmt.Sprintf("%s\n%s", supervised, r.Notes)
	}
	return fmt.Sprintf("<p>%s</p>\n%s", supervised, cont.String())
}

// Event shapes the row as the Canvas event it should become.
func (r Row) Event() canvas.Event {
	return canvas.Event{
		Title:        r.Title(),
		Description:  r.Description(),
		StartAt:      r.Start,
		EndAt:        r.End,
		LocationName: r.Location(),
	}
}

// Conflict returns the first existing event overlapping the row's slot.
// An overlap is any event starting before the row ends and ending after it
// starts.
func (r Row) Conflict(existing []canvas.Event) (canvas.Event, bool) {
	for _, ev := range existing {
		if ev.Overlaps(r.Start, r.End) {
			return ev, true
		}
	}
	return canvas.Event{}, false
}
