package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const dateParamFmt = "2006-01-02"

// ListEvents fetches the course calendar events, limited to the given date
// range when start or end are non-zero.
func (c *Client) ListEvents(ctx context.Context, start, end time.Time) ([]Event, error) {
	q := url.Values{}
	q.Add("context_codes[]", c.ContextCode())
	if !start.IsZero() {
		q.Set("start_date", start.Format(dateParamFmt))
	}
	if !end.IsZero() {
		q.Set("end_date", end.Format(dateParamFmt))
	}

	events := make([]Event, 0)
	err := c.getPages(ctx, "calendar_events", q, func(raw []byte) error {
		page := make([]Event, 0)
		if err := json.Unmarshal(raw, &page); err != nil {
			return fmt.Errorf("unable to decode events page: %w", err)
		}
		events = append(events, page...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to fetch calendar events: %w", err)
	}
	return events, nil
}

// GetEvent fetches a single calendar event by id.
func (c *Client) GetEvent(ctx context.Context, id int64) (*Event, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.apiURL("calendar_events/"+strconv.FormatInt(id, 10), nil), nil)
	if err != nil {
		return nil, err
	}
	ev := Event{}
	if _, err = c.do(req, &ev); err != nil {
		return nil, fmt.Errorf("unable to fetch event %d: %w", id, err)
	}
	return &ev, nil
}

type eventPayload struct {
	Event struct {
		ContextCode  string `json:"context_code"`
		Title        string `json:"title"`
		Description  string `json:"description"`
		StartAt      string `json:"start_at"`
		EndAt        string `json:"end_at"`
		LocationName string `json:"location_name"`
	} `json:"calendar_event"`
}

// CreateEvent creates a calendar event in the course context. The returned
// event carries the id Canvas assigned.
func (c *Client) CreateEvent(ctx context.Context, ev Event) (*Event, error) {
	payload := eventPayload{}
	payload.Event.ContextCode = c.ContextCode()
	payload.Event.Title = ev.Title
	payload.Event.Description = ev.Description
	payload.Event.StartAt = ev.StartAt.Format(time.RFC3339)
	payload.Event.EndAt = ev.EndAt.Format(time.RFC3339)
	payload.Event.LocationName = ev.LocationName

	req, err := c.newRequest(ctx, http.MethodPost, c.apiURL("calendar_events", nil), payload)
	if err != nil {
		return nil, err
	}
	created := Event{}
	if _, err = c.do(req, &created); err != nil {
		return nil, fmt.Errorf("unable to create event %s: %w", ev.Title, err)
	}
	return &created, nil
}

// DeleteEvent removes a calendar event by id.
func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, c.apiURL("calendar_events/"+strconv.FormatInt(id, 10), nil), nil)
	if err != nil {
		return err
	}
	if _, err = c.do(req, nil); err != nil {
		return fmt.Errorf("unable to remove event %d: %w", id, err)
	}
	return nil
}

// RemoveEvents deletes every course event in the date range and returns
// the events that were removed.
func (c *Client) RemoveEvents(ctx context.Context, start, end time.Time) ([]Event, error) {
	events, err := c.ListEvents(ctx, start, end)
	if err != nil {
		return nil, err
	}
	removed := make([]Event, 0, len(events))
	for _, ev := range events {
		if err := c.DeleteEvent(ctx, ev.ID); err != nil {
			return removed, err
		}
		c.logFn("removed event %s (%d) on %s", ev.Title, ev.ID, ev.StartAt.Format("01/02/2006 at 15:04"))
		removed = append(removed, ev)
	}
	return removed, nil
}
