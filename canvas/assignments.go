package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// PublishedFilter narrows assignment listings by publication state.
type PublishedFilter string

const (
	PublishedAll  PublishedFilter = "all"
	PublishedOnly PublishedFilter = "published"
	Unpublished   PublishedFilter = "unpublished"
)

func (f PublishedFilter) keep(a Assignment) bool {
	switch f {
	case PublishedOnly:
		return a.Published
	case Unpublished:
		return !a.Published
	}
	return true
}

// ListAssignments fetches the course assignments, optionally narrowed to
// published or unpublished ones. Canvas has no server-side filter for this,
// so the narrowing happens here after the fetch.
func (c *Client) ListAssignments(ctx context.Context, filter PublishedFilter) ([]Assignment, error) {
	assignments := make([]Assignment, 0)
	err := c.getPages(ctx, c.coursePath("assignments"), nil, func(raw []byte) error {
		page := make([]Assignment, 0)
		if err := json.Unmarshal(raw, &page); err != nil {
			return fmt.Errorf("unable to decode assignments page: %w", err)
		}
		for _, a := range page {
			if filter.keep(a) {
				assignments = append(assignments, a)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to fetch assignments: %w", err)
	}
	return assignments, nil
}

// ListOverrides fetches the overrides currently attached to an assignment.
func (c *Client) ListOverrides(ctx context.Context, assignmentID int64) ([]Override, error) {
	path := c.coursePath("assignments", strconv.FormatInt(assignmentID, 10), "overrides")
	overrides := make([]Override, 0)
	err := c.getPages(ctx, path, nil, func(raw []byte) error {
		page := make([]Override, 0)
		if err := json.Unmarshal(raw, &page); err != nil {
			return fmt.Errorf("unable to decode overrides page: %w", err)
		}
		overrides = append(overrides, page...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to fetch overrides for assignment %d: %w", assignmentID, err)
	}
	return overrides, nil
}

type overridePayload struct {
	Override struct {
		StudentIDs []int64 `json:"student_ids"`
		DueAt      string  `json:"due_at"`
	} `json:"assignment_override"`
}

// CreateOverride attaches a due date exception for the given students to
// an assignment.
func (c *Client) CreateOverride(ctx context.Context, assignmentID int64, studentIDs []int64, dueAt time.Time) (*Override, error) {
	if len(studentIDs) == 0 {
		return nil, fmt.Errorf("no students to override assignment %d for", assignmentID)
	}
	payload := overridePayload{}
	payload.Override.StudentIDs = studentIDs
	payload.Override.DueAt = dueAt.Format(time.RFC3339)

	path := c.coursePath("assignments", strconv.FormatInt(assignmentID, 10), "overrides")
	req, err := c.newRequest(ctx, http.MethodPost, c.apiURL(path, nil), payload)
	if err != nil {
		return nil, err
	}
	created := Override{}
	if _, err = c.do(req, &created); err != nil {
		return nil, fmt.Errorf("unable to create override for assignment %d: %w", assignmentID, err)
	}
	return &created, nil
}

// DeleteOverride removes a single override from an assignment.
func (c *Client) DeleteOverride(ctx context.Context, assignmentID, overrideID int64) error {
	path := c.coursePath("assignments", strconv.FormatInt(assignmentID, 10), "overrides", strconv.FormatInt(overrideID, 10))
	req, err := c.newRequest(ctx, http.MethodDelete, c.apiURL(path, nil), nil)
	if err != nil {
		return err
	}
	if _, err = c.do(req, nil); err != nil {
		return fmt.Errorf("unable to remove override %d from assignment %d: %w", overrideID, assignmentID, err)
	}
	return nil
}

// ClearOverrides drops every override from the given assignments, one
// delete per override.
func (c *Client) ClearOverrides(ctx context.Context, assignmentIDs ...int64) error {
	for _, aid := range assignmentIDs {
		overrides, err := c.ListOverrides(ctx, aid)
		if err != nil {
			return err
		}
		for _, o := range overrides {
			if err := c.DeleteOverride(ctx, aid, o.ID); err != nil {
				return err
			}
			c.logFn("removed override %d from assignment %d", o.ID, aid)
		}
	}
	return nil
}
