package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// ListStudents fetches every student enrolled in the course. Inactive
// enrollments are dropped and students enrolled in more than one section
// are collapsed to a single entry, keyed on their SIS id.
func (c *Client) ListStudents(ctx context.Context) ([]User, error) {
	q := url.Values{}
	q.Add("type[]", "StudentEnrollment")

	enrollments := make([]Enrollment, 0)
	err := c.getPages(ctx, c.coursePath("enrollments"), q, func(raw []byte) error {
		page := make([]Enrollment, 0)
		if err := json.Unmarshal(raw, &page); err != nil {
			return fmt.Errorf("unable to decode enrollments page: %w", err)
		}
		enrollments = append(enrollments, page...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to fetch enrollments: %w", err)
	}

	students := make([]User, 0, len(enrollments))
	seen := make(map[string]bool)
	for _, e := range enrollments {
		if e.EnrollmentState == "inactive" {
			continue
		}
		if sis := e.User.SISUserID; sis != "" {
			if seen[sis] {
				continue
			}
			seen[sis] = true
		}
		students = append(students, e.User)
	}
	return students, nil
}

// UserIDsBySIS maps SIS ids to Canvas user ids. The override endpoint only
// accepts the latter, while rosters usually carry the former.
func (c *Client) UserIDsBySIS(ctx context.Context) (map[string]int64, error) {
	students, err := c.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(students))
	for _, s := range students {
		if s.SISUserID == "" {
			continue
		}
		ids[s.SISUserID] = s.ID
	}
	return ids, nil
}
