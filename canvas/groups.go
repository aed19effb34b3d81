package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

type groupCategoryPayload struct {
	Name string `json:"name"`
}

// CreateGroupCategory creates a group set in the course.
func (c *Client) CreateGroupCategory(ctx context.Context, name string) (*GroupCategory, error) {
	path := c.coursePath("group_categories")
	req, err := c.newRequest(ctx, http.MethodPost, c.apiURL(path, nil), groupCategoryPayload{Name: name})
	if err != nil {
		return nil, err
	}
	created := GroupCategory{}
	if _, err = c.do(req, &created); err != nil {
		return nil, fmt.Errorf("unable to create group set %s: %w", name, err)
	}
	return &created, nil
}

// ListGroupCategories fetches the group sets defined in the course.
func (c *Client) ListGroupCategories(ctx context.Context) ([]GroupCategory, error) {
	categories := make([]GroupCategory, 0)
	err := c.getPages(ctx, c.coursePath("group_categories"), nil, func(raw []byte) error {
		page := make([]GroupCategory, 0)
		if err := json.Unmarshal(raw, &page); err != nil {
			return fmt.Errorf("unable to decode group sets page: %w", err)
		}
		categories = append(categories, page...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to fetch group sets: %w", err)
	}
	return categories, nil
}

// ListGroups fetches the groups under a group set.
func (c *Client) ListGroups(ctx context.Context, categoryID int64) ([]Group, error) {
	path := "group_categories/" + strconv.FormatInt(categoryID, 10) + "/groups"
	groups := make([]Group, 0)
	err := c.getPages(ctx, path, nil, func(raw []byte) error {
		page := make([]Group, 0)
		if err := json.Unmarshal(raw, &page); err != nil {
			return fmt.Errorf("unable to decode groups page: %w", err)
		}
		groups = append(groups, page...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to fetch groups of set %d: %w", categoryID, err)
	}
	return groups, nil
}

// CreateGroups creates the named groups under a group set, skipping names
// that already exist there.
func (c *Client) CreateGroups(ctx context.Context, categoryID int64, names []string) ([]Group, error) {
	existing, err := c.ListGroups(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(existing))
	for _, g := range existing {
		taken[g.Name] = true
	}

	path := "group_categories/" + strconv.FormatInt(categoryID, 10) + "/groups"
	created := make([]Group, 0, len(names))
	for _, name := range names {
		if taken[name] {
			c.logFn("group %s already exists, skipping", name)
			continue
		}
		req, err := c.newRequest(ctx, http.MethodPost, c.apiURL(path, nil), groupCategoryPayload{Name: name})
		if err != nil {
			return created, err
		}
		g := Group{}
		if _, err = c.do(req, &g); err != nil {
			return created, fmt.Errorf("unable to create group %s: %w", name, err)
		}
		taken[name] = true
		created = append(created, g)
	}
	return created, nil
}

// DeleteGroup removes a single group.
func (c *Client) DeleteGroup(ctx context.Context, groupID int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, c.apiURL("groups/"+strconv.FormatInt(groupID, 10), nil), nil)
	if err != nil {
		return err
	}
	if _, err = c.do(req, nil); err != nil {
		return fmt.Errorf("unable to remove group %d: %w", groupID, err)
	}
	return nil
}

// DeleteAllGroups drops every group under a group set.
func (c *Client) DeleteAllGroups(ctx context.Context, categoryID int64) error {
	groups, err := c.ListGroups(ctx, categoryID)
	if err != nil {
		return err
	}
	for _, g := range groups {
		if err := c.DeleteGroup(ctx, g.ID); err != nil {
			return err
		}
		c.logFn("removed group %s (%d)", g.Name, g.ID)
	}
	return nil
}
