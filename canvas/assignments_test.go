package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const assignmentsPage = `[
	{"id": 11, "name": "Lab 1", "due_at": "2026-02-06T16:00:00Z", "points_possible": 10, "published": true},
	{"id": 12, "name": "Lab 2", "due_at": null, "points_possible": 10, "published": false},
	{"id": 13, "name": "Exam", "due_at": "2026-05-20T09:00:00Z", "points_possible": 60, "published": true}
]`

func TestClient_ListAssignments(t *testing.T) {
	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/courses/1187/assignments", r.URL.Path)
		fmt.Fprint(w, assignmentsPage)
	}))
	ctx := context.Background()

	t.Run("all", func(t *testing.T) {
		all, err := cl.ListAssignments(ctx, PublishedAll)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
	t.Run("published", func(t *testing.T) {
		published, err := cl.ListAssignments(ctx, PublishedOnly)
		require.NoError(t, err)
		require.Len(t, published, 2)
		assert.Equal(t, "Lab 1", published[0].Name)
		assert.Equal(t, "Exam", published[1].Name)
	})
	t.Run("unpublished", func(t *testing.T) {
		unpublished, err := cl.ListAssignments(ctx, Unpublished)
		require.NoError(t, err)
		require.Len(t, unpublished, 1)
		assert.Equal(t, "Lab 2", unpublished[0].Name)
		assert.Nil(t, unpublished[0].DueAt)
	})
}

func TestClient_CreateOverride(t *testing.T) {
	var gotBody map[string]map[string]interface{}
	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/courses/1187/assignments/11/overrides", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"id": 900, "assignment_id": 11, "student_ids": [101], "due_at": "2026-02-13T16:00:00Z"}`)
	}))

	due := time.Date(2026, time.February, 13, 16, 0, 0, 0, time.UTC)
	created, err := cl.CreateOverride(context.Background(), 11, []int64{101}, due)
	require.NoError(t, err)
	assert.EqualValues(t, 900, created.ID)

	override, ok := gotBody["assignment_override"]
	require.True(t, ok, "payload must be wrapped in assignment_override")
	assert.Equal(t, []interface{}{float64(101)}, override["student_ids"])
	assert.Equal(t, "2026-02-13T16:00:00Z", override["due_at"])
}

func TestClient_CreateOverride_NoStudents(t *testing.T) {
	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	_, err := cl.CreateOverride(context.Background(), 11, nil, time.Now())
	require.Error(t, err)
}

func TestClient_ClearOverrides(t *testing.T) {
	var deleted []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses/1187/assignments/11/overrides", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 900, "assignment_id": 11}, {"id": 901, "assignment_id": 11}]`)
	})
	mux.HandleFunc("/api/v1/courses/1187/assignments/11/overrides/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		deleted = append(deleted, r.URL.Path)
		fmt.Fprint(w, `{}`)
	})

	cl := newTestClient(t, mux)
	require.NoError(t, cl.ClearOverrides(context.Background(), 11))
	assert.Equal(t, []string{
		"/api/v1/courses/1187/assignments/11/overrides/900",
		"/api/v1/courses/1187/assignments/11/overrides/901",
	}, deleted)
}
