package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateGroups(t *testing.T) {
	var created []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/group_categories/77/groups", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, `[{"id": 300, "name": "Team A", "group_category_id": 77}]`)
			return
		}
		body := struct {
			Name string `json:"name"`
		}{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		created = append(created, body.Name)
		fmt.Fprintf(w, `{"id": %d, "name": %q, "group_category_id": 77}`, 300+len(created), body.Name)
	})

	cl := newTestClient(t, mux)
	groups, err := cl.CreateGroups(context.Background(), 77, []string{"Team A", "Team B", "Team C"})
	require.NoError(t, err)

	// Team A already exists and must be skipped
	assert.Equal(t, []string{"Team B", "Team C"}, created)
	require.Len(t, groups, 2)
	assert.Equal(t, "Team B", groups[0].Name)
}

func TestClient_DeleteAllGroups(t *testing.T) {
	var deleted []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/group_categories/77/groups", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 300, "name": "Team A"}, {"id": 301, "name": "Team B"}]`)
	})
	mux.HandleFunc("/api/v1/groups/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		deleted = append(deleted, r.URL.Path)
		fmt.Fprint(w, `{}`)
	})

	cl := newTestClient(t, mux)
	require.NoError(t, cl.DeleteAllGroups(context.Background(), 77))
	assert.Equal(t, []string{"/api/v1/groups/300", "/api/v1/groups/301"}, deleted)
}
