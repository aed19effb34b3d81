package ical

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"git.sr.ht/~pdg/lectern/storage"
	"git.sr.ht/~pdg/lectern/storage/boltdb"
)

type handler struct {
	path    string
	version string
}

// NewHandler serves course calendars out of the boltdb store found under
// path. URLs look like /{course}.ics with an optional ?start=YYYY-MM-DD;
// without it the feed covers one year starting January 1st.
func NewHandler(path, version string) http.Handler {
	return &handler{path: path, version: version}
}

// one second short of a 365 day year
const feedWindow = 8759*time.Hour + 59*time.Minute + 59*time.Second

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	courseURL := strings.TrimSuffix(chi.URLParam(r, "course"), ".ics")
	courseID, err := strconv.ParseInt(courseURL, 10, 64)
	if err != nil || courseID <= 0 {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "invalid course %s", courseURL)
		return
	}

	date := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	if startURL := r.URL.Query().Get("start"); startURL != "" {
		if parsed, err := time.Parse("2006-01-02", startURL); err == nil {
			date = parsed
		}
	}

	st := boltdb.New(boltdb.Config{
		Path: filepath.Join(h.path, boltdb.DefaultFile),
	})
	events, err := st.LoadEvents(storage.Cursor(date, feedWindow), courseID)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "%s", err)
		return
	}

	b := &bytes.Buffer{}
	if err := Write(b, courseID, "", events, h.version); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "%s", err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Write(b.Bytes())
}
