package ical

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(path, version string) http.Handler {
	r := chi.NewRouter()
	r.Get("/{course}", NewHandler(path, version).ServeHTTP)
	return r
}
