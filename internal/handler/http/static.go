package http

import (
	"net/http"
	"path/filepath"
)

// ServeDashboard serves the analytics dashboard page
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	http.ServeFile(w, r, filepath.Join("web", "templates", "index.html"))
}
