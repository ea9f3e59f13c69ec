package handler

import (
	"net/http"
	"os"
	"path/filepath"
)

// StaticHandler serves the browser UI from a directory on disk.
type StaticHandler struct {
	dir string
}

// NewStaticHandler creates a StaticHandler rooted at dir.
func NewStaticHandler(dir string) *StaticHandler {
	return &StaticHandler{dir: dir}
}

// Index serves index.html, or a JSON 404 when the UI is not installed.
//
// GET /
func (h *StaticHandler) Index(w http.ResponseWriter, r *http.Request) {
	index := filepath.Join(h.dir, "index.html")
	if info, err := os.Stat(index); err != nil || info.IsDir() {
		NotFound(w, r)
		return
	}
	http.ServeFile(w, r, index)
}

// Files serves assets under prefix from the UI directory.
func (h *StaticHandler) Files(prefix string) http.Handler {
	return http.StripPrefix(prefix, http.FileServer(http.Dir(h.dir)))
}
