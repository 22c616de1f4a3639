package rest

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// FrontendHandler serves the built single-page frontend. Requests for paths
// that do not match a file fall back to the index page so client-side routing
// works on deep links.
type FrontendHandler struct {
	staticDir string
	indexFile string
}

func NewFrontendHandler(staticDir string, indexFile string) *FrontendHandler {
	return &FrontendHandler{staticDir: staticDir, indexFile: indexFile}
}

func (h *FrontendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requested := strings.TrimPrefix(filepath.Clean(r.URL.Path), "/")
	path := filepath.Join(h.staticDir, requested)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.ServeFile(w, r, filepath.Join(h.staticDir, h.indexFile))
		return
	}
	http.ServeFile(w, r, path)
}
