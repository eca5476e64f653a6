// Package site serves the dashboard's embedded static assets.
package site

import (
	"context"
	"errors"
	"net/http"
)

// Error constants
var (
	ErrServe = errors.New("static asset serve failed")
)

// Prefix is the URL path the assets are served under.
const Prefix = "/static/"

// Register attaches the static asset routes to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle(Prefix, NewAssetHandler())
}

// AssetHandler serves files from the embedded static directory.
type AssetHandler struct {
	files http.Handler
}

// NewAssetHandler creates a new asset handler.
func NewAssetHandler() *AssetHandler {
	return &AssetHandler{files: http.StripPrefix(Prefix, http.FileServer(FS()))}
}

// ServeHTTP handles GET /static/* requests. Directory listings are not served.
func (h *AssetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}
	if r.URL.Path == Prefix || r.URL.Path[len(r.URL.Path)-1] == '/' {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	h.files.ServeHTTP(w, r)
}
