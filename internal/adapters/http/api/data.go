package api

import (
	"net/http"
)

// DataHandler serves the dashboard outputs as JSON.
type DataHandler struct {
	deps Dependencies
}

// NewDataHandler creates a new data handler.
func NewDataHandler(deps Dependencies) *DataHandler {
	return &DataHandler{deps: deps}
}

// HandleDashboard handles GET /api/dashboard. The query takes the same
// filter parameters as the page.
func (h *DataHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	d, err := h.deps.Dashboard(r.Context(), parseSelection(r.URL.Query()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "recompute_failed", WrapKind("api.dashboard", ErrRecompute, err))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleOptions handles GET /api/options.
func (h *DataHandler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Options(r.Context()))
}
