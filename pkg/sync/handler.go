package sync

import (
	"encoding/json"
	"net/http"
	"time"
)

type StatusDTO struct {
	LastChangedAt string            `json:"lastChangedAt,omitempty"`
	Categories    map[string]string `json:"categories"`
}

type Handler struct {
	tracker *Tracker
}

func NewHandler(tracker *Tracker) *Handler {
	return &Handler{tracker: tracker}
}

// GetStatus handles GET /api/sync/status.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	perCategory, latest := h.tracker.Status()
	dto := StatusDTO{Categories: make(map[string]string, len(perCategory))}
	for category, at := range perCategory {
		dto.Categories[category] = at.Format(time.RFC3339Nano)
	}
	if !latest.IsZero() {
		dto.LastChangedAt = latest.Format(time.RFC3339Nano)
	}

	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
