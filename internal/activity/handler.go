package activity

import (
	"net/http"
	"strconv"

	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/dashboard"
	"github.com/frahmantamala/crm-assistant/internal/transport"
)

const defaultListed = 50

type Handler struct {
	*transport.BaseHandler
	Log   *Log
	Stats dashboard.Source
}

func NewHandler(baseHandler *transport.BaseHandler, log *Log, stats dashboard.Source) *Handler {
	return &Handler{BaseHandler: baseHandler, Log: log, Stats: stats}
}

type ListResponse struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

// Recent handles GET /activity. Routing restricts it to admins.
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := defaultListed
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.HandleServiceError(w, internal.NewValidationFieldError("limit", "limit must be a positive integer", internal.ErrCodeValidationFailed))
			return
		}
		limit = n
	}
	h.WriteJSON(w, http.StatusOK, ListResponse{Entries: h.Log.Recent(limit), Total: h.Log.Len()})
}

// Dashboard handles GET /dashboard. Routing requires the view_statistics
// feature.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.GetDashboard(r.Context())
	if err != nil {
		h.Logger.Error("Dashboard: failed to load statistics", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	if stats == nil {
		stats = dashboard.Stats{}
	}
	h.WriteJSON(w, http.StatusOK, stats)
}
