package user

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListUsers(ctx context.Context) ([]Summary, error)
	GetByID(ctx context.Context, id int64) (*Summary, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

type ListResponse struct {
	Users  []Summary   `json:"users"`
	ByRole []RoleCount `json:"byRole"`
}

// ListUsers handles GET /users. Routing restricts it to admins.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		h.Logger.Error("ListUsers: failed to list users", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	if users == nil {
		users = []Summary{}
	}
	h.WriteJSON(w, http.StatusOK, ListResponse{Users: users, ByRole: CountByRole(users)})
}

// GetUser handles GET /users/{id}. Routing restricts it to admins.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		h.HandleServiceError(w, internal.NewValidationFieldError("id", "id must be a positive integer", internal.ErrCodeValidationFailed))
		return
	}

	u, err := h.Service.GetByID(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		h.HandleServiceError(w, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound))
		return
	}
	if err != nil {
		h.Logger.Error("GetUser: failed to load user", "user_id", id, "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}
