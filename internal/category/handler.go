package category

import (
	"net/http"

	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/transport"
)

type ServiceAPI interface {
	GetAllCategories() ([]CategoryResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GetCategories lists the active categories, each marked with whether the
// caller's allowed-category set admits it.
func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok || u == nil {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	categories, err := h.Service.GetAllCategories()
	if err != nil {
		h.HandleServiceError(w, internal.NewInternalError("failed to get categories", err))
		return
	}

	resp := CategoriesResponse{
		Categories: make([]CategoryResponse, 0, len(categories)),
		Restricted: !auth.IsAdmin(u) && len(u.AllowedCategories) > 0,
	}
	for _, c := range categories {
		c.Accessible = auth.HasCategoryAccess(u, c.Name)
		resp.Categories = append(resp.Categories, c)
	}
	h.WriteJSON(w, http.StatusOK, resp)
}
