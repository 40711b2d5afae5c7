package assistant

import (
	"context"
	"net/http"

	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/session"
	"github.com/frahmantamala/crm-assistant/internal/transport"
)

type ChatAPI interface {
	Chat(ctx context.Context, store *session.Store, message string) Reply
}

type Handler struct {
	*transport.BaseHandler
	Sessions *session.Registry
	Service  ChatAPI
}

func NewHandler(baseHandler *transport.BaseHandler, sessions *session.Registry, svc ChatAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Sessions:    sessions,
		Service:     svc,
	}
}

// Chat handles POST /chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok || u == nil {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	var req ChatRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	store, err := h.Sessions.Acquire(r.Context(), u)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	reply := h.Service.Chat(r.Context(), store, req.Message)
	h.WriteJSON(w, http.StatusOK, ChatResponse{Reply: reply, SessionID: store.ID()})
}
