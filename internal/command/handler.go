package command

import (
	"context"
	"net/http"

	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/transport"
)

type InterpreterAPI interface {
	Interpret(ctx context.Context, transcript string, u *auth.UserContext) (Result, error)
	Registry() *Registry
}

type Handler struct {
	*transport.BaseHandler
	Interpreter InterpreterAPI
}

func NewHandler(baseHandler *transport.BaseHandler, interpreter InterpreterAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Interpreter: interpreter,
	}
}

// Interpret handles POST /commands/interpret. A denial is answered with 403
// and the failed result so the caller can show the reason.
func (h *Handler) Interpret(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	var req InterpretRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	res, err := h.Interpreter.Interpret(r.Context(), req.Transcript, u)
	if err != nil {
		if internal.IsPermissionDenied(err) {
			appErr, _ := internal.IsAppError(err)
			h.WriteJSON(w, http.StatusForbidden, InterpretResponse{Result: res, Error: appErr})
			return
		}
		h.Logger.Error("Interpret: command failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, InterpretResponse{Result: res})
}

// ListCommands handles GET /commands.
func (h *Handler) ListCommands(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}
	groups := h.Interpreter.Registry().Groups(u)
	if groups == nil {
		groups = []GroupListing{}
	}
	h.WriteJSON(w, http.StatusOK, ListResponse{Groups: groups})
}
