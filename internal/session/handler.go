package session

import (
	"context"
	"net/http"

	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/command"
	"github.com/frahmantamala/crm-assistant/internal/transport"
)

type Interpreter interface {
	Interpret(ctx context.Context, transcript string, u *auth.UserContext) (command.Result, error)
}

type Handler struct {
	*transport.BaseHandler
	Sessions    *Registry
	Refresher   *Refresher
	Interpreter Interpreter
}

func NewHandler(baseHandler *transport.BaseHandler, sessions *Registry, refresher *Refresher, interpreter Interpreter) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Sessions:    sessions,
		Refresher:   refresher,
		Interpreter: interpreter,
	}
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) (*Store, bool) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return nil, false
	}
	s, err := h.Sessions.Acquire(r.Context(), u)
	if err != nil {
		h.HandleServiceError(w, err)
		return nil, false
	}
	return s, true
}

// Refresh handles POST /session/refresh.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	summary, err := h.Refresher.Refresh(r.Context(), s)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, summary)
}

// History handles GET /session/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, HistoryResponse{SessionID: s.ID(), Turns: s.History()})
}

// ClearHistory handles DELETE /session/history.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	s.Clear()
	h.WriteJSON(w, http.StatusOK, HistoryResponse{SessionID: s.ID(), Turns: s.History()})
}

// VoiceStart handles POST /voice/start.
func (h *Handler) VoiceStart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	id, stopped := s.Voice().Start()
	if stopped != "" {
		h.Logger.Debug("previous capture stopped", "session_id", s.ID(), "capture_id", stopped)
	}
	h.WriteJSON(w, http.StatusOK, VoiceStartResponse{CaptureID: id, Stopped: stopped})
}

// VoiceInterim handles POST /voice/interim. The transcript is only displayed.
func (h *Handler) VoiceInterim(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	var req VoiceTranscriptRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if err := s.Voice().Interim(req.CaptureID, req.Transcript); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, s.Voice().Status())
}

// VoiceFinal handles POST /voice/final and interprets the transcript once.
func (h *Handler) VoiceFinal(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	var req VoiceTranscriptRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	done, err := s.Voice().Final(req.CaptureID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	defer done()

	s.Append(SpeakerUser, req.Transcript)
	res, err := h.Interpreter.Interpret(r.Context(), req.Transcript, s.User())
	if err != nil {
		if internal.IsPermissionDenied(err) {
			appErr, _ := internal.IsAppError(err)
			s.Append(SpeakerAssistant, res.Message)
			h.WriteJSON(w, http.StatusForbidden, VoiceFinalResponse{Result: res, Error: appErr})
			return
		}
		h.HandleServiceError(w, err)
		return
	}
	s.Append(SpeakerAssistant, res.Message)
	h.WriteJSON(w, http.StatusOK, VoiceFinalResponse{Result: res})
}

// VoiceStop handles POST /voice/stop.
func (h *Handler) VoiceStop(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	s.Voice().Stop()
	h.WriteJSON(w, http.StatusOK, s.Voice().Status())
}
