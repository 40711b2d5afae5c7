package session

import (
	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/command"
	"github.com/frahmantamala/crm-assistant/internal/core/common/validation"
)

type HistoryResponse struct {
	SessionID string `json:"sessionId"`
	Turns     []Turn `json:"turns"`
}

type VoiceStartResponse struct {
	CaptureID string `json:"captureId"`
	Stopped   string `json:"stopped,omitempty"`
}

type VoiceTranscriptRequest struct {
	CaptureID  string `json:"captureId"`
	Transcript string `json:"transcript"`
}

func (r VoiceTranscriptRequest) Validate() *internal.AppError {
	if r.CaptureID == "" {
		return internal.NewValidationFieldError("captureId", "captureId is required", internal.ErrCodeValidationFailed)
	}
	return validation.ValidateUtterance("transcript", r.Transcript)
}

type VoiceFinalResponse struct {
	command.Result
	Error *internal.AppError `json:"error,omitempty"`
}
