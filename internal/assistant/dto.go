package assistant

import (
	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/core/common/validation"
)

type ChatRequest struct {
	Message string `json:"message"`
}

func (r ChatRequest) Validate() *internal.AppError {
	return validation.ValidateUtterance("message", r.Message)
}

type ChatResponse struct {
	Reply
	SessionID string `json:"sessionId"`
}
