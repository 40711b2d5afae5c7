package command

import (
	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/core/common/validation"
)

type InterpretRequest struct {
	Transcript string `json:"transcript"`
}

func (r InterpretRequest) Validate() *internal.AppError {
	return validation.ValidateUtterance("transcript", r.Transcript)
}

type InterpretResponse struct {
	Result
	Error *internal.AppError `json:"error,omitempty"`
}

type ListResponse struct {
	Groups []GroupListing `json:"groups"`
}
