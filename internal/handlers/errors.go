package handlers

import (
	"errors"

	"github.com/avvvet/n8n-conversation/internal/models"
	"github.com/avvvet/n8n-conversation/internal/payload"
	"github.com/avvvet/n8n-conversation/internal/webhook"
)

// BadRequestError means the host request cannot be served at all
type BadRequestError struct {
	Reason string
}

func (e *BadRequestError) Error() string {
	return e.Reason
}

// ErrorCode maps a call failure onto the wire error code
func ErrorCode(err error) string {
	var (
		precondition *payload.PreconditionError
		transport    *webhook.TransportError
		shape        *webhook.ShapeError
		registry     *RegistryError
		badRequest   *BadRequestError
	)

	switch {
	case errors.As(err, &precondition):
		return models.ErrorPrecondition
	case errors.As(err, &transport):
		if transport.Timeout {
			return models.ErrorWebhookTimeout
		}
		return models.ErrorWebhookHTTP
	case errors.As(err, &shape):
		return models.ErrorInvalidReply
	case errors.As(err, &registry):
		return models.ErrorRegistry
	case errors.As(err, &badRequest):
		return models.ErrorBadRequest
	default:
		return models.ErrorInternal
	}
}
