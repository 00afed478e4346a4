package handlers

import (
	"context"
	"errors"

	"github.com/avvvet/n8n-conversation/internal/models"
	"github.com/avvvet/n8n-conversation/internal/webhook"
)

// stubSender records payloads and answers with a fixed reply
type stubSender struct {
	calls    int
	payloads []*models.Payload
	reply    string
	err      error
}

func (s *stubSender) Send(_ context.Context, p *models.Payload) (webhook.Value, error) {
	s.calls++
	s.payloads = append(s.payloads, p)
	if s.err != nil {
		return webhook.Value{}, s.err
	}
	return webhook.ParseValue([]byte(s.reply))
}

type stubCollector struct {
	calls    int
	entities []models.ExposedEntity
	err      error
}

func (c *stubCollector) Collect(context.Context) ([]models.ExposedEntity, error) {
	c.calls++
	return c.entities, c.err
}

var errRegistryDown = errors.New("redis: connection refused")

