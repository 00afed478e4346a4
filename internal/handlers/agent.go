package handlers

import (
	"context"
	"log"

	"github.com/avvvet/n8n-conversation/internal/conversation"
	"github.com/avvvet/n8n-conversation/internal/models"
	"github.com/avvvet/n8n-conversation/internal/payload"
	"github.com/avvvet/n8n-conversation/internal/webhook"
)

// Agent is the helper shared by the conversation and task handlers: it knows
// its entity id and the webhook it talks to.
type Agent struct {
	EntityID string
	sender   webhook.Sender
}

func NewAgent(entityID string, sender webhook.Sender) *Agent {
	return &Agent{
		EntityID: entityID,
		sender:   sender,
	}
}

func (a *Agent) buildPayload(ctx context.Context, chatLog *conversation.ChatLog) (*models.Payload, error) {
	return payload.Base(ctx, chatLog)
}

func (a *Agent) sendPayload(ctx context.Context, p *models.Payload) (webhook.Value, error) {
	reply, err := a.sender.Send(ctx, p)
	if err != nil {
		log.Printf("%s: webhook call failed for conversation %s: %v", a.EntityID, p.ConversationID, err)
		return webhook.Value{}, err
	}
	return reply, nil
}
