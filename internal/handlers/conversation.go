package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/avvvet/n8n-conversation/internal/conversation"
	"github.com/avvvet/n8n-conversation/internal/models"
	"github.com/avvvet/n8n-conversation/internal/payload"
)

// EntityCollector lists the entities exposed to conversation agents
type EntityCollector interface {
	Collect(ctx context.Context) ([]models.ExposedEntity, error)
}

// RegistryError wraps a failure reading host registries
type RegistryError struct {
	Err error
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("failed to collect exposed entities: %v", e.Err)
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

// ConversationHandler sends conversation turns to n8n
type ConversationHandler struct {
	agent     *Agent
	collector EntityCollector
}

func NewConversationHandler(agent *Agent, collector EntityCollector) *ConversationHandler {
	return &ConversationHandler{
		agent:     agent,
		collector: collector,
	}
}

// EntityID of the conversation agent
func (h *ConversationHandler) EntityID() string {
	return h.agent.EntityID
}

// HandleChatLog sends the chat log to the webhook and appends the reply to it
// as one assistant item.
func (h *ConversationHandler) HandleChatLog(ctx context.Context, userID string, chatLog *conversation.ChatLog) error {
	p, err := h.agent.buildPayload(ctx, chatLog)
	if err != nil {
		return err
	}

	// Fails before anything leaves the process
	p, err = payload.ForConversation(p, userID)
	if err != nil {
		log.Printf("%s: rejected chat log of conversation %s:\n%s", h.agent.EntityID, chatLog.ConversationID, chatLog.Transcript(ctx))
		return err
	}

	var entities []models.ExposedEntity
	if h.collector != nil {
		entities, err = h.collector.Collect(ctx)
		if err != nil {
			return &RegistryError{Err: err}
		}
	}
	p, err = payload.WithExposedEntities(p, entities)
	if err != nil {
		return err
	}

	reply, err := h.agent.sendPayload(ctx, p)
	if err != nil {
		return err
	}

	if err := chatLog.AddAssistantContent(ctx, h.agent.EntityID, reply.Text()); err != nil {
		return err
	}

	log.Printf("Conversation %s answered by %s (%d exposed entities)", chatLog.ConversationID, h.agent.EntityID, len(entities))
	return nil
}
