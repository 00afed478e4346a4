// Package payload assembles the request bodies posted to the n8n webhook.
package payload

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avvvet/n8n-conversation/internal/conversation"
	"github.com/avvvet/n8n-conversation/internal/models"
)

// PreconditionError means the host handed over a chat log the call cannot be built from
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

// Base creates the payload fields shared by conversation and task calls
func Base(ctx context.Context, chatLog *conversation.ChatLog) (*models.Payload, error) {
	contents, err := chatLog.Content(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat log: %w", err)
	}

	p := &models.Payload{
		ConversationID: chatLog.ConversationID,
		Messages:       conversation.NormalizeMessages(contents),
	}
	if chatLog.ExtraSystemPrompt != "" {
		p.ExtraSystemPrompt = stringPtr(chatLog.ExtraSystemPrompt)
	}
	return p, nil
}

// ForConversation completes a base payload for a conversation turn. The query
// is the content of the last user message.
func ForConversation(p *models.Payload, userID string) (*models.Payload, error) {
	query, ok := lastUserMessage(p.Messages)
	if !ok {
		return nil, &PreconditionError{Reason: "No user message found in chat log"}
	}
	p.Query = stringPtr(query)

	if userID != "" {
		p.UserID = stringPtr(userID)
	}
	return p, nil
}

// WithExposedEntities attaches the entity list as a JSON string inside the payload
func WithExposedEntities(p *models.Payload, entities []models.ExposedEntity) (*models.Payload, error) {
	if entities == nil {
		entities = []models.ExposedEntity{}
	}
	encoded, err := json.Marshal(entities)
	if err != nil {
		return nil, fmt.Errorf("failed to encode exposed entities: %w", err)
	}
	p.ExposedEntities = stringPtr(string(encoded))
	return p, nil
}

// ForTask completes a base payload for a generate-data task
func ForTask(p *models.Payload, task models.Task) (*models.Payload, error) {
	p.Query = stringPtr(task.Instructions)
	p.TaskName = stringPtr(task.Name)

	if len(task.Structure) > 0 {
		structure, err := ConvertStructure(task.Structure)
		if err != nil {
			return nil, err
		}
		p.Structure = structure
	}

	return p, nil
}

func lastUserMessage(messages []models.Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleUser {
			return messages[i].Content, true
		}
	}
	return "", false
}

func stringPtr(s string) *string {
	return &s
}
