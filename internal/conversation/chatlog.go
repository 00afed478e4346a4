package conversation

import (
	"context"
	"fmt"

	"github.com/avvvet/n8n-conversation/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/memory"
)

// ChatLog is the host-supplied state of a single conversation for one call.
// It is built from the request snapshot and discarded once the reply is sent.
type ChatLog struct {
	ConversationID    string
	ExtraSystemPrompt string

	history  *memory.ChatMessageHistory
	snapshot int
}

// NewChatLog creates a chat log holding the given content in order
func NewChatLog(conversationID, extraSystemPrompt string, contents []llms.ChatMessage) *ChatLog {
	return &ChatLog{
		ConversationID:    conversationID,
		ExtraSystemPrompt: extraSystemPrompt,
		history:           memory.NewChatMessageHistory(memory.WithPreviousMessages(contents)),
		snapshot:          len(contents),
	}
}

// Content returns every item of the chat log in chronological order
func (l *ChatLog) Content(ctx context.Context) ([]llms.ChatMessage, error) {
	return l.history.Messages(ctx)
}

// AddAssistantContent appends one assistant item produced by the given agent
func (l *ChatLog) AddAssistantContent(ctx context.Context, agentID, text string) error {
	content := Content{
		Role:    models.RoleAssistant,
		AgentID: agentID,
		Text:    text,
	}
	if err := l.history.AddMessage(ctx, content); err != nil {
		return fmt.Errorf("failed to add assistant content: %w", err)
	}
	return nil
}

// Added returns the items appended since the chat log was created
func (l *ChatLog) Added(ctx context.Context) ([]models.Message, error) {
	contents, err := l.Content(ctx)
	if err != nil {
		return nil, err
	}
	if len(contents) <= l.snapshot {
		return []models.Message{}, nil
	}

	added := make([]models.Message, 0, len(contents)-l.snapshot)
	for _, msg := range contents[l.snapshot:] {
		out := models.Message{Role: roleOf(msg), Content: msg.GetContent()}
		if c, ok := msg.(Content); ok {
			out.AgentID = c.AgentID
		}
		added = append(added, out)
	}
	return added, nil
}

// Transcript renders the chat log as plain text for logging
func (l *ChatLog) Transcript(ctx context.Context) string {
	contents, err := l.Content(ctx)
	if err != nil {
		return ""
	}
	transcript, err := llms.GetBufferString(contents, "User", "Assistant")
	if err != nil {
		return ""
	}
	return transcript
}
