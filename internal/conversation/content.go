package conversation

import (
	"github.com/avvvet/n8n-conversation/internal/models"
	"github.com/tmc/langchaingo/llms"
)

// Content is one item of a host chat log. It satisfies llms.ChatMessage so
// it can live in a langchaingo chat history next to plain langchaingo messages.
type Content struct {
	Role    models.Role
	AgentID string
	Text    string
}

var _ llms.ChatMessage = Content{}

// GetType maps the host role onto the closest langchaingo message type
func (c Content) GetType() llms.ChatMessageType {
	switch c.Role {
	case models.RoleUser:
		return llms.ChatMessageTypeHuman
	case models.RoleAssistant:
		return llms.ChatMessageTypeAI
	case models.RoleSystem:
		return llms.ChatMessageTypeSystem
	case models.RoleToolResult:
		return llms.ChatMessageTypeTool
	default:
		return llms.ChatMessageTypeGeneric
	}
}

func (c Content) GetContent() string {
	return c.Text
}

// FromMessages converts wire messages from the host into chat log content
func FromMessages(messages []models.Message) []llms.ChatMessage {
	contents := make([]llms.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		contents = append(contents, Content{
			Role:    msg.Role,
			AgentID: msg.AgentID,
			Text:    msg.Content,
		})
	}
	return contents
}
