package conversation

import (
	"github.com/avvvet/n8n-conversation/internal/models"
	"github.com/tmc/langchaingo/llms"
)

// NormalizeMessages converts chat log content into the {role, content}
// records n8n receives. Order is kept and nothing is filtered.
func NormalizeMessages(contents []llms.ChatMessage) []models.Message {
	messages := make([]models.Message, 0, len(contents))
	for _, content := range contents {
		messages = append(messages, models.Message{
			Role:    roleOf(content),
			Content: content.GetContent(),
		})
	}
	return messages
}

func roleOf(msg llms.ChatMessage) models.Role {
	if c, ok := msg.(Content); ok {
		return c.Role
	}

	switch msg.GetType() {
	case llms.ChatMessageTypeHuman:
		return models.RoleUser
	case llms.ChatMessageTypeAI:
		return models.RoleAssistant
	case llms.ChatMessageTypeSystem:
		return models.RoleSystem
	case llms.ChatMessageTypeTool, llms.ChatMessageTypeFunction:
		return models.RoleToolResult
	}

	if generic, ok := msg.(llms.GenericChatMessage); ok {
		return models.Role(generic.Role)
	}
	return models.Role(msg.GetType())
}
