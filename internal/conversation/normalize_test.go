package conversation

import (
	"testing"

	"github.com/avvvet/n8n-conversation/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/tmc/langchaingo/llms"
)

func TestNormalizeMessagesKeepsOrderAndRoles(t *testing.T) {
	contents := FromMessages([]models.Message{
		{Role: models.RoleSystem, Content: "sys"},
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleAssistant, Content: "hello", AgentID: "conversation.n8n"},
		{Role: models.RoleToolResult, Content: "{}"},
		{Role: models.RoleUser, Content: "hi"},
	})

	got := NormalizeMessages(contents)

	assert.Equal(t, []models.Message{
		{Role: models.RoleSystem, Content: "sys"},
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleAssistant, Content: "hello"},
		{Role: models.RoleToolResult, Content: "{}"},
		{Role: models.RoleUser, Content: "hi"},
	}, got)
}

func TestNormalizeMessagesLangchainTypes(t *testing.T) {
	got := NormalizeMessages([]llms.ChatMessage{
		llms.SystemChatMessage{Content: "s"},
		llms.HumanChatMessage{Content: "u"},
		llms.AIChatMessage{Content: "a"},
		llms.ToolChatMessage{ID: "1", Content: "t"},
		llms.GenericChatMessage{Role: "user", Content: "g"},
	})

	roles := make([]models.Role, 0, len(got))
	for _, msg := range got {
		roles = append(roles, msg.Role)
	}
	assert.Equal(t, []models.Role{
		models.RoleSystem,
		models.RoleUser,
		models.RoleAssistant,
		models.RoleToolResult,
		models.RoleUser,
	}, roles)
	assert.Equal(t, "g", got[4].Content)
}

func TestNormalizeMessagesEmpty(t *testing.T) {
	got := NormalizeMessages(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
