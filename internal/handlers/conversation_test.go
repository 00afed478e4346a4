package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/avvvet/n8n-conversation/internal/conversation"
	"github.com/avvvet/n8n-conversation/internal/models"
	"github.com/avvvet/n8n-conversation/internal/payload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatLog(messages ...models.Message) *conversation.ChatLog {
	return conversation.NewChatLog("conv-1", "", conversation.FromMessages(messages))
}

func TestHandleChatLogAppendsReply(t *testing.T) {
	sender := &stubSender{reply: `"Lights on"`}
	handler := NewConversationHandler(NewAgent("conversation.n8n", sender), &stubCollector{})

	chatLog := newChatLog(
		models.Message{Role: models.RoleSystem, Content: "sys"},
		models.Message{Role: models.RoleUser, Content: "turn on lights"},
	)
	require.NoError(t, handler.HandleChatLog(context.Background(), "user-1", chatLog))

	added, err := chatLog.Added(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Message{
		{Role: models.RoleAssistant, Content: "Lights on", AgentID: "conversation.n8n"},
	}, added)

	require.Equal(t, 1, sender.calls)
	sent := sender.payloads[0]
	assert.Equal(t, "turn on lights", *sent.Query)
	assert.Equal(t, "user-1", *sent.UserID)
	assert.Equal(t, "[]", *sent.ExposedEntities)
	assert.Len(t, sent.Messages, 2)
}

func TestHandleChatLogWithoutUserMessageNeverSends(t *testing.T) {
	sender := &stubSender{reply: `"unused"`}
	collector := &stubCollector{}
	handler := NewConversationHandler(NewAgent("conversation.n8n", sender), collector)

	chatLog := newChatLog(models.Message{Role: models.RoleSystem, Content: "sys"})
	err := handler.HandleChatLog(context.Background(), "", chatLog)

	var precondition *payload.PreconditionError
	require.True(t, errors.As(err, &precondition), "got %v", err)
	assert.Equal(t, 0, sender.calls)
	assert.Equal(t, 0, collector.calls)

	added, err := chatLog.Added(context.Background())
	require.NoError(t, err)
	assert.Empty(t, added)
}

func TestHandleChatLogSendsExposedEntities(t *testing.T) {
	area := "Kitchen"
	sender := &stubSender{reply: `"ok"`}
	collector := &stubCollector{entities: []models.ExposedEntity{
		{EntityID: "light.kitchen", Name: "Kitchen Light", State: "on", Aliases: []string{"ceiling"}, AreaName: &area},
	}}
	handler := NewConversationHandler(NewAgent("conversation.n8n", sender), collector)

	require.NoError(t, handler.HandleChatLog(context.Background(), "", newChatLog(
		models.Message{Role: models.RoleUser, Content: "hi"},
	)))

	var entities []models.ExposedEntity
	require.NoError(t, json.Unmarshal([]byte(*sender.payloads[0].ExposedEntities), &entities))
	assert.Equal(t, collector.entities, entities)
}

func TestHandleChatLogRegistryFailure(t *testing.T) {
	sender := &stubSender{reply: `"ok"`}
	handler := NewConversationHandler(NewAgent("conversation.n8n", sender), &stubCollector{err: errRegistryDown})

	err := handler.HandleChatLog(context.Background(), "", newChatLog(
		models.Message{Role: models.RoleUser, Content: "hi"},
	))

	var registry *RegistryError
	require.True(t, errors.As(err, &registry))
	assert.ErrorIs(t, err, errRegistryDown)
	assert.Equal(t, 0, sender.calls)
}

func TestHandleChatLogNonStringReply(t *testing.T) {
	sender := &stubSender{reply: `{"speech": "hi"}`}
	handler := NewConversationHandler(NewAgent("conversation.n8n", sender), nil)

	chatLog := newChatLog(models.Message{Role: models.RoleUser, Content: "hi"})
	require.NoError(t, handler.HandleChatLog(context.Background(), "", chatLog))

	added, err := chatLog.Added(context.Background())
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, `{"speech":"hi"}`, added[0].Content)
}

func TestHandleChatLogWebhookFailureLeavesChatLog(t *testing.T) {
	sender := &stubSender{err: errors.New("boom")}
	handler := NewConversationHandler(NewAgent("conversation.n8n", sender), nil)

	chatLog := newChatLog(models.Message{Role: models.RoleUser, Content: "hi"})
	require.Error(t, handler.HandleChatLog(context.Background(), "", chatLog))

	added, err := chatLog.Added(context.Background())
	require.NoError(t, err)
	assert.Empty(t, added)
	assert.Equal(t, 1, sender.calls)
}
