package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/avvvet/n8n-conversation/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDataUnstructuredCoercesToText(t *testing.T) {
	sender := &stubSender{reply: `{"x":1}`}
	handler := NewTaskHandler(NewAgent("ai_task.n8n", sender))

	result, err := handler.GenerateData(context.Background(), models.Task{
		Name:         "demo",
		Instructions: "Give me x",
	}, newChatLog())
	require.NoError(t, err)

	assert.Equal(t, "conv-1", result.ConversationID)
	assert.Equal(t, `{"x":1}`, result.Data)

	require.Equal(t, 1, sender.calls)
	sent := sender.payloads[0]
	assert.Equal(t, "Give me x", *sent.Query)
	assert.Equal(t, "demo", *sent.TaskName)
	assert.Nil(t, sent.ExposedEntities)
}

func TestGenerateDataUnstructuredString(t *testing.T) {
	handler := NewTaskHandler(NewAgent("ai_task.n8n", &stubSender{reply: `"It is sunny"`}))

	result, err := handler.GenerateData(context.Background(), models.Task{Name: "weather", Instructions: "Weather?"}, newChatLog())
	require.NoError(t, err)
	assert.Equal(t, "It is sunny", result.Data)
}

func TestGenerateDataStructuredReturnsRawJSON(t *testing.T) {
	sender := &stubSender{reply: `{"title": "Sunny", "extra": true}`}
	handler := NewTaskHandler(NewAgent("ai_task.n8n", sender))

	result, err := handler.GenerateData(context.Background(), models.Task{
		Name:         "weather",
		Instructions: "Weather?",
		Structure: []models.StructureField{
			{Name: "title", Required: true, Selector: map[string]json.RawMessage{"text": json.RawMessage(`{}`)}},
		},
	}, newChatLog())
	require.NoError(t, err)

	raw, ok := result.Data.(json.RawMessage)
	require.True(t, ok, "got %T", result.Data)
	// No local schema validation: the extra field survives
	assert.JSONEq(t, `{"title": "Sunny", "extra": true}`, string(raw))
	assert.NotNil(t, sender.payloads[0].Structure)
}

func TestGenerateDataDoesNotNeedUserMessage(t *testing.T) {
	sender := &stubSender{reply: `"done"`}
	handler := NewTaskHandler(NewAgent("ai_task.n8n", sender))

	_, err := handler.GenerateData(context.Background(), models.Task{Name: "t", Instructions: "do it"},
		newChatLog(models.Message{Role: models.RoleSystem, Content: "sys"}))
	require.NoError(t, err)
	assert.Equal(t, 1, sender.calls)
}
