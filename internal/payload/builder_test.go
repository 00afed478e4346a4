package payload

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/avvvet/n8n-conversation/internal/conversation"
	"github.com/avvvet/n8n-conversation/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatLog(extra string, messages ...models.Message) *conversation.ChatLog {
	return conversation.NewChatLog("conv-1", extra, conversation.FromMessages(messages))
}

func TestBase(t *testing.T) {
	p, err := Base(context.Background(), chatLog("be brief",
		models.Message{Role: models.RoleSystem, Content: "sys"},
		models.Message{Role: models.RoleUser, Content: "hi"},
	))
	require.NoError(t, err)

	assert.Equal(t, "conv-1", p.ConversationID)
	assert.Len(t, p.Messages, 2)
	require.NotNil(t, p.ExtraSystemPrompt)
	assert.Equal(t, "be brief", *p.ExtraSystemPrompt)
}

func TestBaseWithoutExtraPromptSendsNull(t *testing.T) {
	p, err := Base(context.Background(), chatLog(""))
	require.NoError(t, err)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "null", string(fields["extra_system_prompt"]))
	assert.Equal(t, "[]", string(fields["messages"]))
	assert.NotContains(t, fields, "query")
	assert.NotContains(t, fields, "structure")
}

func TestForConversationUsesLastUserMessage(t *testing.T) {
	cases := []struct {
		name     string
		messages []models.Message
		want     string
	}{
		{
			name:     "single",
			messages: []models.Message{{Role: models.RoleUser, Content: "turn on lights"}},
			want:     "turn on lights",
		},
		{
			name: "last wins",
			messages: []models.Message{
				{Role: models.RoleUser, Content: "first"},
				{Role: models.RoleAssistant, Content: "ok"},
				{Role: models.RoleUser, Content: "second"},
				{Role: models.RoleToolResult, Content: "{}"},
			},
			want: "second",
		},
		{
			name: "system first",
			messages: []models.Message{
				{Role: models.RoleSystem, Content: "sys"},
				{Role: models.RoleUser, Content: "hello"},
			},
			want: "hello",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base, err := Base(context.Background(), chatLog("", tc.messages...))
			require.NoError(t, err)

			p, err := ForConversation(base, "user-1")
			require.NoError(t, err)
			require.NotNil(t, p.Query)
			assert.Equal(t, tc.want, *p.Query)
			assert.Equal(t, "user-1", *p.UserID)
		})
	}
}

func TestForConversationWithoutUserMessage(t *testing.T) {
	base, err := Base(context.Background(), chatLog("",
		models.Message{Role: models.RoleSystem, Content: "sys"},
		models.Message{Role: models.RoleAssistant, Content: "hi"},
	))
	require.NoError(t, err)

	_, err = ForConversation(base, "")

	var precondition *PreconditionError
	require.True(t, errors.As(err, &precondition))
	assert.Equal(t, "No user message found in chat log", err.Error())
}

func TestWithExposedEntitiesIsDoubleEncoded(t *testing.T) {
	area := "kitchen"
	p, err := WithExposedEntities(&models.Payload{}, []models.ExposedEntity{
		{EntityID: "light.kitchen", Name: "Kitchen Light", State: "on", Aliases: []string{}, AreaID: &area},
	})
	require.NoError(t, err)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var outer struct {
		ExposedEntities string `json:"exposed_entities"`
	}
	require.NoError(t, json.Unmarshal(data, &outer))

	var entities []map[string]any
	require.NoError(t, json.Unmarshal([]byte(outer.ExposedEntities), &entities))
	require.Len(t, entities, 1)
	assert.Equal(t, "light.kitchen", entities[0]["entity_id"])
	assert.Equal(t, []any{}, entities[0]["aliases"])
	assert.Equal(t, "kitchen", entities[0]["area_id"])
	assert.Nil(t, entities[0]["area_name"])
}

func TestWithExposedEntitiesEmpty(t *testing.T) {
	p, err := WithExposedEntities(&models.Payload{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", *p.ExposedEntities)
}

func TestForTask(t *testing.T) {
	base, err := Base(context.Background(), chatLog(""))
	require.NoError(t, err)

	p, err := ForTask(base, models.Task{Name: "summary", Instructions: "Summarize the day"})
	require.NoError(t, err)

	assert.Equal(t, "Summarize the day", *p.Query)
	assert.Equal(t, "summary", *p.TaskName)
	assert.Nil(t, p.Structure)
	assert.Nil(t, p.ExposedEntities)
	assert.Nil(t, p.UserID)
}

func TestForTaskWithStructure(t *testing.T) {
	base, err := Base(context.Background(), chatLog(""))
	require.NoError(t, err)

	p, err := ForTask(base, models.Task{
		Name:         "weather",
		Instructions: "Describe the weather",
		Structure: []models.StructureField{
			{Name: "summary", Required: true, Selector: map[string]json.RawMessage{"text": json.RawMessage(`{}`)}},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, p.Structure)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(p.Structure, &schema))
	assert.Equal(t, "object", schema["type"])
}
