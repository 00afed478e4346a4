package handlers

import (
	"context"
	"log"

	"github.com/avvvet/n8n-conversation/internal/conversation"
	"github.com/avvvet/n8n-conversation/internal/models"
	"github.com/avvvet/n8n-conversation/internal/payload"
)

// TaskHandler runs generate-data tasks through n8n
type TaskHandler struct {
	agent *Agent
}

func NewTaskHandler(agent *Agent) *TaskHandler {
	return &TaskHandler{agent: agent}
}

// EntityID of the AI task agent
func (h *TaskHandler) EntityID() string {
	return h.agent.EntityID
}

// GenerateData sends the task to the webhook. Without a structure the reply
// is returned as text; with one the raw JSON is returned unvalidated.
func (h *TaskHandler) GenerateData(ctx context.Context, task models.Task, chatLog *conversation.ChatLog) (*models.TaskResult, error) {
	p, err := h.agent.buildPayload(ctx, chatLog)
	if err != nil {
		return nil, err
	}

	p, err = payload.ForTask(p, task)
	if err != nil {
		return nil, err
	}

	reply, err := h.agent.sendPayload(ctx, p)
	if err != nil {
		return nil, err
	}

	log.Printf("Task %q for conversation %s completed by %s", task.Name, chatLog.ConversationID, h.agent.EntityID)

	if len(task.Structure) == 0 {
		return &models.TaskResult{
			ConversationID: chatLog.ConversationID,
			Data:           reply.Text(),
		}, nil
	}

	return &models.TaskResult{
		ConversationID: chatLog.ConversationID,
		Data:           reply.Raw(),
	}, nil
}
