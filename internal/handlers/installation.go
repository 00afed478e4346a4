package handlers

import (
	"context"
	"log"
	"sort"

	"github.com/avvvet/n8n-conversation/internal/config"
	"github.com/avvvet/n8n-conversation/internal/conversation"
	"github.com/avvvet/n8n-conversation/internal/models"
	"github.com/avvvet/n8n-conversation/internal/webhook"
	"github.com/google/uuid"
)

// Installation serves host requests for one configured n8n instance.
// Task is nil when no AI task webhook is configured.
type Installation struct {
	Name         string
	Slug         string
	Conversation *ConversationHandler
	Task         *TaskHandler
}

// NewInstallation wires the agents of one installation
func NewInstallation(cfg config.Installation, collector EntityCollector) *Installation {
	slug := cfg.Slug()
	inst := &Installation{
		Name: cfg.Name,
		Slug: slug,
		Conversation: NewConversationHandler(
			NewAgent("conversation."+slug, webhook.NewClient(cfg.WebhookURL, cfg.OutputField, cfg.TimeoutDuration())),
			collector,
		),
	}

	if cfg.HasAITask() {
		inst.Task = NewTaskHandler(
			NewAgent("ai_task."+slug, webhook.NewClient(cfg.AITaskWebhookURL, cfg.OutputField, cfg.TimeoutDuration())),
		)
	}
	return inst
}

// Converse handles one conversation turn and reports failures in the response
func (i *Installation) Converse(ctx context.Context, request *models.ConversationRequest) *models.ConversationResponse {
	if request.ConversationID == "" {
		request.ConversationID = uuid.NewString()
	}

	chatLog := conversation.NewChatLog(
		request.ConversationID,
		request.ExtraSystemPrompt,
		conversation.FromMessages(request.Messages),
	)

	if err := i.Conversation.HandleChatLog(ctx, request.UserID, chatLog); err != nil {
		return conversationError(request, err)
	}

	added, err := chatLog.Added(ctx)
	if err != nil {
		return conversationError(request, err)
	}

	return &models.ConversationResponse{
		ConversationID: request.ConversationID,
		Status:         models.StatusOK,
		Content:        added,
	}
}

// GenerateData handles one generate-data task and reports failures in the response
func (i *Installation) GenerateData(ctx context.Context, request *models.TaskRequest) *models.TaskResponse {
	if request.ConversationID == "" {
		request.ConversationID = uuid.NewString()
	}

	if i.Task == nil {
		return taskError(request, &BadRequestError{Reason: "AI task webhook is not configured for " + i.Name})
	}
	if request.Task.Name == "" {
		return taskError(request, &BadRequestError{Reason: "task name is required"})
	}

	chatLog := conversation.NewChatLog(
		request.ConversationID,
		request.ExtraSystemPrompt,
		conversation.FromMessages(request.Messages),
	)

	result, err := i.Task.GenerateData(ctx, request.Task, chatLog)
	if err != nil {
		return taskError(request, err)
	}

	return &models.TaskResponse{
		ConversationID: result.ConversationID,
		Status:         models.StatusOK,
		Data:           result.Data,
	}
}

func conversationError(request *models.ConversationRequest, err error) *models.ConversationResponse {
	errorCode := ErrorCode(err)
	errorMessage := err.Error()
	log.Printf("Conversation %s failed (%s): %s", request.ConversationID, errorCode, errorMessage)

	return &models.ConversationResponse{
		ConversationID: request.ConversationID,
		Status:         models.StatusError,
		Content:        []models.Message{},
		ErrorCode:      &errorCode,
		ErrorMessage:   &errorMessage,
	}
}

func taskError(request *models.TaskRequest, err error) *models.TaskResponse {
	errorCode := ErrorCode(err)
	errorMessage := err.Error()
	log.Printf("Task %q in conversation %s failed (%s): %s", request.Task.Name, request.ConversationID, errorCode, errorMessage)

	return &models.TaskResponse{
		ConversationID: request.ConversationID,
		Status:         models.StatusError,
		ErrorCode:      &errorCode,
		ErrorMessage:   &errorMessage,
	}
}

// Installations indexes installations by slug
type Installations struct {
	bySlug map[string]*Installation
}

func NewInstallations(cfgs []config.Installation, collector EntityCollector) *Installations {
	set := &Installations{bySlug: make(map[string]*Installation, len(cfgs))}
	for _, cfg := range cfgs {
		inst := NewInstallation(cfg, collector)
		set.bySlug[inst.Slug] = inst
	}
	return set
}

// Get finds an installation by slug or display name
func (s *Installations) Get(name string) (*Installation, bool) {
	if inst, ok := s.bySlug[name]; ok {
		return inst, true
	}
	inst, ok := s.bySlug[config.Installation{Name: name}.Slug()]
	return inst, ok
}

// Default returns the installation to use when a request names none.
// It only exists when exactly one installation is configured.
func (s *Installations) Default() (*Installation, bool) {
	if len(s.bySlug) != 1 {
		return nil, false
	}
	for _, inst := range s.bySlug {
		return inst, true
	}
	return nil, false
}

// All returns the installations ordered by slug
func (s *Installations) All() []*Installation {
	all := make([]*Installation, 0, len(s.bySlug))
	for _, inst := range s.bySlug {
		all = append(all, inst)
	}
	sort.Slice(all, func(a, b int) bool { return all[a].Slug < all[b].Slug })
	return all
}
