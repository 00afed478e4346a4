package models

import "encoding/json"

// Role of a message sent to the webhook
type Role string

const (
	RoleAssistant  Role = "assistant"
	RoleSystem     Role = "system"
	RoleToolResult Role = "tool_result"
	RoleUser       Role = "user"
)

// Message is a single chat log item as sent to n8n
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	// AgentID is set on assistant content produced by an agent. It is never sent to n8n.
	AgentID string `json:"agent_id,omitempty"`
}

// Payload is the body posted to the webhook
type Payload struct {
	ConversationID    string          `json:"conversation_id"`
	Messages          []Message       `json:"messages"`
	Query             *string         `json:"query,omitempty"`
	ExtraSystemPrompt *string         `json:"extra_system_prompt"`
	TaskName          *string         `json:"task_name,omitempty"`
	Structure         json.RawMessage `json:"structure,omitempty"`
	UserID            *string         `json:"user_id,omitempty"`
	// ExposedEntities holds the JSON-encoded entity list. n8n workflows expect a string here.
	ExposedEntities *string `json:"exposed_entities,omitempty"`
}

// ExposedEntity is a home-automation entity visible to conversation agents
type ExposedEntity struct {
	EntityID string   `json:"entity_id"`
	Name     string   `json:"name"`
	State    string   `json:"state"`
	Aliases  []string `json:"aliases"`
	AreaID   *string  `json:"area_id"`
	AreaName *string  `json:"area_name"`
}

// Host request for one conversation turn
type ConversationRequest struct {
	ConversationID    string    `json:"conversation_id"`
	UserID            string    `json:"user_id,omitempty"`
	ExtraSystemPrompt string    `json:"extra_system_prompt,omitempty"`
	Messages          []Message `json:"messages"`
}

// Response to the host for one conversation turn
type ConversationResponse struct {
	ConversationID string    `json:"conversation_id"`
	Status         string    `json:"status"` // "OK", "ERROR"
	Content        []Message `json:"content"`
	ErrorCode      *string   `json:"error_code,omitempty"`
	ErrorMessage   *string   `json:"error_message,omitempty"`
}

// StructureField describes one field of a requested structured output.
// Selector follows the host's selector format, e.g. {"text": {}} or {"select": {"options": ["a", "b"]}}.
type StructureField struct {
	Name        string                     `json:"name"`
	Description string                     `json:"description,omitempty"`
	Required    bool                       `json:"required,omitempty"`
	Selector    map[string]json.RawMessage `json:"selector"`
}

// Task is a generate-data task
type Task struct {
	Name         string           `json:"name"`
	Instructions string           `json:"instructions"`
	Structure    []StructureField `json:"structure,omitempty"`
}

// Host request for a generate-data task
type TaskRequest struct {
	ConversationID    string    `json:"conversation_id"`
	ExtraSystemPrompt string    `json:"extra_system_prompt,omitempty"`
	Messages          []Message `json:"messages"`
	Task              Task      `json:"task"`
}

// TaskResult is the outcome of a generate-data task. Data is a string for
// unstructured tasks and raw JSON for structured ones.
type TaskResult struct {
	ConversationID string `json:"conversation_id"`
	Data           any    `json:"data"`
}

// Response to the host for a generate-data task
type TaskResponse struct {
	ConversationID string  `json:"conversation_id"`
	Status         string  `json:"status"`
	Data           any     `json:"data,omitempty"`
	ErrorCode      *string `json:"error_code,omitempty"`
	ErrorMessage   *string `json:"error_message,omitempty"`
}

// Status constants
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Error codes
const (
	ErrorPrecondition   = "PRECONDITION_FAILED"
	ErrorWebhookHTTP    = "WEBHOOK_HTTP_ERROR"
	ErrorWebhookTimeout = "WEBHOOK_TIMEOUT"
	ErrorInvalidReply   = "INVALID_RESPONSE"
	ErrorRegistry       = "REGISTRY_ERROR"
	ErrorBadRequest     = "BAD_REQUEST"
	ErrorInternal       = "INTERNAL_ERROR"
)
