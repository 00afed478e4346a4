package transport

import (
	"net/http"

	"github.com/avvvet/n8n-conversation/internal/handlers"
	"github.com/avvvet/n8n-conversation/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// HTTPHandler exposes the installations over HTTP for hosts without NATS
type HTTPHandler struct {
	installations *handlers.Installations
}

func NewHTTPHandler(installations *handlers.Installations) *HTTPHandler {
	return &HTTPHandler{installations: installations}
}

// NewHTTPServer creates the echo server with all routes registered
func NewHTTPServer(installations *handlers.Installations) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	NewHTTPHandler(installations).RegisterRoutes(e)

	return e
}

func (h *HTTPHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api/installations")
	api.GET("", h.ListInstallations)
	api.POST("/:name/conversation", h.Converse)
	api.POST("/:name/ai_task", h.GenerateData)
}

// Health reports liveness
// GET /healthz
func (h *HTTPHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ListInstallations returns the configured agents
// GET /api/installations
func (h *HTTPHandler) ListInstallations(c echo.Context) error {
	type agentInfo struct {
		Name           string `json:"name"`
		Slug           string `json:"slug"`
		ConversationID string `json:"conversation_entity_id"`
		AITaskID       string `json:"ai_task_entity_id,omitempty"`
	}

	all := h.installations.All()
	out := make([]agentInfo, 0, len(all))
	for _, inst := range all {
		info := agentInfo{
			Name:           inst.Name,
			Slug:           inst.Slug,
			ConversationID: inst.Conversation.EntityID(),
		}
		if inst.Task != nil {
			info.AITaskID = inst.Task.EntityID()
		}
		out = append(out, info)
	}
	return c.JSON(http.StatusOK, map[string]any{"installations": out})
}

// Converse handles one conversation turn
// POST /api/installations/:name/conversation
func (h *HTTPHandler) Converse(c echo.Context) error {
	inst, ok := h.installations.Get(c.Param("name"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "installation not found"})
	}

	var request models.ConversationRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	response := inst.Converse(c.Request().Context(), &request)
	return c.JSON(statusFor(response.ErrorCode), response)
}

// GenerateData handles one generate-data task
// POST /api/installations/:name/ai_task
func (h *HTTPHandler) GenerateData(c echo.Context) error {
	inst, ok := h.installations.Get(c.Param("name"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "installation not found"})
	}

	var request models.TaskRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	response := inst.GenerateData(c.Request().Context(), &request)
	return c.JSON(statusFor(response.ErrorCode), response)
}

func statusFor(errorCode *string) int {
	if errorCode == nil {
		return http.StatusOK
	}

	switch *errorCode {
	case models.ErrorPrecondition, models.ErrorBadRequest:
		return http.StatusBadRequest
	case models.ErrorWebhookTimeout:
		return http.StatusGatewayTimeout
	case models.ErrorWebhookHTTP, models.ErrorInvalidReply:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
