package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/avvvet/n8n-conversation/internal/config"
	"github.com/avvvet/n8n-conversation/internal/handlers"
	"github.com/avvvet/n8n-conversation/internal/models"
	"github.com/nats-io/nats.go"
)

type NATSTransport struct {
	conn          *nats.Conn
	config        *config.Config
	installations *handlers.Installations
	subs          []*nats.Subscription
}

func NewNATSTransport(cfg *config.Config, installations *handlers.Installations) (*NATSTransport, error) {
	// Connect to NATS
	conn, err := nats.Connect(cfg.NatsURL,
		nats.Name(cfg.ServiceName),
		nats.Timeout(cfg.NatsTimeout),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1), // Infinite reconnects
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Printf("Connected to NATS server: %s", cfg.NatsURL)

	return &NATSTransport{
		conn:          conn,
		config:        cfg,
		installations: installations,
	}, nil
}

// ConversationSubject is the request subject of an installation's conversation agent
func ConversationSubject(prefix, slug string) string {
	return fmt.Sprintf("%s.%s.conversation", prefix, slug)
}

// TaskSubject is the request subject of an installation's AI task agent
func TaskSubject(prefix, slug string) string {
	return fmt.Sprintf("%s.%s.ai_task", prefix, slug)
}

func (nt *NATSTransport) Start() error {
	for _, inst := range nt.installations.All() {
		subject := ConversationSubject(nt.config.NatsSubjectPrefix, inst.Slug)
		if err := nt.subscribe(subject, nt.conversationHandler(inst)); err != nil {
			return err
		}

		// The AI task agent only exists when its webhook is configured
		if inst.Task == nil {
			continue
		}
		subject = TaskSubject(nt.config.NatsSubjectPrefix, inst.Slug)
		if err := nt.subscribe(subject, nt.taskHandler(inst)); err != nil {
			return err
		}
	}

	// Make sure the server has every subscription before requests arrive
	if err := nt.conn.Flush(); err != nil {
		return fmt.Errorf("failed to flush subscriptions: %w", err)
	}
	return nil
}

func (nt *NATSTransport) subscribe(subject string, handler nats.MsgHandler) error {
	sub, err := nt.conn.Subscribe(subject, handler)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	nt.subs = append(nt.subs, sub)

	log.Printf("Subscribed to subject: %s", subject)
	return nil
}

func (nt *NATSTransport) conversationHandler(inst *handlers.Installation) nats.MsgHandler {
	return func(msg *nats.Msg) {
		var request models.ConversationRequest
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Printf("Error parsing conversation request: %v", err)
			nt.sendErrorResponse(msg, request.ConversationID, "Invalid request format")
			return
		}

		log.Printf("Processing conversation request for %s: %s", inst.Slug, request.ConversationID)

		// The webhook client enforces the installation timeout
		response := inst.Converse(context.Background(), &request)

		if err := nt.sendResponse(msg, response); err != nil {
			log.Printf("Error sending response: %v", err)
		}
	}
}

func (nt *NATSTransport) taskHandler(inst *handlers.Installation) nats.MsgHandler {
	return func(msg *nats.Msg) {
		var request models.TaskRequest
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Printf("Error parsing task request: %v", err)
			nt.sendErrorResponse(msg, request.ConversationID, "Invalid request format")
			return
		}

		log.Printf("Processing task request %q for %s: %s", request.Task.Name, inst.Slug, request.ConversationID)

		response := inst.GenerateData(context.Background(), &request)

		if err := nt.sendResponse(msg, response); err != nil {
			log.Printf("Error sending response: %v", err)
		}
	}
}

func (nt *NATSTransport) sendResponse(msg *nats.Msg, response any) error {
	responseData, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if err := msg.Respond(responseData); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Printf("Response sent on %s", msg.Subject)
	return nil
}

func (nt *NATSTransport) sendErrorResponse(msg *nats.Msg, conversationID, errorMessage string) {
	errorCode := models.ErrorBadRequest
	response := &models.ConversationResponse{
		ConversationID: conversationID,
		Status:         models.StatusError,
		Content:        []models.Message{},
		ErrorCode:      &errorCode,
		ErrorMessage:   &errorMessage,
	}

	if err := nt.sendResponse(msg, response); err != nil {
		log.Printf("Failed to send error response: %v", err)
	}
}

func (nt *NATSTransport) Close() error {
	for _, sub := range nt.subs {
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			log.Printf("Failed to unsubscribe from %s: %v", sub.Subject, err)
		}
	}
	nt.subs = nil

	if nt.conn != nil && !nt.conn.IsClosed() {
		nt.conn.Close()
		log.Println("NATS connection closed")
	}
	return nil
}
