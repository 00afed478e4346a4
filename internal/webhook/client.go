// Package webhook posts payloads to an n8n webhook and extracts the reply.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avvvet/n8n-conversation/internal/models"
)

// DefaultTimeout applies when an installation does not set one
const DefaultTimeout = 30 * time.Second

// Sender delivers one payload and returns the configured output field
type Sender interface {
	Send(ctx context.Context, payload *models.Payload) (Value, error)
}

// Client is a Sender for a single webhook URL
type Client struct {
	url         string
	outputField string
	timeout     time.Duration
	client      *http.Client
}

var _ Sender = (*Client)(nil)

func NewClient(url, outputField string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:         url,
		outputField: outputField,
		timeout:     timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// URL returns the webhook address
func (c *Client) URL() string {
	return c.url
}

// Send posts the payload once. It succeeds only on HTTP 200 with a JSON
// object body holding a non-empty output field.
func (c *Client) Send(ctx context.Context, payload *models.Payload) (Value, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Value{}, fmt.Errorf("failed to marshal payload: %w", err)
	}
	log.Printf("n8n webhook request: %s", body)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Value{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Value{}, c.transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Value{}, &TransportError{
			StatusCode: resp.StatusCode,
			Reason:     reasonPhrase(resp),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Value{}, c.transportError(err)
	}

	reply, err := c.extract(data)
	if err != nil {
		return Value{}, err
	}

	log.Printf("n8n webhook response: %s", truncate(data))
	return reply, nil
}

func (c *Client) extract(data []byte) (Value, error) {
	result, err := ParseValue(data)
	if err != nil {
		return Value{}, &ShapeError{Reason: "body is not JSON", Body: truncate(data)}
	}
	if result.Kind() != KindObject {
		return Value{}, &ShapeError{
			Reason: fmt.Sprintf("expected a JSON object, got %s", result.Kind()),
			Body:   truncate(data),
		}
	}

	reply, ok := result.Field(c.outputField)
	if !ok {
		return Value{}, &ShapeError{
			Reason: fmt.Sprintf("missing field %q", c.outputField),
			Body:   truncate(data),
		}
	}
	if reply.IsEmpty() {
		return Value{}, &ShapeError{
			Reason: fmt.Sprintf("field %q is empty", c.outputField),
			Body:   truncate(data),
		}
	}
	return reply, nil
}

func (c *Client) transportError(err error) *TransportError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return timeoutError(c.timeout, err)
	}
	return &TransportError{Err: err}
}

// reasonPhrase strips the status code from resp.Status
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}
