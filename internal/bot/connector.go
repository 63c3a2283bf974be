// ABOUTME: Connector for posting outbound activities to the chat transport
// ABOUTME: Activities go to the inbound activity's serviceUrl conversation feed

package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Connector posts outbound activities to the chat transport.
type Connector interface {
	SendActivity(ctx context.Context, activity *Activity) error
}

// HTTPConnector posts activities to the transport's conversation endpoint at
// the activity's service URL.
type HTTPConnector struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPConnector creates a connector using the default HTTP client.
func NewHTTPConnector(logger *slog.Logger) *HTTPConnector {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPConnector{
		httpClient: &http.Client{},
		logger:     logger.With("component", "connector"),
	}
}

// SendActivity posts the activity to
// {serviceUrl}/v3/conversations/{conversationId}/activities.
func (c *HTTPConnector) SendActivity(ctx context.Context, activity *Activity) error {
	if activity.ServiceURL == "" {
		return fmt.Errorf("activity has no service URL")
	}
	if activity.Conversation.ID == "" {
		return fmt.Errorf("activity has no conversation id")
	}

	payload, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("encoding activity: %w", err)
	}

	url := fmt.Sprintf("%s/v3/conversations/%s/activities",
		strings.TrimRight(activity.ServiceURL, "/"), activity.Conversation.ID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting activity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("transport rejected activity: status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	c.logger.Debug("activity sent",
		"conversation_id", activity.Conversation.ID,
		"channel", activity.ChannelID)
	return nil
}
