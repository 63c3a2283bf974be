// ABOUTME: HTTP client for the Genie API with completion polling
// ABOUTME: Bearer-token auth; bounded retry with jitter on idempotent GETs only

package genie

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

const (
	defaultPollInterval = time.Second
	maxGetAttempts      = 3
	retryBaseDelay      = 250 * time.Millisecond
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("genie API error: status %d: %s", e.Status, e.Body)
}

// Client talks to one Genie space over HTTP.
type Client struct {
	host         string
	token        string
	spaceID      string
	httpClient   *http.Client
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewClient creates a client for the given workspace host, access token, and
// space. No overall request timeout is set; callers bound work through their
// context.
func NewClient(host, token, spaceID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		host:         strings.TrimRight(host, "/"),
		token:        token,
		spaceID:      spaceID,
		httpClient:   &http.Client{},
		pollInterval: defaultPollInterval,
		logger:       logger.With("component", "genie"),
	}
}

// StartConversation opens a new conversation with the given question and
// blocks until the first message reaches a terminal status.
func (c *Client) StartConversation(ctx context.Context, question string) (*Message, error) {
	var resp struct {
		ConversationID string `json:"conversation_id"`
		MessageID      string `json:"message_id"`
	}
	path := fmt.Sprintf("/api/2.0/genie/spaces/%s/start-conversation", c.spaceID)
	if err := c.postJSON(ctx, path, map[string]string{"content": question}, &resp); err != nil {
		return nil, fmt.Errorf("starting conversation: %w", err)
	}

	c.logger.Debug("conversation started",
		"conversation_id", resp.ConversationID,
		"message_id", resp.MessageID)

	return c.waitForMessage(ctx, resp.ConversationID, resp.MessageID)
}

// CreateMessage posts a follow-up question on an existing conversation and
// blocks until the message reaches a terminal status.
func (c *Client) CreateMessage(ctx context.Context, conversationID, question string) (*Message, error) {
	var resp struct {
		ID        string `json:"id"`
		MessageID string `json:"message_id"`
	}
	path := fmt.Sprintf("/api/2.0/genie/spaces/%s/conversations/%s/messages", c.spaceID, conversationID)
	if err := c.postJSON(ctx, path, map[string]string{"content": question}, &resp); err != nil {
		return nil, fmt.Errorf("posting message: %w", err)
	}

	messageID := resp.MessageID
	if messageID == "" {
		messageID = resp.ID
	}

	return c.waitForMessage(ctx, conversationID, messageID)
}

// GetMessage fetches a single conversation message.
func (c *Client) GetMessage(ctx context.Context, conversationID, messageID string) (*Message, error) {
	var msg Message
	path := fmt.Sprintf("/api/2.0/genie/spaces/%s/conversations/%s/messages/%s",
		c.spaceID, conversationID, messageID)
	if err := c.getJSON(ctx, path, &msg); err != nil {
		return nil, fmt.Errorf("fetching message: %w", err)
	}
	return &msg, nil
}

// GetQueryResult fetches the query execution attached to a message.
func (c *Client) GetQueryResult(ctx context.Context, conversationID, messageID string) (*StatementResponse, error) {
	var resp struct {
		StatementResponse *StatementResponse `json:"statement_response"`
	}
	path := fmt.Sprintf("/api/2.0/genie/spaces/%s/conversations/%s/messages/%s/query-result",
		c.spaceID, conversationID, messageID)
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("fetching query result: %w", err)
	}
	return resp.StatementResponse, nil
}

// GetStatement fetches schema and row data from the statement-execution
// subsystem.
func (c *Client) GetStatement(ctx context.Context, statementID string) (*StatementResponse, error) {
	var resp StatementResponse
	path := fmt.Sprintf("/api/2.0/sql/statements/%s", statementID)
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("fetching statement: %w", err)
	}
	return &resp, nil
}

// waitForMessage polls the message until it reaches a terminal status. There
// is no poll cap; the caller's context bounds the wait.
func (c *Client) waitForMessage(ctx context.Context, conversationID, messageID string) (*Message, error) {
	for {
		msg, err := c.GetMessage(ctx, conversationID, messageID)
		if err != nil {
			return nil, err
		}
		if isTerminal(msg.Status) {
			if msg.ConversationID == "" {
				msg.ConversationID = conversationID
			}
			return msg, nil
		}

		c.logger.Debug("message still processing",
			"conversation_id", conversationID,
			"message_id", messageID,
			"status", msg.Status)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

// postJSON issues a POST with no retry: conversation posts are not idempotent
// and repeating one would duplicate a turn.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, payload, out)
}

// getJSON issues a GET with a bounded retry. Network failures and 5xx
// responses are retried with exponential backoff plus jitter; 4xx responses
// are returned immediately.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 0; attempt < maxGetAttempts; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			delay += time.Duration(rand.Int63n(int64(delay)))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := c.do(ctx, http.MethodGet, path, nil, out)
		if err == nil {
			return nil
		}
		lastErr = err

		if apiErr, ok := err.(*APIError); ok && apiErr.Status < 500 {
			return err
		}
		c.logger.Debug("retrying GET", "path", path, "attempt", attempt+1, "error", err)
	}
	return lastErr
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.host+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
