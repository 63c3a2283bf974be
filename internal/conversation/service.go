// ABOUTME: Conversation orchestrator turning questions into answer payloads
// ABOUTME: Sequences the Genie API calls and normalizes the result shapes

package conversation

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/relaykit/genie-relay/internal/answer"
	"github.com/relaykit/genie-relay/internal/genie"
)

// userFacingError is the only failure detail end users ever see. Real error
// detail goes to the log.
const userFacingError = "An error occurred while processing your request."

// GenieAPI defines what the service needs from the backend client.
type GenieAPI interface {
	StartConversation(ctx context.Context, question string) (*genie.Message, error)
	CreateMessage(ctx context.Context, conversationID, question string) (*genie.Message, error)
	GetMessage(ctx context.Context, conversationID, messageID string) (*genie.Message, error)
	GetQueryResult(ctx context.Context, conversationID, messageID string) (*genie.StatementResponse, error)
	GetStatement(ctx context.Context, statementID string) (*genie.StatementResponse, error)
}

// Service orchestrates one conversation turn against the Genie API. It keeps
// no state between calls; session continuity lives in the session registry.
type Service struct {
	api    GenieAPI
	logger *slog.Logger
}

// New creates a conversation service.
func New(api GenieAPI, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:    api,
		logger: logger.With("component", "conversation"),
	}
}

// Resolve asks Genie the question, on a new conversation when conversationID
// is empty or as a follow-up otherwise, and returns the normalized payload
// plus the conversation id to persist. The returned id is always usable: on
// failure it is whatever was resolved before the failure, falling back to the
// input id.
func (s *Service) Resolve(ctx context.Context, question, conversationID string) (answer.Payload, string) {
	turnID := uuid.New().String()
	logger := s.logger.With("turn_id", turnID)
	resolved := conversationID

	var msg *genie.Message
	var err error
	if conversationID == "" {
		msg, err = s.api.StartConversation(ctx, question)
	} else {
		msg, err = s.api.CreateMessage(ctx, conversationID, question)
	}
	if err != nil {
		logger.Error("conversation turn failed", "error", err, "conversation_id", resolved)
		return answer.Error(userFacingError), resolved
	}
	if msg.ConversationID != "" {
		resolved = msg.ConversationID
	}

	logger = logger.With("conversation_id", resolved, "message_id", msg.ID)

	// FAILED, CANCELLED, and QUERY_RESULT_EXPIRED are terminal too; only a
	// completed message carries an answer worth rendering.
	if msg.Status != genie.StatusCompleted {
		logger.Error("conversation turn ended without completing", "status", msg.Status)
		return answer.Error(userFacingError), resolved
	}

	// Fetch the statement execution before the full message so a missing
	// query result fails the turn early.
	var stmt *genie.StatementResponse
	if msg.QueryResult != nil {
		stmt, err = s.api.GetQueryResult(ctx, resolved, msg.ID)
		if err != nil {
			logger.Error("query result fetch failed", "error", err)
			return answer.Error(userFacingError), resolved
		}
	}

	full, err := s.api.GetMessage(ctx, resolved, msg.ID)
	if err != nil {
		logger.Error("message fetch failed", "error", err)
		return answer.Error(userFacingError), resolved
	}

	if stmt != nil && stmt.StatementID != "" {
		payload, ok := s.resolveTabular(ctx, logger, stmt.StatementID, full)
		if !ok {
			return answer.Error(userFacingError), resolved
		}
		return payload, resolved
	}

	for _, att := range full.Attachments {
		if att.Text != nil && att.Text.Content != "" {
			return answer.Message(att.Text.Content), resolved
		}
	}

	return answer.Message(full.Content), resolved
}

// resolveTabular fetches statement results and builds the tabular payload.
// The description comes from the first attachment that carries one.
func (s *Service) resolveTabular(ctx context.Context, logger *slog.Logger, statementID string, full *genie.Message) (answer.Payload, bool) {
	results, err := s.api.GetStatement(ctx, statementID)
	if err != nil {
		logger.Error("statement fetch failed", "error", err, "statement_id", statementID)
		return answer.Payload{}, false
	}
	if results.Manifest == nil || len(results.Manifest.Schema.Columns) == 0 {
		logger.Error("statement result missing schema", "statement_id", statementID)
		return answer.Payload{}, false
	}

	columns := make([]answer.Column, len(results.Manifest.Schema.Columns))
	for i, col := range results.Manifest.Schema.Columns {
		columns[i] = answer.Column{Name: col.Name, TypeName: col.TypeName}
	}

	var rows [][]any
	if results.Result != nil {
		rows = results.Result.DataArray
	}

	description := ""
	for _, att := range full.Attachments {
		if att.Query != nil && att.Query.Description != "" {
			description = att.Query.Description
			break
		}
	}

	logger.Debug("tabular answer resolved",
		"statement_id", statementID,
		"columns", len(columns),
		"rows", len(rows))

	return answer.Tabular(columns, rows, description), true
}
