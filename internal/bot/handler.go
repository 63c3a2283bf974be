// ABOUTME: Per-activity control flow: session lookup, orchestration, reply
// ABOUTME: All failures degrade to fixed user-facing messages, never faults

package bot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/relaykit/genie-relay/internal/answer"
	"github.com/relaykit/genie-relay/internal/render"
	"github.com/relaykit/genie-relay/internal/session"
)

// Fixed user-facing strings. DecodeFailureText is also used by the HTTP layer
// when an envelope cannot be parsed at all.
const (
	WelcomeText        = "Welcome to the Genie data assistant! Ask me a question about your data."
	DecodeFailureText  = "Failed to decode response from the server."
	GenericFailureText = "An error occurred while processing your request."
)

// blockChannel is the one channel that gets rich block replies; every other
// channel gets plain text.
const blockChannel = "slack"

// Resolver turns a question into a normalized payload plus the conversation
// id to persist.
type Resolver interface {
	Resolve(ctx context.Context, question, conversationID string) (answer.Payload, string)
}

// Handler processes inbound activities. Each activity is independent; shared
// state is confined to the session registry.
type Handler struct {
	registry  session.Registry
	resolver  Resolver
	connector Connector
	logger    *slog.Logger
}

// NewHandler creates an activity handler.
func NewHandler(registry session.Registry, resolver Resolver, connector Connector, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		registry:  registry,
		resolver:  resolver,
		connector: connector,
		logger:    logger.With("component", "bot"),
	}
}

// HandleActivity dispatches an inbound activity by type. Unknown types are
// ignored. The returned error means the reply could not be delivered at all;
// processing failures are already absorbed into the reply text by then.
func (h *Handler) HandleActivity(ctx context.Context, a *Activity) error {
	switch a.Type {
	case ActivityTypeMessage:
		return h.onMessage(ctx, a)
	case ActivityTypeConversationUpdate:
		return h.onMembersAdded(ctx, a)
	default:
		h.logger.Debug("ignoring activity", "type", a.Type)
		return nil
	}
}

// onMessage runs one conversation turn: look up the user's conversation,
// resolve the question, persist the returned conversation id, and reply in
// the channel's format.
func (h *Handler) onMessage(ctx context.Context, a *Activity) error {
	userID := a.From.ID

	conversationID, err := h.registry.Get(ctx, userID)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		// Degraded lookup starts a fresh conversation rather than failing
		// the turn.
		h.logger.Warn("session lookup failed", "error", err, "user_id", userID)
		conversationID = ""
	}

	payload, newConversationID := h.resolver.Resolve(ctx, a.Text, conversationID)

	// Update the session even when the turn produced an error payload so the
	// next turn continues the same thread when possible.
	if newConversationID != "" {
		if err := h.registry.Put(ctx, userID, newConversationID); err != nil {
			h.logger.Error("session update failed", "error", err, "user_id", userID)
		}
	}

	reply := h.buildReply(a, payload)
	if err := h.connector.SendActivity(ctx, reply); err != nil {
		h.logger.Error("reply delivery failed", "error", err, "user_id", userID)
		// One attempt at the fixed failure message; if the transport is down
		// this fails too and surfaces to the HTTP layer.
		return h.connector.SendActivity(ctx, TextReply(a, GenericFailureText))
	}
	return nil
}

// buildReply selects the renderer by channel. Error payloads carry their own
// user-facing text and bypass the renderers.
func (h *Handler) buildReply(a *Activity, payload answer.Payload) *Activity {
	if payload.Kind == answer.KindError {
		return TextReply(a, payload.Detail)
	}
	if a.ChannelID == blockChannel {
		return BlocksReply(a, render.Blocks(payload))
	}
	return TextReply(a, render.Plain(payload))
}

// onMembersAdded greets each newly added member except the bot itself.
func (h *Handler) onMembersAdded(ctx context.Context, a *Activity) error {
	for _, member := range a.MembersAdded {
		if member.ID == a.Recipient.ID {
			continue
		}
		if err := h.connector.SendActivity(ctx, TextReply(a, WelcomeText)); err != nil {
			h.logger.Error("welcome delivery failed", "error", err, "member_id", member.ID)
			return err
		}
	}
	return nil
}
