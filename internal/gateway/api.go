// ABOUTME: HTTP handler for the inbound activity endpoint
// ABOUTME: Enforces content type and auth, then runs the activity handler

package gateway

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/relaykit/genie-relay/internal/bot"
)

// errorResponse is the JSON body for rejected requests.
type errorResponse struct {
	Error string `json:"error"`
}

// handleMessages handles POST /api/messages: one chat-transport activity
// envelope per request. Returns 201 with no body on success; processing
// failures that already degraded to a user-facing reply are still a success
// at this layer.
func (g *Gateway) handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	if err := g.verifier.Verify(r.Header.Get("Authorization")); err != nil {
		g.logger.Warn("rejected unauthenticated request", "error", err)
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var activity bot.Activity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		g.logger.Warn("malformed activity envelope", "error", err)
		writeError(w, http.StatusBadRequest, bot.DecodeFailureText)
		return
	}

	requestID := uuid.New().String()
	logger := g.logger.With("request_id", requestID)
	logger.Debug("activity received",
		"type", activity.Type,
		"channel", activity.ChannelID,
		"user_id", activity.From.ID)

	if err := g.handler.HandleActivity(r.Context(), &activity); err != nil {
		logger.Error("activity processing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
