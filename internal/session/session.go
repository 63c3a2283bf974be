// ABOUTME: Registry interface and errors for session tracking
// ABOUTME: A session is one chat user's current backend conversation id

package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a user has no recorded session.
var ErrNotFound = errors.New("session not found")

// Registry tracks each chat user's current conversation id. Get returns
// ErrNotFound for first-contact users; Put replaces any existing id.
type Registry interface {
	Get(ctx context.Context, userID string) (string, error)
	Put(ctx context.Context, userID, conversationID string) error
	Close() error
}
