// Package genie is an HTTP client for the Genie conversational query API.
//
// The API is asynchronous: posting a question returns a message that moves
// through processing states. StartConversation and CreateMessage hide this by
// polling the message until it reaches a terminal status, bounded only by the
// caller's context. Read-only fetches (message poll, query results, statement
// results) carry a small bounded retry; the two posting calls are never
// retried because the API has no idempotency key and a repeat would create a
// duplicate conversation turn.
package genie
