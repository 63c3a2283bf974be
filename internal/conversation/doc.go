// Package conversation drives the Genie call sequence for one chat turn.
//
// The Service resolves a question (plus an optional existing conversation id)
// into a normalized answer payload. Backend failures never escape as errors:
// they become an error payload with a generic user-facing string, and the
// conversation id resolved so far is always returned so the caller can keep
// session continuity even across a failed turn.
package conversation
