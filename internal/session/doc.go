// Package session maps chat-user identities to backend conversation ids.
//
// The Registry interface has two backings: a TTL- and size-bounded in-memory
// map (default), and a SQLite store for deployments that want sessions to
// survive restarts. Both are safe for concurrent use. Concurrent updates to
// the same user are last-write-wins; a stale conversation id only means the
// next turn lands on an older thread.
package session
