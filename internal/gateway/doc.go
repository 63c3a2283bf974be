// Package gateway wires the relay together and serves its HTTP surface.
//
// One endpoint matters: POST /api/messages receives chat-transport activity
// envelopes. Each request runs in its own goroutine (net/http's model), so a
// turn blocked on the Genie backend never stalls other users' turns. A
// /health endpoint supports probes.
package gateway
