// Package bot handles chat-transport activities.
//
// An inbound activity envelope is dispatched by type: message activities run
// the full session-lookup / orchestrate / render / reply flow, and
// conversationUpdate activities greet newly added members. Outbound replies
// are posted back to the activity's service URL through a Connector.
//
// Bearer-token verification of inbound requests lives here too; it is the
// adapter boundary the HTTP layer delegates to.
package bot
