// ABOUTME: Chat-transport activity envelope types and reply construction
// ABOUTME: Replies swap from/recipient and thread onto the inbound activity

package bot

import (
	"github.com/relaykit/genie-relay/internal/render"
)

// Activity types the relay cares about. Anything else is ignored.
const (
	ActivityTypeMessage            = "message"
	ActivityTypeConversationUpdate = "conversationUpdate"
)

// ChannelAccount identifies a user or bot on the chat transport.
type ChannelAccount struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ConversationAccount identifies the transport-side conversation.
type ConversationAccount struct {
	ID string `json:"id"`
}

// Activity is the chat-transport envelope, inbound and outbound. Only the
// fields the relay reads or sets are mapped.
type Activity struct {
	Type         string              `json:"type"`
	ID           string              `json:"id,omitempty"`
	ChannelID    string              `json:"channelId,omitempty"`
	ServiceURL   string              `json:"serviceUrl,omitempty"`
	From         ChannelAccount      `json:"from,omitempty"`
	Recipient    ChannelAccount      `json:"recipient,omitempty"`
	Conversation ConversationAccount `json:"conversation,omitempty"`
	Text         string              `json:"text,omitempty"`
	ReplyToID    string              `json:"replyToId,omitempty"`
	MembersAdded []ChannelAccount    `json:"membersAdded,omitempty"`
	Attachments  []render.Block      `json:"attachments,omitempty"`
}

// reply builds the outbound shell for answering this activity: same
// conversation and service URL, from/recipient swapped, threaded onto the
// inbound activity id.
func (a *Activity) reply() *Activity {
	return &Activity{
		Type:         ActivityTypeMessage,
		ChannelID:    a.ChannelID,
		ServiceURL:   a.ServiceURL,
		From:         a.Recipient,
		Recipient:    a.From,
		Conversation: a.Conversation,
		ReplyToID:    a.ID,
	}
}

// TextReply builds a plain-text reply to the given activity.
func TextReply(a *Activity, text string) *Activity {
	r := a.reply()
	r.Text = text
	return r
}

// BlocksReply builds a rich block reply to the given activity.
func BlocksReply(a *Activity, blocks []render.Block) *Activity {
	r := a.reply()
	r.Attachments = blocks
	return r
}
