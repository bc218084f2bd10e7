// Package domain contains core concepts of the chat system.
// This file defines Message records and their routing rules.
// Messages are immutable once persisted and are never deleted here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageKind string

const (
	KindText MessageKind = "text"
	KindFile MessageKind = "file"
)

// Message is one chat event. Exactly one of RecipientID / GroupID is
// set (private-XOR-group). Seq is the position inside the message's
// persistence scope and is assigned by the ingest pipeline, never by
// callers.
type Message struct {
	ID          uuid.UUID     `json:"id"`
	Seq         uint64        `json:"seq"`
	SenderID    string        `json:"from"`
	RecipientID string        `json:"to,omitempty"`
	GroupID     string        `json:"group,omitempty"`
	Kind        MessageKind   `json:"kind"`
	Content     string        `json:"content"`
	File        *FileMetadata `json:"file,omitempty"`
	SentAt      time.Time     `json:"sentAt"`
}

func (m Message) IsPrivate() bool {
	return m.RecipientID != ""
}

// ScopeKey is the key of the sequence space the message is ordered in:
// the conversation pair for private messages, the group channel for
// group messages.
func (m Message) ScopeKey() string {
	if m.IsPrivate() {
		return ConversationKey(m.SenderID, m.RecipientID)
	}
	return GroupChannel(m.GroupID).Key()
}

// FanoutChannels lists the routing scopes a persisted message is
// delivered to. A private message reaches the recipient's inbox and
// the sender's own inbox, so the sender's other devices see their
// outgoing message too.
func (m Message) FanoutChannels() []Channel {
	if !m.IsPrivate() {
		return []Channel{GroupChannel(m.GroupID)}
	}
	if m.SenderID == m.RecipientID {
		return []Channel{PrivateChannel(m.SenderID)}
	}
	return []Channel{PrivateChannel(m.SenderID), PrivateChannel(m.RecipientID)}
}
