package event

import (
	"chat-relay/domain"
)

// DomainEvent is anything the fan-out layer can push to a connection.
type DomainEvent interface {
	Channels() []domain.Channel
}

// MessageStored is emitted once a message is durably recorded. It is
// the only event the dispatcher fans out; nothing is ever emitted for
// a message that failed to persist.
type MessageStored struct {
	Message domain.Message
}

func (e MessageStored) Channels() []domain.Channel {
	return e.Message.FanoutChannels()
}
