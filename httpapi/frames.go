package httpapi

import (
	"chat-relay/domain/event"
	"chat-relay/errors"

	"github.com/go-playground/validator/v10"
)

var validateFrame = validator.New()

// inboundFrame is one client->server protocol event. The from field of
// the original protocol is gone on purpose: the sender is always the
// authenticated session.
type inboundFrame struct {
	Event   string `json:"event" validate:"required,oneof=join join-group message group-message"`
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
	To      string `json:"to,omitempty"`
	Group   string `json:"group,omitempty"`
	Content string `json:"content,omitempty"`
}

type outboundFrame struct {
	Event string      `json:"event"`
	Data  any         `json:"data,omitempty"`
	Error *frameError `json:"error,omitempty"`
}

type frameError struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// toFrame maps a fanned-out domain event to its wire form. The payload
// is the full persisted message, file metadata included, identical in
// shape to what the history endpoints return.
func toFrame(e event.DomainEvent) (outboundFrame, bool) {
	stored, ok := e.(event.MessageStored)
	if !ok {
		return outboundFrame{}, false
	}
	name := "group-message"
	if stored.Message.IsPrivate() {
		name = "message"
	}
	return outboundFrame{Event: name, Data: stored.Message}, true
}

func toFrameError(err error) frameError {
	category := "internal"
	switch {
	case errors.IsAuthorization(err):
		category = "authorization"
	case errors.IsValidation(err):
		category = "validation"
	case errors.IsPersistence(err):
		category = "persistence"
	}
	return frameError{Category: category, Message: err.Error()}
}
