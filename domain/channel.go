package domain

import "fmt"

type ChannelKind string

const (
	ChannelPrivate ChannelKind = "private"
	ChannelGroup   ChannelKind = "group"
)

// Channel is the logical routing scope of a message: one user's private
// inbox or one group's shared inbox. It exists to keep user and group
// namespaces apart and to give authorization checks a single home.
// Bare ids are never used as routing keys.
type Channel struct {
	Kind ChannelKind `json:"kind"`
	ID   string      `json:"id"`
}

func PrivateChannel(userID string) Channel {
	return Channel{Kind: ChannelPrivate, ID: userID}
}

func GroupChannel(groupID string) Channel {
	return Channel{Kind: ChannelGroup, ID: groupID}
}

// Key returns the namespaced routing key. A user id and a group id that
// happen to collide still map to distinct keys.
func (c Channel) Key() string {
	switch c.Kind {
	case ChannelGroup:
		return "g:" + c.ID
	default:
		return "u:" + c.ID
	}
}

func (c Channel) IsZero() bool {
	return c.ID == ""
}

func (c Channel) String() string {
	return fmt.Sprintf("%s(%s)", c.Kind, c.ID)
}

// ConversationKey is the persistence scope of a private pair. Both
// directions of the pair share one key, hence one sequence space, so a
// pair's history is totally ordered no matter who sent what.
func ConversationKey(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return "d:" + userA + ":" + userB
}
