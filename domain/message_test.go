package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConversationKey_IsDirectionless(t *testing.T) {
	req := require.New(t)

	// Given the same pair named in both directions
	// Then both directions share one persistence scope
	req.Equal(ConversationKey("alice", "bob"), ConversationKey("bob", "alice"))
	req.Equal("d:alice:bob", ConversationKey("bob", "alice"))
}

func TestChannel_Key_NamespacesCollidingIDs(t *testing.T) {
	req := require.New(t)

	// Given a user id and a group id with the same raw value
	id := "42"

	// Then the routing keys stay distinct
	req.NotEqual(PrivateChannel(id).Key(), GroupChannel(id).Key())
	req.Equal("u:42", PrivateChannel(id).Key())
	req.Equal("g:42", GroupChannel(id).Key())
}

func TestMessage_ScopeKey(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		name     string
		message  Message
		expected string
	}{
		{
			name:     "Private message uses the conversation pair",
			message:  Message{SenderID: "bob", RecipientID: "alice"},
			expected: "d:alice:bob",
		},
		{
			name:     "Reply lands in the same scope",
			message:  Message{SenderID: "alice", RecipientID: "bob"},
			expected: "d:alice:bob",
		},
		{
			name:     "Group message uses the group channel",
			message:  Message{SenderID: "alice", GroupID: "g1"},
			expected: "g:g1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req.Equal(tt.expected, tt.message.ScopeKey())
		})
	}
}

func TestMessage_FanoutChannels(t *testing.T) {
	req := require.New(t)

	// Given a private message between two distinct users
	msg := Message{SenderID: "alice", RecipientID: "bob"}

	// Then both inboxes are targeted, so the sender's other devices see it too
	req.Equal([]Channel{PrivateChannel("alice"), PrivateChannel("bob")}, msg.FanoutChannels())

	// Given a message a user sends to themselves
	self := Message{SenderID: "alice", RecipientID: "alice"}

	// Then the single inbox appears once
	req.Equal([]Channel{PrivateChannel("alice")}, self.FanoutChannels())

	// Given a group message
	group := Message{SenderID: "alice", GroupID: "g1"}
	req.Equal([]Channel{GroupChannel("g1")}, group.FanoutChannels())
}

func TestNewGroup_AdminAlwaysMember(t *testing.T) {
	req := require.New(t)

	// Given a member list that omits the admin and repeats a member
	group := NewGroup("g1", "team", "admin", []string{"bob", "bob", "admin"}, time.Now().UTC())

	// Then the admin leads the deduplicated member set
	req.Equal([]string{"admin", "bob"}, group.MemberIDs)
	req.True(group.IsMember("admin"))
	req.True(group.IsMember("bob"))
	req.False(group.IsMember("mallory"))
}
