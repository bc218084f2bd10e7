package runtime

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/mocks"
	"chat-relay/sink"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type dispatcherFixture struct {
	registry   *Registry
	membership *Membership
	groups     *mocks.MockIGroupRepository
	dispatcher *Dispatcher
}

func newDispatcherFixture(t *testing.T) dispatcherFixture {
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := NewRegistry()
	groups := mocks.NewMockIGroupRepository(ctrl)
	membership := NewMembership(log, registry, groups)
	return dispatcherFixture{
		registry:   registry,
		membership: membership,
		groups:     groups,
		dispatcher: NewDispatcher(log, registry, membership, groups),
	}
}

func (f dispatcherFixture) connect(t *testing.T, userID string, capacity int) (string, *sink.QueueSink) {
	t.Helper()
	queue := sink.NewQueueSink(capacity)
	token := f.registry.Register(domain.UserIdentity{ID: userID}, queue)
	return token, queue
}

func drain(queue *sink.QueueSink) []event.DomainEvent {
	var events []event.DomainEvent
	for {
		select {
		case e := <-queue.Events:
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestDispatcher_PrivateMessageReachesBothParties(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newDispatcherFixture(t)

	// Given alice on two devices and bob on one, each in their own inbox
	laptopToken, laptop := f.connect(t, "alice", 4)
	phoneToken, phone := f.connect(t, "alice", 4)
	bobToken, bob := f.connect(t, "bob", 4)
	req.NoError(f.membership.Join(laptopToken, domain.PrivateChannel("alice")))
	req.NoError(f.membership.Join(phoneToken, domain.PrivateChannel("alice")))
	req.NoError(f.membership.Join(bobToken, domain.PrivateChannel("bob")))

	// When a persisted private message is dispatched
	msg := domain.Message{SenderID: "alice", RecipientID: "bob", Content: "hello", Seq: 1}
	f.dispatcher.Dispatch(ctx, msg)

	// Then every session of both parties received it exactly once
	for _, queue := range []*sink.QueueSink{laptop, phone, bob} {
		events := drain(queue)
		req.Len(events, 1)
		req.Equal(event.MessageStored{Message: msg}, events[0])
	}
}

func TestDispatcher_SelfSendDeliveredOnce(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newDispatcherFixture(t)

	token, queue := f.connect(t, "alice", 4)
	req.NoError(f.membership.Join(token, domain.PrivateChannel("alice")))

	// When alice messages herself
	f.dispatcher.Dispatch(ctx, domain.Message{SenderID: "alice", RecipientID: "alice", Content: "memo"})

	// Then her session sees the event once, not once per fan-out channel
	req.Len(drain(queue), 1)
}

func TestDispatcher_GroupMembershipRecheckedAtDelivery(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newDispatcherFixture(t)

	// Given bob joined while he was still a member
	joined := domain.NewGroup("g1", "team", "alice", []string{"bob"}, time.Now().UTC())
	f.groups.EXPECT().GetGroup("g1").Return(joined, nil).Times(2)

	aliceToken, alice := f.connect(t, "alice", 4)
	bobToken, bob := f.connect(t, "bob", 4)
	req.NoError(f.membership.Join(aliceToken, domain.GroupChannel("g1")))
	req.NoError(f.membership.Join(bobToken, domain.GroupChannel("g1")))

	// And bob was removed from the group since
	shrunk := domain.NewGroup("g1", "team", "alice", nil, time.Now().UTC())
	f.groups.EXPECT().GetGroup("g1").Return(shrunk, nil)

	// When a group message is dispatched
	f.dispatcher.Dispatch(ctx, domain.Message{SenderID: "alice", GroupID: "g1", Content: "bye bob"})

	// Then only the remaining member receives it
	req.Len(drain(alice), 1)
	req.Empty(drain(bob))
}

func TestDispatcher_OverflowDisconnectsOnlyTheSlowSession(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newDispatcherFixture(t)

	// Given bob with a healthy session and one whose queue cannot accept anything
	healthyToken, healthy := f.connect(t, "bob", 4)
	slowToken, _ := f.connect(t, "bob", 0)
	aliceToken, alice := f.connect(t, "alice", 4)
	req.NoError(f.membership.Join(healthyToken, domain.PrivateChannel("bob")))
	req.NoError(f.membership.Join(slowToken, domain.PrivateChannel("bob")))
	req.NoError(f.membership.Join(aliceToken, domain.PrivateChannel("alice")))

	// When a message fans out
	f.dispatcher.Dispatch(ctx, domain.Message{SenderID: "alice", RecipientID: "bob", Content: "hi"})

	// Then the overflowing session is gone and the others are untouched
	_, _, ok := f.registry.Session(slowToken)
	req.False(ok)
	_, _, ok = f.registry.Session(healthyToken)
	req.True(ok)
	req.Len(drain(healthy), 1)
	req.Len(drain(alice), 1)
	req.Len(f.membership.Subscribers(domain.PrivateChannel("bob")), 1)
}
