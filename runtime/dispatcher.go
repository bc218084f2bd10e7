package runtime

import (
	"context"
	"log/slog"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/repositories"
)

// Dispatcher fans a persisted message out to every live subscriber of
// its channels. Delivery is an enqueue onto the subscriber's bounded
// sink, so one slow or dead connection can never hold back the others;
// a failed enqueue disconnects that one session and nothing else.
type Dispatcher struct {
	log        *slog.Logger
	registry   contract.IRegistry
	membership contract.IMembership
	groups     repositories.IGroupRepository
}

func NewDispatcher(log *slog.Logger, registry contract.IRegistry,
	membership contract.IMembership, groups repositories.IGroupRepository) *Dispatcher {
	return &Dispatcher{log: log, registry: registry, membership: membership, groups: groups}
}

func (d *Dispatcher) Dispatch(ctx context.Context, msg domain.Message) {
	evt := event.MessageStored{Message: msg}

	// A session subscribed to both fan-out channels of a private
	// message (sender talking to themselves across devices) still
	// receives the event once.
	seen := make(map[string]struct{})

	for _, channel := range evt.Channels() {
		subscribers := d.membership.Subscribers(channel)
		if channel.Kind == domain.ChannelGroup {
			subscribers = d.filterMembers(channel.ID, subscribers)
		}
		for _, sub := range subscribers {
			if _, done := seen[sub.Token]; done {
				continue
			}
			seen[sub.Token] = struct{}{}

			if err := sub.Sink.Consume(ctx, evt); err != nil {
				d.log.Warn("delivery failed, disconnecting subscriber",
					"user_id", sub.UserID,
					"channel", channel.String(),
					"error", err)
				d.registry.Unregister(sub.Token)
			}
		}
	}
}

// filterMembers re-checks group membership at delivery time. A join is
// authorized against the member set of that moment, but membership can
// change between join and send; whoever was removed since must not
// receive the live event.
func (d *Dispatcher) filterMembers(groupID string, subscribers []contract.Subscriber) []contract.Subscriber {
	group, err := d.groups.GetGroup(groupID)
	if err != nil {
		d.log.Error("group lookup failed during dispatch, skipping fan-out",
			"group_id", groupID,
			"error", err)
		return nil
	}
	kept := subscribers[:0]
	for _, sub := range subscribers {
		if group.IsMember(sub.UserID) {
			kept = append(kept, sub)
		}
	}
	return kept
}
