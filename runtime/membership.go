package runtime

import (
	"log/slog"
	"sync"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"
)

// Membership tracks which sessions are subscribed to which channels,
// on top of the Registry. It is the single place where channel
// authorization is decided: a session may join its own private inbox
// and the group channels of groups it currently belongs to, nothing
// else.
type Membership struct {
	mu       sync.RWMutex
	log      *slog.Logger
	registry contract.IRegistry
	groups   repositories.IGroupRepository

	channelSubs map[string]map[string]struct{} // channel key -> token set
	sessionSubs map[string]map[string]struct{} // token -> channel key set
}

func NewMembership(log *slog.Logger, registry contract.IRegistry, groups repositories.IGroupRepository) *Membership {
	m := &Membership{
		log:         log,
		registry:    registry,
		groups:      groups,
		channelSubs: make(map[string]map[string]struct{}),
		sessionSubs: make(map[string]map[string]struct{}),
	}
	// Disconnects clear every subscription of the session, so stale
	// handles never survive in a subscriber set.
	registry.OnUnregister(m.DropSession)
	return m
}

// Join subscribes a session to a channel after authorizing it.
func (m *Membership) Join(token string, channel domain.Channel) error {
	identity, _, ok := m.registry.Session(token)
	if !ok {
		return errors.AuthorizationError{Err: errors.ErrUnknownSession}
	}

	switch channel.Kind {
	case domain.ChannelPrivate:
		if channel.ID != identity.ID {
			return errors.AuthorizationError{Err: errors.ErrForeignChannel}
		}
	case domain.ChannelGroup:
		group, err := m.groups.GetGroup(channel.ID)
		if err != nil {
			return errors.AuthorizationError{Err: err}
		}
		if !group.IsMember(identity.ID) {
			return errors.AuthorizationError{Err: errors.ErrNotAMember}
		}
	}

	key := channel.Key()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.channelSubs[key]; !ok {
		m.channelSubs[key] = make(map[string]struct{})
	}
	m.channelSubs[key][token] = struct{}{}
	if _, ok := m.sessionSubs[token]; !ok {
		m.sessionSubs[token] = make(map[string]struct{})
	}
	m.sessionSubs[token][key] = struct{}{}
	return nil
}

func (m *Membership) Leave(token string, channel domain.Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unsubscribeLocked(token, channel.Key())
}

// DropSession removes every subscription the session holds. Called by
// the registry unregister hook on every disconnect path.
func (m *Membership) DropSession(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.sessionSubs[token] {
		m.unsubscribeLocked(token, key)
	}
}

func (m *Membership) unsubscribeLocked(token, channelKey string) {
	if tokens, ok := m.channelSubs[channelKey]; ok {
		delete(tokens, token)
		if len(tokens) == 0 {
			delete(m.channelSubs, channelKey)
		}
	}
	if keys, ok := m.sessionSubs[token]; ok {
		delete(keys, channelKey)
		if len(keys) == 0 {
			delete(m.sessionSubs, token)
		}
	}
}

// Subscribers snapshots the live subscribers of a channel. Dispatch
// iterates the snapshot, never the shared maps, so concurrent joins
// and leaves cannot expose a half-updated set.
func (m *Membership) Subscribers(channel domain.Channel) []contract.Subscriber {
	m.mu.RLock()
	tokens := make([]string, 0, len(m.channelSubs[channel.Key()]))
	for token := range m.channelSubs[channel.Key()] {
		tokens = append(tokens, token)
	}
	m.mu.RUnlock()

	subscribers := make([]contract.Subscriber, 0, len(tokens))
	for _, token := range tokens {
		identity, sink, ok := m.registry.Session(token)
		if !ok {
			// Session vanished between snapshot and resolution
			continue
		}
		subscribers = append(subscribers, contract.Subscriber{
			Token:  token,
			UserID: identity.ID,
			Sink:   sink,
		})
	}
	return subscribers
}
