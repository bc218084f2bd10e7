package runtime

import (
	"sync"

	"chat-relay/contract"
	"chat-relay/domain"

	"github.com/google/uuid"
)

type session struct {
	identity domain.UserIdentity
	sink     contract.EventSink
}

// Registry maps authenticated identities to their live connections.
// One identity may hold any number of concurrent sessions (one per
// device); each session owns exactly one delivery sink.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]session             // session token -> session
	byUser   map[string]map[string]struct{} // user id -> token set
	onDrop   []func(token string)
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]session),
		byUser:   make(map[string]map[string]struct{}),
	}
}

// OnUnregister installs a cleanup hook run on every unregistration,
// whatever the disconnect path was. The membership manager uses it to
// clear the session's channel subscriptions.
func (r *Registry) OnUnregister(fn func(token string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onDrop = append(r.onDrop, fn)
}

// Register books a new session for the identity and returns its token.
// Registration has no side effect beyond bookkeeping.
func (r *Registry) Register(identity domain.UserIdentity, sink contract.EventSink) string {
	token := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[token] = session{identity: identity, sink: sink}
	if _, ok := r.byUser[identity.ID]; !ok {
		r.byUser[identity.ID] = make(map[string]struct{})
	}
	r.byUser[identity.ID][token] = struct{}{}
	return token
}

// Unregister drops a session. It is idempotent: every disconnect path
// (logout, network drop, protocol error, queue overflow) calls it and
// an unknown token is simply ignored. Cleanup hooks run after the
// session entry is gone so no later dispatch can resolve the token.
func (r *Registry) Unregister(token string) {
	r.mu.Lock()
	sess, ok := r.sessions[token]
	if ok {
		delete(r.sessions, token)
		if tokens, exists := r.byUser[sess.identity.ID]; exists {
			delete(tokens, token)
			// No empty sets left behind to avoid leaking user entries
			if len(tokens) == 0 {
				delete(r.byUser, sess.identity.ID)
			}
		}
	}
	hooks := r.onDrop
	r.mu.Unlock()

	if !ok {
		return
	}
	// A closable sink is shut here so the connection's write loop
	// notices forced disconnects (queue overflow, delivery failure)
	// and not only client-initiated ones.
	if closer, isClosable := sess.sink.(interface{ Close() }); isClosable {
		closer.Close()
	}
	for _, fn := range hooks {
		fn(token)
	}
}

func (r *Registry) Session(token string) (domain.UserIdentity, contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[token]
	if !ok {
		return domain.UserIdentity{}, nil, false
	}
	return sess.identity, sess.sink, true
}

// SinksForUser snapshots the delivery sinks of every live session the
// user currently holds.
func (r *Registry) SinksForUser(userID string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tokens, ok := r.byUser[userID]
	if !ok {
		return nil
	}
	sinks := make([]contract.EventSink, 0, len(tokens))
	for token := range tokens {
		if sess, exists := r.sessions[token]; exists {
			sinks = append(sinks, sess.sink)
		}
	}
	return sinks
}
