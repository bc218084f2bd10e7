package runtime

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"

	"github.com/google/uuid"
)

// Censor rewrites outgoing text content. Implemented by the moderation
// package; a nil censor disables the pass.
type Censor interface {
	Censor(original string) string
}

// Pipeline is the single ingest path for every message, typed or
// upload-generated. Each send walks Received -> Validated -> Persisted
// -> Dispatched; the failure exits are a rejection before persistence
// or a persistence error, and in both cases nothing is fanned out.
type Pipeline struct {
	log        *slog.Logger
	messages   repositories.IMessageRepository
	users      repositories.IUserRepository
	groups     repositories.IGroupRepository
	files      repositories.IFileRepository
	dispatcher contract.IDispatcher
	censor     Censor

	mu         sync.Mutex
	scopeLocks map[string]*sync.Mutex
}

func NewPipeline(
	log *slog.Logger,
	messages repositories.IMessageRepository,
	users repositories.IUserRepository,
	groups repositories.IGroupRepository,
	files repositories.IFileRepository,
	dispatcher contract.IDispatcher,
	censor Censor,
) *Pipeline {
	return &Pipeline{
		log:        log,
		messages:   messages,
		users:      users,
		groups:     groups,
		files:      files,
		dispatcher: dispatcher,
		censor:     censor,
		scopeLocks: make(map[string]*sync.Mutex),
	}
}

// Send ingests one sending intent and returns the persisted message.
// cmd.SenderID must come from the registered session of the caller;
// the transport layer never copies it from a client payload.
func (p *Pipeline) Send(ctx context.Context, cmd domain.SendCommand) (domain.Message, error) {
	// Received -> Validated
	message, err := p.validate(cmd)
	if err != nil {
		return domain.Message{}, err
	}

	if message.Kind == domain.KindText && p.censor != nil {
		message.Content = p.censor.Censor(message.Content)
	}

	// Validated -> Persisted -> Dispatched. The scope lock covers both
	// steps: it serializes the sequence assignment and keeps enqueue
	// order equal to persistence order. Dispatch never blocks (delivery
	// is a bounded enqueue), so holding the lock through it is cheap.
	lock := p.lockFor(message.ScopeKey())
	lock.Lock()
	defer lock.Unlock()

	stored, err := p.messages.Store(message)
	if err != nil {
		p.log.Error("message persistence failed",
			"scope", message.ScopeKey(),
			"error", err)
		return domain.Message{}, errors.PersistenceError{Err: err}
	}

	// Fan-out only ever sees durable messages.
	p.dispatcher.Dispatch(ctx, stored)
	return stored, nil
}

func (p *Pipeline) validate(cmd domain.SendCommand) (domain.Message, error) {
	if cmd.SenderID == "" {
		return domain.Message{}, errors.AuthorizationError{Err: errors.ErrUnknownSession}
	}
	if cmd.RecipientID != "" && cmd.GroupID != "" {
		return domain.Message{}, errors.ValidationError{Err: errors.ErrAmbiguousTarget}
	}
	if cmd.RecipientID == "" && cmd.GroupID == "" {
		return domain.Message{}, errors.ValidationError{Err: errors.ErrMissingTarget}
	}

	if cmd.GroupID != "" {
		group, err := p.groups.GetGroup(cmd.GroupID)
		if err != nil {
			return domain.Message{}, errors.ValidationError{Err: err}
		}
		if !group.IsMember(cmd.SenderID) {
			return domain.Message{}, errors.AuthorizationError{Err: errors.ErrNotAMember}
		}
	} else if cmd.RecipientID != cmd.SenderID {
		if _, err := p.users.GetUser(cmd.RecipientID); err != nil {
			return domain.Message{}, errors.ValidationError{Err: err}
		}
	}

	message := domain.Message{
		ID:          uuid.New(),
		SenderID:    cmd.SenderID,
		RecipientID: cmd.RecipientID,
		GroupID:     cmd.GroupID,
		Kind:        cmd.Kind,
		Content:     cmd.Content,
		SentAt:      time.Now().UTC(),
	}
	if message.Kind == "" {
		message.Kind = domain.KindText
	}

	switch message.Kind {
	case domain.KindText:
		if strings.TrimSpace(message.Content) == "" {
			return domain.Message{}, errors.ValidationError{Err: errors.ErrEmptyContent}
		}
	case domain.KindFile:
		if cmd.FileID == "" {
			return domain.Message{}, errors.ValidationError{Err: errors.ErrMissingFile}
		}
		meta, err := p.files.GetFile(cmd.FileID)
		if err != nil {
			return domain.Message{}, errors.ValidationError{Err: err}
		}
		message.File = &meta
		// Upload messages carry the original filename as content, like
		// a typed message would carry text.
		if message.Content == "" {
			message.Content = meta.OriginalName
		}
	}
	return message, nil
}

// lockFor hands out the mutex of one sequence scope, creating it on
// first use. Scope locks are never removed; the set is bounded by the
// number of conversations and groups.
func (p *Pipeline) lockFor(scopeKey string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.scopeLocks[scopeKey]
	if !ok {
		lock = &sync.Mutex{}
		p.scopeLocks[scopeKey] = lock
	}
	return lock
}
