package services

import (
	"context"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"
)

type IChatService interface {
	Connect(identity domain.UserIdentity, sink contract.EventSink) string
	Disconnect(sessionToken string)
	JoinPrivate(sessionToken string) error
	JoinGroup(sessionToken, groupID string) error
	Leave(sessionToken string, channel domain.Channel)
	Send(ctx context.Context, sessionToken string, req SendRequest) (domain.Message, error)
	PrivateHistory(userID, peerID string, cursor *string, limit *int) ([]domain.Message, *string, error)
	GroupHistory(userID, groupID string, cursor *string, limit *int) ([]domain.Message, *string, error)
}

// SendRequest is what a client may actually choose: the target and the
// content. The sender is always the session's identity.
type SendRequest struct {
	RecipientID string
	GroupID     string
	Content     string
}

// ChatService is the facade the transport layer talks to. It wires the
// registry, the membership manager and the ingest pipeline together
// and keeps channel construction out of handlers.
type ChatService struct {
	registry   contract.IRegistry
	membership contract.IMembership
	ingest     contract.IIngest
	messages   repositories.IMessageRepository
	groups     repositories.IGroupRepository
}

func NewChatService(
	registry contract.IRegistry,
	membership contract.IMembership,
	ingest contract.IIngest,
	messages repositories.IMessageRepository,
	groups repositories.IGroupRepository,
) *ChatService {
	return &ChatService{
		registry:   registry,
		membership: membership,
		ingest:     ingest,
		messages:   messages,
		groups:     groups,
	}
}

func (s *ChatService) Connect(identity domain.UserIdentity, sink contract.EventSink) string {
	return s.registry.Register(identity, sink)
}

func (s *ChatService) Disconnect(sessionToken string) {
	s.registry.Unregister(sessionToken)
}

// JoinPrivate subscribes the session to its own inbox channel. There
// is deliberately no way to name another user's inbox here.
func (s *ChatService) JoinPrivate(sessionToken string) error {
	identity, _, ok := s.registry.Session(sessionToken)
	if !ok {
		return errors.AuthorizationError{Err: errors.ErrUnknownSession}
	}
	return s.membership.Join(sessionToken, domain.PrivateChannel(identity.ID))
}

func (s *ChatService) JoinGroup(sessionToken, groupID string) error {
	return s.membership.Join(sessionToken, domain.GroupChannel(groupID))
}

func (s *ChatService) Leave(sessionToken string, channel domain.Channel) {
	s.membership.Leave(sessionToken, channel)
}

func (s *ChatService) Send(ctx context.Context, sessionToken string, req SendRequest) (domain.Message, error) {
	identity, _, ok := s.registry.Session(sessionToken)
	if !ok {
		return domain.Message{}, errors.AuthorizationError{Err: errors.ErrUnknownSession}
	}
	return s.ingest.Send(ctx, domain.SendCommand{
		SenderID:    identity.ID,
		RecipientID: req.RecipientID,
		GroupID:     req.GroupID,
		Kind:        domain.KindText,
		Content:     req.Content,
	})
}

// PrivateHistory returns both directions of the pair in ascending
// persistence order, file metadata already resolved.
func (s *ChatService) PrivateHistory(userID, peerID string, cursor *string, limit *int) ([]domain.Message, *string, error) {
	return s.messages.History(domain.ConversationKey(userID, peerID), cursor, limit)
}

// GroupHistory is member-only: offline members catch up through it,
// outsiders get nothing.
func (s *ChatService) GroupHistory(userID, groupID string, cursor *string, limit *int) ([]domain.Message, *string, error) {
	group, err := s.groups.GetGroup(groupID)
	if err != nil {
		return nil, nil, err
	}
	if !group.IsMember(userID) {
		return nil, nil, errors.AuthorizationError{Err: errors.ErrNotAMember}
	}
	return s.messages.History(domain.GroupChannel(groupID).Key(), cursor, limit)
}
