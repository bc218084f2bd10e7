package services

import (
	"time"

	"chat-relay/domain"
	"chat-relay/repositories"

	"github.com/google/uuid"
)

type IGroupService interface {
	CreateGroup(adminID, name string, memberIDs []string) (domain.Group, error)
	GetGroup(id string) (domain.Group, error)
	ListGroupsForUser(userID string) ([]domain.Group, error)
}

// GroupService manages the member sets the routing core authorizes
// against. Creation always includes the creator as admin and member.
type GroupService struct {
	groups repositories.IGroupRepository
}

func NewGroupService(groups repositories.IGroupRepository) *GroupService {
	return &GroupService{groups: groups}
}

func (s *GroupService) CreateGroup(adminID, name string, memberIDs []string) (domain.Group, error) {
	group := domain.NewGroup(uuid.NewString(), name, adminID, memberIDs, time.Now().UTC())
	if err := s.groups.CreateGroup(group); err != nil {
		return domain.Group{}, err
	}
	return group, nil
}

func (s *GroupService) GetGroup(id string) (domain.Group, error) {
	return s.groups.GetGroup(id)
}

func (s *GroupService) ListGroupsForUser(userID string) ([]domain.Group, error) {
	return s.groups.ListGroupsForUser(userID)
}
