//go:generate go run go.uber.org/mock/mockgen -source=group.go -destination=../mocks/mock_group_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"

	"chat-relay/domain"
	"chat-relay/errors"

	"github.com/dgraph-io/badger/v4"
)

type IGroupRepository interface {
	CreateGroup(group domain.Group) error
	GetGroup(id string) (domain.Group, error)
	ListGroupsForUser(userID string) ([]domain.Group, error)
}

// GroupRepository is the routing core's only window into group
// membership. Join and dispatch authorization both read through it.
type GroupRepository struct {
	db *badger.DB
}

func NewGroupRepository(db *badger.DB) IGroupRepository {
	return &GroupRepository{db: db}
}

func (g GroupRepository) CreateGroup(group domain.Group) error {
	data, err := json.Marshal(group)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return g.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("group:"+group.ID), data)
	})
}

func (g GroupRepository) GetGroup(id string) (domain.Group, error) {
	var group domain.Group
	err := g.db.View(func(txn *badger.Txn) error {
		return readJSON(txn, "group:"+id, &group)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Group{}, errors.ErrUnknownGroup
	}
	return group, err
}

func (g GroupRepository) ListGroupsForUser(userID string) ([]domain.Group, error) {
	var groups []domain.Group
	err := g.db.View(func(txn *badger.Txn) error {
		prefix := []byte("group:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var group domain.Group
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &group)
			})
			if err != nil {
				return err
			}
			if group.IsMember(userID) {
				groups = append(groups, group)
			}
		}
		return nil
	})
	return groups, err
}
