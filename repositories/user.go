//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"chat-relay/domain"
	"chat-relay/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(name, hashedPassword string) (domain.UserIdentity, error)
	GetUserByName(name string) (User, error)
	GetUser(id string) (domain.UserIdentity, error)
	ListUsers(excludeID string) ([]domain.UserIdentity, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// User is the repository-layer representation of an account, password
// hash included. The routing core only ever sees domain.UserIdentity.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) Identity() domain.UserIdentity {
	return domain.UserIdentity{ID: u.ID, Name: u.Name, CreatedAt: u.CreatedAt}
}

// CreateUser persists a new account under both its id key and a name
// index key inside one transaction, so a duplicate name can never
// shadow an existing account.
func (u UserRepository) CreateUser(name, hashedPassword string) (domain.UserIdentity, error) {
	user := User{
		ID:           uuid.NewString(),
		Name:         name,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(user)
	if err != nil {
		return domain.UserIdentity{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		nameKey := []byte("username:" + name)
		if _, err := txn.Get(nameKey); err == nil {
			return errors.ErrNameTaken
		}
		if err := txn.Set(nameKey, []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set([]byte("user:"+user.ID), data)
	})
	if err != nil {
		return domain.UserIdentity{}, err
	}
	return user.Identity(), nil
}

func (u UserRepository) GetUserByName(name string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("username:" + name))
		if err != nil {
			return err
		}
		var id string
		if err = item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}
		return readJSON(txn, "user:"+id, &user)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return User{}, errors.ErrUnknownUser
	}
	return user, err
}

func (u UserRepository) GetUser(id string) (domain.UserIdentity, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		return readJSON(txn, "user:"+id, &user)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.UserIdentity{}, errors.ErrUnknownUser
	}
	if err != nil {
		return domain.UserIdentity{}, err
	}
	return user.Identity(), nil
}

// ListUsers scans every account, skipping excludeID. The user base of
// a single instance is small enough that a full prefix scan is fine.
func (u UserRepository) ListUsers(excludeID string) ([]domain.UserIdentity, error) {
	var identities []domain.UserIdentity
	err := u.db.View(func(txn *badger.Txn) error {
		prefix := []byte("user:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var user User
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &user)
			})
			if err != nil {
				return err
			}
			if user.ID == excludeID {
				continue
			}
			identities = append(identities, user.Identity())
		}
		return nil
	})
	return identities, err
}

func readJSON(txn *badger.Txn, key string, out any) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}
