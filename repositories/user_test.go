package repositories

import (
	"testing"

	"chat-relay/domain"
	"chat-relay/errors"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	identity, err := repo.CreateUser("alice", "hashed-secret")
	req.NoError(err)
	req.NotEmpty(identity.ID)
	req.Equal("alice", identity.Name)

	// Lookup by id returns the identity without the password hash
	byID, err := repo.GetUser(identity.ID)
	req.NoError(err)
	req.Equal(identity, byID)

	// Lookup by name goes through the username index and keeps the hash
	byName, err := repo.GetUserByName("alice")
	req.NoError(err)
	req.Equal(identity.ID, byName.ID)
	req.Equal("hashed-secret", byName.PasswordHash)
}

func TestUserRepository_RejectsDuplicateName(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	first, err := repo.CreateUser("alice", "hash-1")
	req.NoError(err)

	// When a second account claims the same name
	_, err = repo.CreateUser("alice", "hash-2")
	req.ErrorIs(err, errors.ErrNameTaken)

	// Then the original account is untouched
	byName, err := repo.GetUserByName("alice")
	req.NoError(err)
	req.Equal(first.ID, byName.ID)
	req.Equal("hash-1", byName.PasswordHash)
}

func TestUserRepository_UnknownLookups(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	_, err := repo.GetUser("missing-id")
	req.ErrorIs(err, errors.ErrUnknownUser)

	_, err = repo.GetUserByName("nobody")
	req.ErrorIs(err, errors.ErrUnknownUser)
}

func TestUserRepository_ListExcludesCaller(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	alice, err := repo.CreateUser("alice", "h")
	req.NoError(err)
	_, err = repo.CreateUser("bob", "h")
	req.NoError(err)
	_, err = repo.CreateUser("carol", "h")
	req.NoError(err)

	identities, err := repo.ListUsers(alice.ID)
	req.NoError(err)
	names := lo.Map(identities, func(i domain.UserIdentity, _ int) string { return i.Name })
	req.ElementsMatch([]string{"bob", "carol"}, names)
}
