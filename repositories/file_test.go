package repositories

import (
	"testing"
	"time"

	"chat-relay/domain"
	"chat-relay/errors"

	"github.com/stretchr/testify/require"
)

func TestFileRepository_TargetIndex(t *testing.T) {
	req := require.New(t)
	repo := NewFileRepository(openTestDB(t))

	conversation := domain.PrivateChannel("bob")
	group := domain.GroupChannel("g1")

	first := domain.FileMetadata{
		ID: "f1", OriginalName: "a.png", StoredName: "1-x-a.png",
		UploaderID: "alice", Target: conversation, UploadedAt: time.Now().UTC(),
	}
	second := domain.FileMetadata{
		ID: "f2", OriginalName: "b.pdf", StoredName: "2-y-b.pdf",
		UploaderID: "alice", Target: group, UploadedAt: time.Now().UTC(),
	}
	req.NoError(repo.CreateFile(first))
	req.NoError(repo.CreateFile(second))

	// Listing per target only crosses that target's index
	metas, err := repo.ListFilesForTarget(conversation)
	req.NoError(err)
	req.Len(metas, 1)
	req.Equal(first, metas[0])

	metas, err = repo.ListFilesForTarget(group)
	req.NoError(err)
	req.Len(metas, 1)
	req.Equal(second, metas[0])
}

func TestFileRepository_DeleteRemovesIndexToo(t *testing.T) {
	req := require.New(t)
	repo := NewFileRepository(openTestDB(t))

	meta := domain.FileMetadata{
		ID: "f1", OriginalName: "a.png", StoredName: "1-x-a.png",
		UploaderID: "alice", Target: domain.PrivateChannel("bob"), UploadedAt: time.Now().UTC(),
	}
	req.NoError(repo.CreateFile(meta))
	req.NoError(repo.DeleteFile(meta))

	_, err := repo.GetFile("f1")
	req.ErrorIs(err, errors.ErrUnknownFile)

	metas, err := repo.ListFilesForTarget(domain.PrivateChannel("bob"))
	req.NoError(err)
	req.Empty(metas)
}

func TestGroupRepository_RoundTrip(t *testing.T) {
	req := require.New(t)
	repo := NewGroupRepository(openTestDB(t))

	team := domain.NewGroup("g1", "team", "alice", []string{"bob"}, time.Now().UTC())
	other := domain.NewGroup("g2", "other", "carol", nil, time.Now().UTC())
	req.NoError(repo.CreateGroup(team))
	req.NoError(repo.CreateGroup(other))

	stored, err := repo.GetGroup("g1")
	req.NoError(err)
	req.Equal(team.MemberIDs, stored.MemberIDs)

	_, err = repo.GetGroup("ghost")
	req.ErrorIs(err, errors.ErrUnknownGroup)

	// Listing filters on membership
	groups, err := repo.ListGroupsForUser("bob")
	req.NoError(err)
	req.Len(groups, 1)
	req.Equal("g1", groups[0].ID)
}
