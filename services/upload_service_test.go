package services

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/mocks"
	"chat-relay/repositories"
	"chat-relay/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	// Reduced to 16 Mo for testing (avoid 20 Go of storage)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUploadService_BridgesUploadIntoIngest(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	blobs, err := storage.NewBlobStore(t.TempDir())
	req.NoError(err)
	files := repositories.NewFileRepository(openTestDB(t))
	ingest := mocks.NewMockIIngest(ctrl)

	service := NewUploadService(log, blobs, files, ingest)

	// The bridge sends a file-kind command carrying the new metadata id
	ingest.EXPECT().Send(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, cmd domain.SendCommand) (domain.Message, error) {
			req.Equal(domain.KindFile, cmd.Kind)
			req.Equal("alice", cmd.SenderID)
			req.Equal("bob", cmd.RecipientID)
			req.NotEmpty(cmd.FileID)
			return domain.Message{Seq: 1, SenderID: "alice", RecipientID: "bob", Kind: domain.KindFile}, nil
		})

	meta, message, err := service.Upload(ctx, "alice",
		domain.PrivateChannel("bob"), "photo.png", strings.NewReader("png bytes"))
	req.NoError(err)
	req.Equal("photo.png", meta.OriginalName)
	req.Equal(uint64(1), message.Seq)

	// Metadata and blob are both retrievable afterwards
	stored, err := files.GetFile(meta.ID)
	req.NoError(err)
	req.Equal(meta.StoredName, stored.StoredName)
	blob, err := blobs.Open(meta.StoredName)
	req.NoError(err)
	req.NoError(blob.Close())
}

func TestUploadService_RejectedSendRollsEverythingBack(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	blobs, err := storage.NewBlobStore(t.TempDir())
	req.NoError(err)
	files := repositories.NewFileRepository(openTestDB(t))
	ingest := mocks.NewMockIIngest(ctrl)

	service := NewUploadService(log, blobs, files, ingest)

	// Given an ingest pipeline that rejects the bridged send
	var rejectedFileID string
	ingest.EXPECT().Send(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, cmd domain.SendCommand) (domain.Message, error) {
			rejectedFileID = cmd.FileID
			return domain.Message{}, errors.AuthorizationError{Err: errors.ErrNotAMember}
		})

	// When the upload is attempted
	_, _, err = service.Upload(ctx, "mallory",
		domain.GroupChannel("g1"), "leak.txt", strings.NewReader("data"))

	// Then the caller sees the rejection and nothing lingers
	req.True(errors.IsAuthorization(err))
	_, err = files.GetFile(rejectedFileID)
	req.ErrorIs(err, errors.ErrUnknownFile)
	metas, err := files.ListFilesForTarget(domain.GroupChannel("g1"))
	req.NoError(err)
	req.Empty(metas)
}

func TestUploadService_DownloadResolvesTypeAndName(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	blobs, err := storage.NewBlobStore(t.TempDir())
	req.NoError(err)
	files := repositories.NewFileRepository(openTestDB(t))
	ingest := mocks.NewMockIIngest(ctrl)
	ingest.EXPECT().Send(ctx, gomock.Any()).Return(domain.Message{}, nil)

	service := NewUploadService(log, blobs, files, ingest)

	meta, _, err := service.Upload(ctx, "alice",
		domain.PrivateChannel("bob"), "page.html", strings.NewReader("<html><body>hi</body></html>"))
	req.NoError(err)

	downloaded, file, contentType, err := service.Download(meta.ID)
	req.NoError(err)
	defer file.Close()
	req.Equal("page.html", downloaded.OriginalName)
	req.Contains(contentType, "text/html")
}
