package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/repositories"
	"chat-relay/storage"

	"github.com/google/uuid"
)

type IUploadService interface {
	Upload(ctx context.Context, uploaderID string, target domain.Channel, originalName string, r io.Reader) (domain.FileMetadata, domain.Message, error)
	Download(id string) (domain.FileMetadata, *os.File, string, error)
	ListFiles(target domain.Channel) ([]domain.FileMetadata, error)
}

// UploadService is the upload-to-message bridge. Once the blob and its
// metadata are stored, it feeds a file-kind send through the same
// ingest pipeline as typed messages, so upload messages observe the
// exact same validation, ordering and delivery guarantees.
type UploadService struct {
	log    *slog.Logger
	blobs  *storage.BlobStore
	files  repositories.IFileRepository
	ingest contract.IIngest
}

func NewUploadService(log *slog.Logger, blobs *storage.BlobStore,
	files repositories.IFileRepository, ingest contract.IIngest) *UploadService {
	return &UploadService{log: log, blobs: blobs, files: files, ingest: ingest}
}

func (s *UploadService) Upload(ctx context.Context, uploaderID string, target domain.Channel,
	originalName string, r io.Reader) (domain.FileMetadata, domain.Message, error) {
	storedName, err := s.blobs.Save(originalName, r)
	if err != nil {
		return domain.FileMetadata{}, domain.Message{}, err
	}

	meta := domain.FileMetadata{
		ID:           uuid.NewString(),
		OriginalName: originalName,
		StoredName:   storedName,
		UploaderID:   uploaderID,
		Target:       target,
		UploadedAt:   time.Now().UTC(),
	}
	if err = s.files.CreateFile(meta); err != nil {
		_ = s.blobs.Remove(storedName)
		return domain.FileMetadata{}, domain.Message{}, err
	}

	cmd := domain.SendCommand{
		SenderID: uploaderID,
		Kind:     domain.KindFile,
		FileID:   meta.ID,
	}
	switch target.Kind {
	case domain.ChannelGroup:
		cmd.GroupID = target.ID
	default:
		cmd.RecipientID = target.ID
	}

	message, err := s.ingest.Send(ctx, cmd)
	if err != nil {
		// The send was rejected or could not be recorded: the upload
		// must not linger as an orphaned blob or metadata record.
		if removeErr := s.blobs.Remove(storedName); removeErr != nil {
			s.log.Warn("orphaned blob cleanup failed",
				"stored_name", storedName,
				"error", removeErr)
		}
		if deleteErr := s.files.DeleteFile(meta); deleteErr != nil {
			s.log.Warn("orphaned file metadata cleanup failed",
				"file_id", meta.ID,
				"error", deleteErr)
		}
		return domain.FileMetadata{}, domain.Message{}, err
	}
	return meta, message, nil
}

func (s *UploadService) Download(id string) (domain.FileMetadata, *os.File, string, error) {
	meta, err := s.files.GetFile(id)
	if err != nil {
		return domain.FileMetadata{}, nil, "", err
	}
	contentType, err := s.blobs.ContentType(meta.StoredName)
	if err != nil {
		return domain.FileMetadata{}, nil, "", err
	}
	file, err := s.blobs.Open(meta.StoredName)
	if err != nil {
		return domain.FileMetadata{}, nil, "", err
	}
	return meta, file, contentType, nil
}

func (s *UploadService) ListFiles(target domain.Channel) ([]domain.FileMetadata, error) {
	return s.files.ListFilesForTarget(target)
}
