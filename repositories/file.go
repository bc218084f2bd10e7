//go:generate go run go.uber.org/mock/mockgen -source=file.go -destination=../mocks/mock_file_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"

	"chat-relay/domain"
	"chat-relay/errors"

	"github.com/dgraph-io/badger/v4"
)

type IFileRepository interface {
	CreateFile(meta domain.FileMetadata) error
	GetFile(id string) (domain.FileMetadata, error)
	ListFilesForTarget(target domain.Channel) ([]domain.FileMetadata, error)
	DeleteFile(meta domain.FileMetadata) error
}

type FileRepository struct {
	db *badger.DB
}

func NewFileRepository(db *badger.DB) IFileRepository {
	return &FileRepository{db: db}
}

// CreateFile persists upload metadata under its id key plus a target
// index key, so per-conversation file listings stay a prefix scan.
func (f FileRepository) CreateFile(meta domain.FileMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return f.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte("file:"+meta.ID), data); err != nil {
			return err
		}
		indexKey := fmt.Sprintf("filetarget:%s:%s", meta.Target.Key(), meta.ID)
		return txn.Set([]byte(indexKey), []byte(meta.ID))
	})
}

func (f FileRepository) GetFile(id string) (domain.FileMetadata, error) {
	var meta domain.FileMetadata
	err := f.db.View(func(txn *badger.Txn) error {
		return readJSON(txn, "file:"+id, &meta)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.FileMetadata{}, errors.ErrUnknownFile
	}
	return meta, err
}

// DeleteFile exists for the upload bridge only: a rejected send must
// not leave its metadata behind. Files referenced by a persisted
// message are never deleted.
func (f FileRepository) DeleteFile(meta domain.FileMetadata) error {
	return f.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte("file:" + meta.ID)); err != nil {
			return err
		}
		indexKey := fmt.Sprintf("filetarget:%s:%s", meta.Target.Key(), meta.ID)
		return txn.Delete([]byte(indexKey))
	})
}

func (f FileRepository) ListFilesForTarget(target domain.Channel) ([]domain.FileMetadata, error) {
	var metas []domain.FileMetadata
	err := f.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("filetarget:%s:", target.Key()))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var id string
			err := it.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			})
			if err != nil {
				return err
			}
			var meta domain.FileMetadata
			if err := readJSON(txn, "file:"+id, &meta); err != nil {
				return err
			}
			metas = append(metas, meta)
		}
		return nil
	})
	return metas, err
}
