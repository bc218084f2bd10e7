// Package storage stores uploaded file bytes on the local filesystem.
// Only metadata lives in BadgerDB; the blobs stay plain files so a
// download is a straight sendfile.
package storage

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

type BlobStore struct {
	dir string
}

func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blob directory: %w", err)
	}
	return &BlobStore{dir: dir}, nil
}

// Save streams the upload to disk under a unique stored name and
// returns that name. The original name is kept as a suffix so the
// directory stays debuggable, prefixed with a timestamp and a random
// component to rule out collisions.
func (b *BlobStore) Save(originalName string, r io.Reader) (string, error) {
	storedName := fmt.Sprintf("%d-%d-%s",
		time.Now().UnixMilli(),
		rand.Int63n(1_000_000_000),
		filepath.Base(originalName),
	)
	file, err := os.Create(filepath.Join(b.dir, storedName))
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err = io.Copy(file, r); err != nil {
		// Half-written blobs are useless, drop them
		_ = os.Remove(file.Name())
		return "", err
	}
	return storedName, nil
}

// Open returns the blob for reading. The stored name is reduced to its
// base so a crafted name cannot escape the blob directory.
func (b *BlobStore) Open(storedName string) (*os.File, error) {
	return os.Open(filepath.Join(b.dir, filepath.Base(storedName)))
}

// ContentType sniffs the stored blob's MIME type from its content.
func (b *BlobStore) ContentType(storedName string) (string, error) {
	mime, err := mimetype.DetectFile(filepath.Join(b.dir, filepath.Base(storedName)))
	if err != nil {
		return "", err
	}
	return mime.String(), nil
}

func (b *BlobStore) Remove(storedName string) error {
	return os.Remove(filepath.Join(b.dir, filepath.Base(storedName)))
}
