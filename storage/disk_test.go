package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlobStore_SaveOpenRoundTrip(t *testing.T) {
	req := require.New(t)
	blobs, err := NewBlobStore(t.TempDir())
	req.NoError(err)

	storedName, err := blobs.Save("report.txt", strings.NewReader("file body"))
	req.NoError(err)
	req.Contains(storedName, "report.txt")

	file, err := blobs.Open(storedName)
	req.NoError(err)
	defer file.Close()
	body, err := io.ReadAll(file)
	req.NoError(err)
	req.Equal("file body", string(body))
}

func TestBlobStore_StoredNamesNeverCollide(t *testing.T) {
	req := require.New(t)
	blobs, err := NewBlobStore(t.TempDir())
	req.NoError(err)

	first, err := blobs.Save("same.txt", strings.NewReader("a"))
	req.NoError(err)
	second, err := blobs.Save("same.txt", strings.NewReader("b"))
	req.NoError(err)
	req.NotEqual(first, second)
}

func TestBlobStore_PathTraversalIsNeutralized(t *testing.T) {
	req := require.New(t)
	blobs, err := NewBlobStore(t.TempDir())
	req.NoError(err)

	// Given an upload named like an escape attempt
	storedName, err := blobs.Save("../../etc/passwd", strings.NewReader("nope"))
	req.NoError(err)

	// Then the blob landed inside the store under its base name
	req.Contains(storedName, "passwd")
	req.NotContains(storedName, "..")
	file, err := blobs.Open(storedName)
	req.NoError(err)
	req.NoError(file.Close())

	// And a crafted read cannot leave the directory either
	_, err = blobs.Open("../../" + storedName)
	req.NoError(err) // reduced to its base, still resolves inside the store
}

func TestBlobStore_ContentTypeSniffing(t *testing.T) {
	req := require.New(t)
	blobs, err := NewBlobStore(t.TempDir())
	req.NoError(err)

	storedName, err := blobs.Save("page.html", strings.NewReader("<html><body>hi</body></html>"))
	req.NoError(err)

	contentType, err := blobs.ContentType(storedName)
	req.NoError(err)
	req.Contains(contentType, "text/html")
}

func TestBlobStore_Remove(t *testing.T) {
	req := require.New(t)
	blobs, err := NewBlobStore(t.TempDir())
	req.NoError(err)

	storedName, err := blobs.Save("gone.txt", strings.NewReader("x"))
	req.NoError(err)
	req.NoError(blobs.Remove(storedName))

	_, err = blobs.Open(storedName)
	req.Error(err)
}
