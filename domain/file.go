package domain

import "time"

// FileMetadata describes a stored upload. The routing core treats it
// as an opaque reference attached to a file-kind Message; the bytes
// themselves live in the blob store under StoredName.
type FileMetadata struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"originalName"`
	StoredName   string    `json:"storedName"`
	UploaderID   string    `json:"uploader"`
	Target       Channel   `json:"target"`
	UploadedAt   time.Time `json:"uploadedAt"`
}
