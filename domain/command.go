package domain

// SendCommand is a sending intent entering the ingest pipeline.
// SenderID is filled from the registered session, never from the
// payload the client sent.
type SendCommand struct {
	SenderID    string
	RecipientID string
	GroupID     string
	Kind        MessageKind
	Content     string
	FileID      string
}

func (c SendCommand) IsPrivate() bool {
	return c.RecipientID != ""
}
