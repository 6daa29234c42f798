package service

import "context"

// ShareRequest describes one hand-off to the device share sheet.
type ShareRequest struct {
	Title       string
	DialogTitle string
	Text        string
	URL         string // Location of a staged artifact, empty for text-only shares.
	ContentType string
}

// Sharer is the device share API. Share returns only after the user has
// completed or cancelled the share; a non-nil error means nothing was shared.
type Sharer interface {
	Share(ctx context.Context, req *ShareRequest) error
}

// ShareAvailability is implemented by Sharers that can report whether the
// device supports sharing at all.
type ShareAvailability interface {
	CanShare(ctx context.Context) (bool, error)
}

// ArtifactStore stages share payloads somewhere the Sharer can read them.
type ArtifactStore interface {
	// Put writes data under key and returns a URL the Sharer can open.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Delete removes a staged artifact. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
