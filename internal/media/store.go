package media

import "context"

// MediaStore persists processed media.
type MediaStore interface {
	// Store saves data under name (a slash-separated relative path) and
	// returns the URL clients use to fetch it.
	Store(ctx context.Context, name string, data []byte, contentType string) (string, error)
}
