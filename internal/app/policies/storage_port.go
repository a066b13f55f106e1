package policies

import (
	"context"
	"io"
)

// StoredObject points at an uploaded blob.
type StoredObject struct {
	Key string
	URL string
}

// ObjectStorage stores binary blobs such as fleet photos.
type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (StoredObject, error)
}
