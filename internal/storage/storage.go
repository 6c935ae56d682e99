package storage

import "context"

// Service stores avatar blobs in remote object storage. The sqlite blob
// column is the default; this interface is only wired when a bucket is
// configured.
type Service interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
