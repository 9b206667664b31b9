package service

import "context"

// ObjectStorage pushes one local artifact to the object store and returns
// its durable public URL. Implementations own their retry policy; callers
// treat a returned error as terminal for that artifact.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, path, localPath, contentType string) (string, error)
	Remove(ctx context.Context, bucket, path string) error
}

// TokenSource yields the bearer token attached to storage calls. An empty
// token with a nil error means no session is available; the storage client
// proceeds anyway and lets the backend decide.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}
