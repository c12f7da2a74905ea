package repository

import "context"

// SessionRepository is the persisted key-value storage the session survives in.
// Get returns an empty string and no error for a missing key.
type SessionRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}
