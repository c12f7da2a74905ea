package bolt

import (
	"context"

	boltInfra "github.com/fastygo/todoclient/internal/infrastructure/bolt"
	"github.com/fastygo/todoclient/repository"
)

type sessionRepository struct {
	store *boltInfra.Store
}

// NewSessionRepository creates a BoltDB-backed session repository.
func NewSessionRepository(store *boltInfra.Store) repository.SessionRepository {
	return &sessionRepository{store: store}
}

func (r *sessionRepository) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	value, err := r.store.Get(key)
	if err != nil {
		return "", err
	}
	return string(value), nil
}

func (r *sessionRepository) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.store.Put(key, []byte(value))
}

func (r *sessionRepository) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.store.Delete(keys...)
}

func (r *sessionRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.store.Size()
	return err
}
