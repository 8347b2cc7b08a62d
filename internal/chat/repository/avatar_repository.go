package repository

import (
	"context"
	"strings"
	"time"

	"book_exchange_service/pkg/database"
)

// AvatarResolver turns a stored avatar reference into a url the client can load
type AvatarResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

type minioAvatarResolver struct {
	store  *database.MinIOClient
	expiry time.Duration
}

// NewAvatarResolver presigns object keys from the avatars bucket; absolute urls pass through.
func NewAvatarResolver(store *database.MinIOClient, expiry time.Duration) AvatarResolver {
	return &minioAvatarResolver{store: store, expiry: expiry}
}

func (r *minioAvatarResolver) Resolve(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}
	if r.store == nil {
		return "", nil
	}
	return r.store.PresignGetURL(ctx, strings.TrimPrefix(ref, "/"), r.expiry)
}
