package repository

import (
	"context"
	"errors"

	"book_exchange_service/internal/chat/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ProfileRepository definition profiles lookups
type ProfileRepository interface {
	FindByID(ctx context.Context, userID string) (*domain.Profile, error)
	// EnsureProfile returns the profile of userID, creating an empty default row when missing
	EnsureProfile(ctx context.Context, userID string) (*domain.Profile, error)
}

type profileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository create a ProfileRepository
func NewProfileRepository(db *pgxpool.Pool) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByID(ctx context.Context, userID string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.QueryRow(ctx, `
		SELECT id::text, COALESCE(full_name, ''), COALESCE(avatar_url, '')
		FROM profiles WHERE id = $1`, userID).Scan(&p.ID, &p.FullName, &p.AvatarURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) EnsureProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := r.FindByID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, err
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO profiles (id, full_name, avatar_url) VALUES ($1, NULL, NULL)
		ON CONFLICT (id) DO NOTHING`, userID); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, userID)
}
