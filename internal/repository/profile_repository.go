package repository

import (
	"context"

	"github.com/dmitrv/soulmate-bot/internal/domain"
)

type ProfileRepository interface {
	// Upsert inserts or fully replaces the profile row in one statement, so
	// a partially written profile is never visible to candidate selection.
	Upsert(ctx context.Context, profile *domain.Profile) error
	GetByUserID(ctx context.Context, userID int64) (*domain.Profile, error)

	// PickCandidate returns one uniformly random eligible profile for the
	// viewer, excluding the viewer themselves and every user the viewer has
	// already liked or skipped. A nil profile with nil error means nobody is
	// eligible right now.
	PickCandidate(ctx context.Context, viewerID int64, filter domain.CandidateFilter) (*domain.Profile, error)

	// DeleteAccount removes the profile, every like/skip edge mentioning the
	// user in either direction and any onboarding session, in one
	// transaction.
	DeleteAccount(ctx context.Context, userID int64) error

	CountProfiles(ctx context.Context) (int, error)
}
