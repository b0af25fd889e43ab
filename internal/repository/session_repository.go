package repository

import (
	"context"
	"time"

	"github.com/dmitrv/soulmate-bot/internal/domain"
)

type SessionRepository interface {
	// Save inserts or replaces the user's session; at most one session per
	// user exists at any time.
	Save(ctx context.Context, session *domain.OnboardingSession) error
	Get(ctx context.Context, userID int64) (*domain.OnboardingSession, error)
	// Delete is idempotent; deleting a missing session is not an error.
	Delete(ctx context.Context, userID int64) error
	// DeleteIdle discards sessions untouched for longer than ttl and returns
	// how many were swept.
	DeleteIdle(ctx context.Context, ttl time.Duration) (int, error)
}
