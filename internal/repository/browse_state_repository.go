package repository

import (
	"context"
	"time"
)

// BrowseStateRepository keeps the per-viewer "currently shown candidate"
// pointer so a decision can be tied back to the card it was made on even
// after a process restart. Entries expire on their own.
type BrowseStateRepository interface {
	SetCurrentCandidate(ctx context.Context, viewerID, candidateID int64, ttl time.Duration) error
	// GetCurrentCandidate returns (0, nil) when no candidate is pending.
	GetCurrentCandidate(ctx context.Context, viewerID int64) (int64, error)
	ClearCurrentCandidate(ctx context.Context, viewerID int64) error
}
