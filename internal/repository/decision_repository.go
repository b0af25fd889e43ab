package repository

import "context"

type DecisionRepository interface {
	// InsertLike records a like edge idempotently and checks for the reverse
	// edge. The insert and the mutual check are serialized per user pair by
	// the storage layer, so when two users like each other concurrently
	// exactly one of the calls observes the completed pair. created is false
	// when the edge already existed; mutual is only meaningful when created
	// is true.
	InsertLike(ctx context.Context, fromUserID, toUserID int64) (created bool, mutual bool, err error)

	// InsertSkip records a skip edge idempotently.
	InsertSkip(ctx context.Context, fromUserID, toUserID int64) (created bool, err error)

	CountLikes(ctx context.Context) (int, error)
	CountSkips(ctx context.Context) (int, error)
}
