package postgres

import (
	"context"
	"fmt"

	"github.com/dmitrv/soulmate-bot/internal/repository"
	"github.com/jmoiron/sqlx"
)

type decisionRepository struct {
	db *sqlx.DB
}

func NewDecisionRepository(db *sqlx.DB) repository.DecisionRepository {
	return &decisionRepository{db: db}
}

// lockPair takes transaction-scoped advisory locks on both user ids, smaller
// id first so two overlapping calls on the same pair cannot deadlock. This
// serializes insert+mutual-check per pair: when two users like each other at
// the same instant, the second transaction sees the first one's edge.
func lockPair(ctx context.Context, tx *sqlx.Tx, a, b int64) error {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, lo); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, hi)
	return err
}

func (r *decisionRepository) InsertLike(ctx context.Context, fromUserID, toUserID int64) (bool, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, false, fmt.Errorf("failed to begin like transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockPair(ctx, tx, fromUserID, toUserID); err != nil {
		return false, false, fmt.Errorf("failed to lock user pair: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO likes (from_user_id, to_user_id)
		VALUES ($1, $2)
		ON CONFLICT (from_user_id, to_user_id) DO NOTHING
	`, fromUserID, toUserID)
	if err != nil {
		return false, false, fmt.Errorf("failed to insert like: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, false, err
	}
	created := rows > 0

	var mutual bool
	if created {
		err = tx.GetContext(ctx, &mutual, `
			SELECT EXISTS (
				SELECT 1 FROM likes WHERE from_user_id = $1 AND to_user_id = $2
			)
		`, toUserID, fromUserID)
		if err != nil {
			return false, false, fmt.Errorf("failed to check mutual like: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, false, err
	}
	return created, mutual, nil
}

func (r *decisionRepository) InsertSkip(ctx context.Context, fromUserID, toUserID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO skips (from_user_id, to_user_id)
		VALUES ($1, $2)
		ON CONFLICT (from_user_id, to_user_id) DO NOTHING
	`, fromUserID, toUserID)
	if err != nil {
		return false, fmt.Errorf("failed to insert skip: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *decisionRepository) CountLikes(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM likes`)
	return n, err
}

func (r *decisionRepository) CountSkips(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM skips`)
	return n, err
}
