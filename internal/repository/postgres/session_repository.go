package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrv/soulmate-bot/internal/domain"
	"github.com/dmitrv/soulmate-bot/internal/repository"
	"github.com/jmoiron/sqlx"
)

type sessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.OnboardingSession) error {
	query := `
		INSERT INTO onboarding_sessions (user_id, current_step, answers, edit_mode)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			current_step = EXCLUDED.current_step,
			answers = EXCLUDED.answers,
			edit_mode = EXCLUDED.edit_mode,
			updated_at = CURRENT_TIMESTAMP
		RETURNING updated_at
	`
	return r.db.QueryRowContext(
		ctx, query,
		session.UserID, session.CurrentStep, session.Answers, session.EditMode,
	).Scan(&session.UpdatedAt)
}

func (r *sessionRepository) Get(ctx context.Context, userID int64) (*domain.OnboardingSession, error) {
	var session domain.OnboardingSession
	query := `SELECT user_id, current_step, answers, edit_mode, updated_at FROM onboarding_sessions WHERE user_id = $1`
	err := r.db.GetContext(ctx, &session, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM onboarding_sessions WHERE user_id = $1`, userID)
	return err
}

func (r *sessionRepository) DeleteIdle(ctx context.Context, ttl time.Duration) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM onboarding_sessions
		WHERE updated_at < CURRENT_TIMESTAMP - $1::interval
	`, fmt.Sprintf("%d seconds", int(ttl.Seconds())))
	if err != nil {
		return 0, fmt.Errorf("failed to sweep idle sessions: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}
