package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrv/soulmate-bot/internal/domain"
	"github.com/dmitrv/soulmate-bot/internal/repository"
	"github.com/jmoiron/sqlx"
)

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (user_id, gender, display_name, age, city, looking, about, photo_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			gender = EXCLUDED.gender,
			display_name = EXCLUDED.display_name,
			age = EXCLUDED.age,
			city = EXCLUDED.city,
			looking = EXCLUDED.looking,
			about = EXCLUDED.about,
			photo_ref = EXCLUDED.photo_ref,
			updated_at = CURRENT_TIMESTAMP
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowContext(
		ctx, query,
		profile.UserID, profile.Gender, profile.DisplayName, profile.Age,
		profile.City, profile.Looking, profile.About, profile.PhotoRef,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Profile, error) {
	var profile domain.Profile
	query := `SELECT * FROM profiles WHERE user_id = $1`
	err := r.db.GetContext(ctx, &profile, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) PickCandidate(ctx context.Context, viewerID int64, filter domain.CandidateFilter) (*domain.Profile, error) {
	query := `
		SELECT p.* FROM profiles p
		WHERE p.user_id != $1
		  AND NOT EXISTS (
			SELECT 1 FROM likes l WHERE l.from_user_id = $1 AND l.to_user_id = p.user_id
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM skips s WHERE s.from_user_id = $1 AND s.to_user_id = p.user_id
		  )`
	args := []interface{}{viewerID}
	argCount := 2

	if filter.Enabled() {
		viewer, err := r.GetByUserID(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		if filter.SameCity {
			query += fmt.Sprintf(" AND p.city = $%d", argCount)
			args = append(args, viewer.City)
			argCount++
		}
		if filter.SameLooking {
			query += fmt.Sprintf(" AND p.looking = $%d", argCount)
			args = append(args, viewer.Looking)
			argCount++
		}
		if filter.AgeBandYears > 0 {
			query += fmt.Sprintf(" AND p.age BETWEEN $%d AND $%d", argCount, argCount+1)
			args = append(args, viewer.Age-filter.AgeBandYears, viewer.Age+filter.AgeBandYears)
			argCount += 2
		}
	}

	// Uniform random pick keeps no candidate perpetually first or last.
	query += ` ORDER BY RANDOM() LIMIT 1`

	var profile domain.Profile
	err := r.db.GetContext(ctx, &profile, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) DeleteAccount(ctx context.Context, userID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	statements := []string{
		`DELETE FROM likes WHERE from_user_id = $1 OR to_user_id = $1`,
		`DELETE FROM skips WHERE from_user_id = $1 OR to_user_id = $1`,
		`DELETE FROM onboarding_sessions WHERE user_id = $1`,
		`DELETE FROM profiles WHERE user_id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, userID); err != nil {
			return fmt.Errorf("failed to cascade delete: %w", err)
		}
	}

	return tx.Commit()
}

func (r *profileRepository) CountProfiles(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM profiles`)
	return n, err
}
