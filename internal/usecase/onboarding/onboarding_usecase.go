package onboarding

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dmitrv/soulmate-bot/internal/domain"
	"github.com/dmitrv/soulmate-bot/internal/repository"
	"github.com/dmitrv/soulmate-bot/pkg/logger"
)

// UseCase walks one user through the questionnaire, buffering answers in a
// persisted session and committing the profile atomically at the end.
type UseCase struct {
	sessionRepo repository.SessionRepository
	profileRepo repository.ProfileRepository
	log         logger.Logger
}

func NewUseCase(
	sessionRepo repository.SessionRepository,
	profileRepo repository.ProfileRepository,
	log logger.Logger,
) *UseCase {
	return &UseCase{
		sessionRepo: sessionRepo,
		profileRepo: profileRepo,
		log:         log,
	}
}

// Result tells the delivery layer what happened and which step to prompt.
type Result struct {
	// Step to prompt next. StepDone means the profile was committed.
	Step domain.Step
	// Committed is set on the terminal commit; Profile carries the result.
	Committed bool
	Profile   *domain.Profile
	// Restarted is set when the confirm step sent the user back to the top.
	Restarted bool
	// Invalid is set when the answer was rejected; the step did not advance.
	Invalid *domain.ValidationError
	// WrongKind is set when the payload kind did not fit the step (text at
	// the photo step, photo at a text step). The step did not advance.
	WrongKind bool
	// Preview is the would-be profile, set whenever Step is the confirm
	// step, so the delivery layer can render the final card.
	Preview *domain.Profile
}

func (r *Result) withPreview(session *domain.OnboardingSession) *Result {
	if r.Step == domain.StepConfirm {
		r.Preview = session.ToProfile()
	}
	return r
}

// Begin clears any prior session and opens a fresh one at the first step.
// It always succeeds.
func (uc *UseCase) Begin(ctx context.Context, userID int64) (*Result, error) {
	session := domain.NewSession(userID)
	if err := uc.sessionRepo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return &Result{Step: session.CurrentStep}, nil
}

// BeginEdit opens a session pre-seeded from the committed profile. The
// committed profile stays in place until the new chain commits, so an
// abandoned edit never leaves the user profile-less.
func (uc *UseCase) BeginEdit(ctx context.Context, userID int64) (*Result, error) {
	profile, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return uc.Begin(ctx, userID)
		}
		return nil, err
	}
	session := domain.NewEditSession(profile)
	if err := uc.sessionRepo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return &Result{Step: session.CurrentStep}, nil
}

// Active reports whether the user is mid-onboarding.
func (uc *UseCase) Active(ctx context.Context, userID int64) (bool, error) {
	_, err := uc.sessionRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SubmitText interprets text as the answer to the session's current step.
func (uc *UseCase) SubmitText(ctx context.Context, userID int64, text string) (*Result, error) {
	session, err := uc.sessionRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	wasConfirm := session.CurrentStep == domain.StepConfirm

	if err := session.Apply(text); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return &Result{Step: session.CurrentStep, Invalid: ve}, nil
		}
		if errors.Is(err, domain.ErrWrongInputKind) {
			return &Result{Step: session.CurrentStep, WrongKind: true}, nil
		}
		return nil, err
	}

	if wasConfirm && session.CurrentStep == domain.FirstStep {
		if err := uc.sessionRepo.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
		return &Result{Step: session.CurrentStep, Restarted: true}, nil
	}

	if session.CurrentStep == domain.StepDone {
		return uc.commit(ctx, session)
	}

	if err := uc.sessionRepo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return (&Result{Step: session.CurrentStep}).withPreview(session), nil
}

// SubmitPhoto stores the opaque photo reference; only valid at the photo step.
func (uc *UseCase) SubmitPhoto(ctx context.Context, userID int64, photoRef string) (*Result, error) {
	session, err := uc.sessionRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := session.ApplyPhoto(photoRef); err != nil {
		if errors.Is(err, domain.ErrWrongInputKind) {
			return &Result{Step: session.CurrentStep, WrongKind: true}, nil
		}
		return nil, err
	}

	if err := uc.sessionRepo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return (&Result{Step: session.CurrentStep}).withPreview(session), nil
}

// Cancel destroys the session without committing; idempotent.
func (uc *UseCase) Cancel(ctx context.Context, userID int64) error {
	return uc.sessionRepo.Delete(ctx, userID)
}

// commit upserts the full answer bag and only then destroys the session. A
// storage failure keeps the session so the user is not forced to re-enter
// everything.
func (uc *UseCase) commit(ctx context.Context, session *domain.OnboardingSession) (*Result, error) {
	if !session.Complete() {
		// A session can only reach confirm with every answer collected;
		// anything else is a programming error, restart the chain.
		uc.log.Warn("confirmed session is incomplete, restarting",
			zap.Int64("user_id", session.UserID))
		session.Restart()
		if err := uc.sessionRepo.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
		return &Result{Step: session.CurrentStep, Restarted: true}, nil
	}

	profile := session.ToProfile()
	if err := uc.profileRepo.Upsert(ctx, profile); err != nil {
		// Session stays put; the user can confirm again once storage recovers.
		session.CurrentStep = domain.StepConfirm
		if saveErr := uc.sessionRepo.Save(ctx, session); saveErr != nil {
			uc.log.Error("failed to restore session after commit failure", saveErr,
				zap.Int64("user_id", session.UserID))
		}
		return nil, fmt.Errorf("failed to commit profile: %w", err)
	}

	if err := uc.sessionRepo.Delete(ctx, session.UserID); err != nil {
		// The profile is committed; a leftover session is harmless and will
		// be swept by the janitor.
		uc.log.Warn("failed to delete session after commit",
			zap.Int64("user_id", session.UserID), zap.Error(err))
	}

	uc.log.Info("profile committed",
		zap.Int64("user_id", session.UserID), zap.Bool("edit", session.EditMode))
	return &Result{Step: domain.StepDone, Committed: true, Profile: profile}, nil
}
