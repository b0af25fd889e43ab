package browse

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dmitrv/soulmate-bot/internal/domain"
	"github.com/dmitrv/soulmate-bot/internal/repository"
	"github.com/dmitrv/soulmate-bot/pkg/logger"
)

// Notifier delivers out-of-band notices to users. NotifyLiked must not reveal
// who liked the target.
type Notifier interface {
	NotifyMatch(ctx context.Context, userID int64, with *domain.Profile, icebreaker string) error
	NotifyLiked(ctx context.Context, userID int64) error
}

// IcebreakerSuggester produces an optional opening line for a fresh match.
// A nil suggester disables the feature.
type IcebreakerSuggester interface {
	Suggest(ctx context.Context, a, b *domain.Profile) (string, error)
}

// UseCase serves candidate cards and records like/skip decisions, announcing
// mutual matches exactly once.
type UseCase struct {
	profileRepo  repository.ProfileRepository
	decisionRepo repository.DecisionRepository
	browseRepo   repository.BrowseStateRepository
	notifier     Notifier
	icebreaker   IcebreakerSuggester
	filter       domain.CandidateFilter
	candidateTTL time.Duration
	log          logger.Logger
}

func NewUseCase(
	profileRepo repository.ProfileRepository,
	decisionRepo repository.DecisionRepository,
	browseRepo repository.BrowseStateRepository,
	notifier Notifier,
	icebreaker IcebreakerSuggester,
	filter domain.CandidateFilter,
	candidateTTL time.Duration,
	log logger.Logger,
) *UseCase {
	return &UseCase{
		profileRepo:  profileRepo,
		decisionRepo: decisionRepo,
		browseRepo:   browseRepo,
		notifier:     notifier,
		icebreaker:   icebreaker,
		filter:       filter,
		candidateTTL: candidateTTL,
		log:          log,
	}
}

// Profile returns the user's own committed profile.
func (uc *UseCase) Profile(ctx context.Context, userID int64) (*domain.Profile, error) {
	return uc.profileRepo.GetByUserID(ctx, userID)
}

// NextCandidate picks one not-yet-decided profile for the viewer. A nil
// profile with nil error means nobody is eligible right now, a normal
// "check back later" outcome, not a failure.
func (uc *UseCase) NextCandidate(ctx context.Context, viewerID int64) (*domain.Profile, error) {
	// Only users with a committed profile may browse.
	if _, err := uc.profileRepo.GetByUserID(ctx, viewerID); err != nil {
		return nil, err
	}

	candidate, err := uc.profileRepo.PickCandidate(ctx, viewerID, uc.filter)
	if err != nil {
		return nil, fmt.Errorf("failed to pick candidate: %w", err)
	}
	if candidate == nil {
		return nil, nil
	}

	if err := uc.browseRepo.SetCurrentCandidate(ctx, viewerID, candidate.UserID, uc.candidateTTL); err != nil {
		uc.log.Warn("failed to remember current candidate",
			zap.Int64("viewer_id", viewerID), zap.Error(err))
	}
	return candidate, nil
}

// Outcome describes what a decision produced.
type Outcome struct {
	// Expired is set when the decision did not refer to the candidate
	// currently on screen: the pointer timed out or a newer card replaced
	// it. Nothing was recorded; the viewer should get a fresh card.
	Expired bool
	// AlreadyDecided is set when the viewer had decided on this target
	// before; nothing was recorded and nobody was notified.
	AlreadyDecided bool
	// Matched is set when this like completed a mutual pair. Both sides have
	// been notified by the time RecordDecision returns.
	Matched bool
	// MatchedWith is the target's profile when Matched is set.
	MatchedWith *domain.Profile
}

// RecordDecision records a like or skip edge for the candidate currently on
// screen. A tap on a keyboard whose pointer expired or was replaced by a
// newer card records nothing and comes back Expired. On a like that completes
// a mutual pair, both users are notified exactly once: only the call whose
// insert observed the completed pair announces the match, so a repeat like or
// a later browse never re-announces it.
func (uc *UseCase) RecordDecision(ctx context.Context, viewerID, targetID int64, decision domain.Decision) (*Outcome, error) {
	if viewerID == targetID {
		return nil, domain.ErrCannotDecideSelf
	}
	if !decision.Valid() {
		return nil, fmt.Errorf("unknown decision %q", decision)
	}

	current, err := uc.browseRepo.GetCurrentCandidate(ctx, viewerID)
	if err != nil {
		// Pointer storage being down must not block decisions.
		uc.log.Warn("failed to read current candidate",
			zap.Int64("viewer_id", viewerID), zap.Error(err))
	} else if current != targetID {
		return &Outcome{Expired: true}, nil
	}

	defer func() {
		if err := uc.browseRepo.ClearCurrentCandidate(ctx, viewerID); err != nil {
			uc.log.Warn("failed to clear current candidate",
				zap.Int64("viewer_id", viewerID), zap.Error(err))
		}
	}()

	if decision == domain.DecisionSkip {
		created, err := uc.decisionRepo.InsertSkip(ctx, viewerID, targetID)
		if err != nil {
			return nil, fmt.Errorf("failed to record skip: %w", err)
		}
		return &Outcome{AlreadyDecided: !created}, nil
	}

	created, mutual, err := uc.decisionRepo.InsertLike(ctx, viewerID, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to record like: %w", err)
	}
	if !created {
		return &Outcome{AlreadyDecided: true}, nil
	}

	if !mutual {
		// Anonymous notice only: the liker's identity stays hidden until the
		// target likes them back.
		if err := uc.notifier.NotifyLiked(ctx, targetID); err != nil {
			uc.log.Warn("failed to deliver liked notice",
				zap.Int64("target_id", targetID), zap.Error(err))
		}
		return &Outcome{}, nil
	}

	viewer, err := uc.profileRepo.GetByUserID(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	target, err := uc.profileRepo.GetByUserID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	icebreaker := uc.suggestIcebreaker(ctx, viewer, target)

	if err := uc.notifier.NotifyMatch(ctx, viewerID, target, icebreaker); err != nil {
		uc.log.Warn("failed to deliver match notice",
			zap.Int64("user_id", viewerID), zap.Error(err))
	}
	if err := uc.notifier.NotifyMatch(ctx, targetID, viewer, icebreaker); err != nil {
		uc.log.Warn("failed to deliver match notice",
			zap.Int64("user_id", targetID), zap.Error(err))
	}

	uc.log.Info("mutual match",
		zap.Int64("user_id", viewerID), zap.Int64("with", targetID))
	return &Outcome{Matched: true, MatchedWith: target}, nil
}

// DeleteAccount removes the user's profile, sessions and every edge in either
// direction in one storage transaction.
func (uc *UseCase) DeleteAccount(ctx context.Context, userID int64) error {
	if err := uc.profileRepo.DeleteAccount(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if err := uc.browseRepo.ClearCurrentCandidate(ctx, userID); err != nil {
		uc.log.Warn("failed to clear browse state",
			zap.Int64("user_id", userID), zap.Error(err))
	}
	uc.log.Info("account deleted", zap.Int64("user_id", userID))
	return nil
}

// suggestIcebreaker never fails the decision; any error just drops the line.
func (uc *UseCase) suggestIcebreaker(ctx context.Context, a, b *domain.Profile) string {
	if uc.icebreaker == nil {
		return ""
	}
	line, err := uc.icebreaker.Suggest(ctx, a, b)
	if err != nil {
		uc.log.Warn("icebreaker generation failed", zap.Error(err))
		return ""
	}
	return line
}
