package browse

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dmitrv/soulmate-bot/internal/domain"
	"github.com/dmitrv/soulmate-bot/internal/repository/memory"
	"github.com/dmitrv/soulmate-bot/pkg/logger"
)

// recordingNotifier counts deliveries so tests can assert the exactly-once
// match announcement.
type recordingNotifier struct {
	mu      sync.Mutex
	matches map[int64]int
	liked   map[int64]int
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{matches: make(map[int64]int), liked: make(map[int64]int)}
}

func (n *recordingNotifier) NotifyMatch(_ context.Context, userID int64, _ *domain.Profile, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.matches[userID]++
	return nil
}

func (n *recordingNotifier) NotifyLiked(_ context.Context, userID int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.liked[userID]++
	return nil
}

type staticIcebreaker struct{ line string }

func (s staticIcebreaker) Suggest(_ context.Context, _, _ *domain.Profile) (string, error) {
	return s.line, nil
}

type BrowseSuite struct {
	suite.Suite
	store    *memory.Store
	notifier *recordingNotifier
	uc       *UseCase
	ctx      context.Context
}

func (s *BrowseSuite) SetupTest() {
	s.store = memory.NewStore()
	s.notifier = newRecordingNotifier()
	s.ctx = context.Background()
	s.uc = NewUseCase(
		s.store.Profiles(),
		s.store.Decisions(),
		s.store.BrowseState(),
		s.notifier,
		staticIcebreaker{line: "ask about the hiking"},
		domain.CandidateFilter{},
		time.Minute,
		logger.NewNop(),
	)
}

func (s *BrowseSuite) seedProfile(userID int64, name string) {
	p := &domain.Profile{
		UserID: userID, Gender: domain.GenderFemale, DisplayName: name,
		Age: 30, City: "Riverside", Looking: domain.LookingFriends, About: "hi",
	}
	s.Require().NoError(s.store.Profiles().Upsert(s.ctx, p))
}

// point puts a candidate on the viewer's screen, as NextCandidate would.
func (s *BrowseSuite) point(viewerID, targetID int64) {
	s.T().Helper()
	s.Require().NoError(s.store.BrowseState().SetCurrentCandidate(s.ctx, viewerID, targetID, time.Minute))
}

// decide records a decision on a freshly shown card.
func (s *BrowseSuite) decide(viewerID, targetID int64, d domain.Decision) *Outcome {
	s.T().Helper()
	s.point(viewerID, targetID)
	outcome, err := s.uc.RecordDecision(s.ctx, viewerID, targetID, d)
	s.Require().NoError(err)
	s.Require().False(outcome.Expired)
	return outcome
}

func (s *BrowseSuite) TestBrowseRequiresCommittedProfile() {
	s.seedProfile(2, "Bea")

	_, err := s.uc.NextCandidate(s.ctx, 1)
	s.ErrorIs(err, domain.ErrProfileNotFound)
}

func (s *BrowseSuite) TestNextCandidateExcludesSelfAndDecided() {
	s.seedProfile(1, "Ann")
	s.seedProfile(2, "Bea")
	s.seedProfile(3, "Cal")

	s.decide(1, 2, domain.DecisionLike)
	s.decide(1, 3, domain.DecisionSkip)

	// Liked and skipped targets never reappear, and the viewer is never
	// their own candidate.
	candidate, err := s.uc.NextCandidate(s.ctx, 1)
	s.Require().NoError(err)
	s.Nil(candidate)
}

func (s *BrowseSuite) TestNextCandidateSetsPointerAndDecisionConsumesIt() {
	s.seedProfile(1, "Ann")
	s.seedProfile(2, "Bea")

	candidate, err := s.uc.NextCandidate(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().NotNil(candidate)
	s.Equal(int64(2), candidate.UserID)

	current, err := s.store.BrowseState().GetCurrentCandidate(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(int64(2), current)

	outcome, err := s.uc.RecordDecision(s.ctx, 1, 2, domain.DecisionSkip)
	s.Require().NoError(err)
	s.False(outcome.Expired)

	current, err = s.store.BrowseState().GetCurrentCandidate(s.ctx, 1)
	s.Require().NoError(err)
	s.Zero(current)
}

func (s *BrowseSuite) TestDecisionOnExpiredCardRecordsNothing() {
	s.seedProfile(1, "Ann")
	s.seedProfile(2, "Bea")

	// No pointer: the card's TTL ran out (or a restart dropped it).
	outcome, err := s.uc.RecordDecision(s.ctx, 1, 2, domain.DecisionLike)
	s.Require().NoError(err)
	s.True(outcome.Expired)

	likes, err := s.store.Decisions().CountLikes(s.ctx)
	s.Require().NoError(err)
	s.Zero(likes)
	s.Empty(s.notifier.liked)
	s.Empty(s.notifier.matches)
}

func (s *BrowseSuite) TestStaleCardKeepsNewerPointer() {
	s.seedProfile(1, "Ann")
	s.seedProfile(2, "Bea")
	s.seedProfile(3, "Cal")

	// Card 3 is on screen; a tap on the older card 2 must not consume it.
	s.point(1, 3)
	outcome, err := s.uc.RecordDecision(s.ctx, 1, 2, domain.DecisionLike)
	s.Require().NoError(err)
	s.True(outcome.Expired)

	current, err := s.store.BrowseState().GetCurrentCandidate(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(int64(3), current)

	likes, err := s.store.Decisions().CountLikes(s.ctx)
	s.Require().NoError(err)
	s.Zero(likes)
}

func (s *BrowseSuite) TestOneSidedLikeSendsAnonymousNotice() {
	s.seedProfile(1, "Ann")
	s.seedProfile(2, "Bea")

	outcome := s.decide(1, 2, domain.DecisionLike)
	s.False(outcome.Matched)
	s.False(outcome.AlreadyDecided)

	s.Equal(1, s.notifier.liked[2])
	s.Empty(s.notifier.matches)
}

func (s *BrowseSuite) TestMutualLikeMatchesExactlyOnce() {
	s.seedProfile(1, "Ann")
	s.seedProfile(2, "Bea")

	first := s.decide(1, 2, domain.DecisionLike)
	s.False(first.Matched)

	second := s.decide(2, 1, domain.DecisionLike)
	s.True(second.Matched)
	s.Require().NotNil(second.MatchedWith)
	s.Equal(int64(1), second.MatchedWith.UserID)

	s.Equal(1, s.notifier.matches[1])
	s.Equal(1, s.notifier.matches[2])
	// The completing like sends no extra anonymous notice.
	s.Equal(1, s.notifier.liked[2])
	s.Zero(s.notifier.liked[1])
}

func (s *BrowseSuite) TestRepeatLikeIsIdempotent() {
	s.seedProfile(1, "Ann")
	s.seedProfile(2, "Bea")

	s.decide(1, 2, domain.DecisionLike)
	s.decide(2, 1, domain.DecisionLike)

	// Re-liking after the match must not announce it again.
	outcome := s.decide(1, 2, domain.DecisionLike)
	s.True(outcome.AlreadyDecided)
	s.False(outcome.Matched)

	s.Equal(1, s.notifier.matches[1])
	s.Equal(1, s.notifier.matches[2])
}

func (s *BrowseSuite) TestConcurrentMutualLikeAnnouncesOnce() {
	s.seedProfile(1, "Ann")
	s.seedProfile(2, "Bea")
	s.point(1, 2)
	s.point(2, 1)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		from, to := int64(1), int64(2)
		if i == 1 {
			from, to = 2, 1
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.uc.RecordDecision(s.ctx, from, to, domain.DecisionLike)
			s.NoError(err)
		}()
	}
	wg.Wait()

	s.notifier.mu.Lock()
	defer s.notifier.mu.Unlock()
	s.Equal(1, s.notifier.matches[1])
	s.Equal(1, s.notifier.matches[2])
}

func (s *BrowseSuite) TestSkipDoesNotNotify() {
	s.seedProfile(1, "Ann")
	s.seedProfile(2, "Bea")

	outcome := s.decide(1, 2, domain.DecisionSkip)
	s.False(outcome.Matched)

	s.Empty(s.notifier.liked)
	s.Empty(s.notifier.matches)

	// A skip one way does not block a like the other way.
	outcome = s.decide(2, 1, domain.DecisionLike)
	s.False(outcome.Matched)
	s.Equal(1, s.notifier.liked[1])
}

func (s *BrowseSuite) TestSkipSurvivesProfileEdit() {
	s.seedProfile(1, "Ann")
	s.seedProfile(2, "Bea")

	s.decide(1, 2, domain.DecisionSkip)

	// Bea refills her profile; the skip edge keys on the user id, so she
	// still never reappears for Ann.
	s.Require().NoError(s.store.Profiles().Upsert(s.ctx, &domain.Profile{
		UserID: 2, Gender: domain.GenderFemale, DisplayName: "Beatrice",
		Age: 31, City: "Hilltown", Looking: domain.LookingRelationship, About: "new me",
	}))

	candidate, err := s.uc.NextCandidate(s.ctx, 1)
	s.Require().NoError(err)
	s.Nil(candidate)
}

func (s *BrowseSuite) TestSelfDecisionRejected() {
	s.seedProfile(1, "Ann")

	_, err := s.uc.RecordDecision(s.ctx, 1, 1, domain.DecisionLike)
	s.ErrorIs(err, domain.ErrCannotDecideSelf)
}

func (s *BrowseSuite) TestCandidateFilters() {
	s.uc.filter = domain.CandidateFilter{SameCity: true, AgeBandYears: 3}

	s.Require().NoError(s.store.Profiles().Upsert(s.ctx, &domain.Profile{
		UserID: 1, Gender: domain.GenderFemale, DisplayName: "Ann", Age: 30,
		City: "Riverside", Looking: domain.LookingFriends,
	}))
	// Wrong city.
	s.Require().NoError(s.store.Profiles().Upsert(s.ctx, &domain.Profile{
		UserID: 2, Gender: domain.GenderMale, DisplayName: "Bob", Age: 30,
		City: "Hilltown", Looking: domain.LookingFriends,
	}))
	// Outside the age band.
	s.Require().NoError(s.store.Profiles().Upsert(s.ctx, &domain.Profile{
		UserID: 3, Gender: domain.GenderMale, DisplayName: "Cal", Age: 45,
		City: "Riverside", Looking: domain.LookingFriends,
	}))
	// Eligible.
	s.Require().NoError(s.store.Profiles().Upsert(s.ctx, &domain.Profile{
		UserID: 4, Gender: domain.GenderMale, DisplayName: "Dan", Age: 28,
		City: "Riverside", Looking: domain.LookingFriends,
	}))

	candidate, err := s.uc.NextCandidate(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().NotNil(candidate)
	s.Equal(int64(4), candidate.UserID)
}

func (s *BrowseSuite) TestDeleteAccountCascades() {
	s.seedProfile(1, "Ann")
	s.seedProfile(2, "Bea")

	s.decide(1, 2, domain.DecisionLike)
	s.decide(2, 1, domain.DecisionSkip)

	s.Require().NoError(s.uc.DeleteAccount(s.ctx, 1))

	_, err := s.store.Profiles().GetByUserID(s.ctx, 1)
	s.ErrorIs(err, domain.ErrProfileNotFound)

	likes, err := s.store.Decisions().CountLikes(s.ctx)
	s.Require().NoError(err)
	s.Zero(likes)
	skips, err := s.store.Decisions().CountSkips(s.ctx)
	s.Require().NoError(err)
	s.Zero(skips)

	// Bea can be decided on again after the wipe.
	s.seedProfile(1, "Ann")
	candidate, err := s.uc.NextCandidate(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().NotNil(candidate)
	s.Equal(int64(2), candidate.UserID)
}

func (s *BrowseSuite) TestNilIcebreakerDisablesOpeners() {
	s.uc.icebreaker = nil
	s.seedProfile(1, "Ann")
	s.seedProfile(2, "Bea")

	s.decide(1, 2, domain.DecisionLike)
	outcome := s.decide(2, 1, domain.DecisionLike)
	s.True(outcome.Matched)
}

func TestBrowseSuite(t *testing.T) {
	suite.Run(t, new(BrowseSuite))
}
