// Package memory provides in-memory repository implementations with the same
// semantics as the postgres ones. They back the unit tests and make the
// storage layer swappable, as every cross-cutting invariant (idempotent
// edges, atomic commit, cascading delete) lives behind the repository
// interfaces.
package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/dmitrv/soulmate-bot/internal/domain"
	"github.com/dmitrv/soulmate-bot/internal/repository"
)

type pair struct {
	from, to int64
}

// Store holds all tables behind one mutex; the coarse lock gives the same
// pair-serialization guarantee the postgres advisory locks provide.
type Store struct {
	mu       sync.Mutex
	profiles map[int64]domain.Profile
	sessions map[int64]domain.OnboardingSession
	likes    map[pair]time.Time
	skips    map[pair]time.Time
	browse   map[int64]int64

	// UpsertErr, when set, makes profile commits fail; tests use it to check
	// that a failed commit preserves the session.
	UpsertErr error
	// GetErr, when set, makes profile reads fail; tests use it to simulate a
	// storage outage.
	GetErr error
}

func NewStore() *Store {
	return &Store{
		profiles: make(map[int64]domain.Profile),
		sessions: make(map[int64]domain.OnboardingSession),
		likes:    make(map[pair]time.Time),
		skips:    make(map[pair]time.Time),
		browse:   make(map[int64]int64),
	}
}

func (s *Store) Profiles() repository.ProfileRepository     { return (*profileRepo)(s) }
func (s *Store) Sessions() repository.SessionRepository     { return (*sessionRepo)(s) }
func (s *Store) Decisions() repository.DecisionRepository   { return (*decisionRepo)(s) }
func (s *Store) BrowseState() repository.BrowseStateRepository { return (*browseRepo)(s) }

type profileRepo Store

func (r *profileRepo) Upsert(_ context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.UpsertErr != nil {
		return r.UpsertErr
	}
	now := time.Now()
	stored, exists := r.profiles[profile.UserID]
	if exists {
		profile.CreatedAt = stored.CreatedAt
	} else {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	r.profiles[profile.UserID] = *profile
	return nil
}

func (r *profileRepo) GetByUserID(_ context.Context, userID int64) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	p, ok := r.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &p, nil
}

func (r *profileRepo) PickCandidate(_ context.Context, viewerID int64, filter domain.CandidateFilter) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var viewer *domain.Profile
	if filter.Enabled() {
		v, ok := r.profiles[viewerID]
		if !ok {
			return nil, domain.ErrProfileNotFound
		}
		viewer = &v
	}

	var eligible []domain.Profile
	for id, p := range r.profiles {
		if id == viewerID {
			continue
		}
		if _, liked := r.likes[pair{viewerID, id}]; liked {
			continue
		}
		if _, skipped := r.skips[pair{viewerID, id}]; skipped {
			continue
		}
		if viewer != nil {
			if filter.SameCity && p.City != viewer.City {
				continue
			}
			if filter.SameLooking && p.Looking != viewer.Looking {
				continue
			}
			if filter.AgeBandYears > 0 &&
				(p.Age < viewer.Age-filter.AgeBandYears || p.Age > viewer.Age+filter.AgeBandYears) {
				continue
			}
		}
		eligible = append(eligible, p)
	}
	if len(eligible) == 0 {
		return nil, nil
	}
	picked := eligible[rand.Intn(len(eligible))]
	return &picked, nil
}

func (r *profileRepo) DeleteAccount(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, userID)
	delete(r.sessions, userID)
	delete(r.browse, userID)
	for p := range r.likes {
		if p.from == userID || p.to == userID {
			delete(r.likes, p)
		}
	}
	for p := range r.skips {
		if p.from == userID || p.to == userID {
			delete(r.skips, p)
		}
	}
	return nil
}

func (r *profileRepo) CountProfiles(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.profiles), nil
}

type sessionRepo Store

func (r *sessionRepo) Save(_ context.Context, session *domain.OnboardingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.UpdatedAt = time.Now()
	r.sessions[session.UserID] = *session
	return nil
}

func (r *sessionRepo) Get(_ context.Context, userID int64) (*domain.OnboardingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (r *sessionRepo) Delete(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
	return nil
}

func (r *sessionRepo) DeleteIdle(_ context.Context, ttl time.Duration) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-ttl)
	swept := 0
	for id, s := range r.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(r.sessions, id)
			swept++
		}
	}
	return swept, nil
}

type decisionRepo Store

func (r *decisionRepo) InsertLike(_ context.Context, fromUserID, toUserID int64) (bool, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.likes[pair{fromUserID, toUserID}]; exists {
		return false, false, nil
	}
	r.likes[pair{fromUserID, toUserID}] = time.Now()
	_, mutual := r.likes[pair{toUserID, fromUserID}]
	return true, mutual, nil
}

func (r *decisionRepo) InsertSkip(_ context.Context, fromUserID, toUserID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.skips[pair{fromUserID, toUserID}]; exists {
		return false, nil
	}
	r.skips[pair{fromUserID, toUserID}] = time.Now()
	return true, nil
}

func (r *decisionRepo) CountLikes(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.likes), nil
}

func (r *decisionRepo) CountSkips(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.skips), nil
}

type browseRepo Store

func (r *browseRepo) SetCurrentCandidate(_ context.Context, viewerID, candidateID int64, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.browse[viewerID] = candidateID
	return nil
}

func (r *browseRepo) GetCurrentCandidate(_ context.Context, viewerID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.browse[viewerID], nil
}

func (r *browseRepo) ClearCurrentCandidate(_ context.Context, viewerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.browse, viewerID)
	return nil
}
