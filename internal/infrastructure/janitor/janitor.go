package janitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dmitrv/soulmate-bot/internal/repository"
	"github.com/dmitrv/soulmate-bot/pkg/logger"
)

// Janitor periodically discards onboarding sessions that have been idle for
// longer than the configured TTL, so abandoned questionnaires do not pile up
// forever.
type Janitor struct {
	sessionRepo repository.SessionRepository
	ttl         time.Duration
	interval    time.Duration
	log         logger.Logger
}

func New(sessionRepo repository.SessionRepository, ttl, interval time.Duration, log logger.Logger) *Janitor {
	return &Janitor{
		sessionRepo: sessionRepo,
		ttl:         ttl,
		interval:    interval,
		log:         log,
	}
}

// Run sweeps on a ticker until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep runs one pass and returns how many sessions were discarded.
func (j *Janitor) Sweep(ctx context.Context) int {
	swept, err := j.sessionRepo.DeleteIdle(ctx, j.ttl)
	if err != nil {
		j.log.Warn("session sweep failed", zap.Error(err))
		return 0
	}
	if swept > 0 {
		j.log.Info("swept idle sessions", zap.Int("count", swept))
	}
	return swept
}
