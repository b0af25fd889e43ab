package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrv/soulmate-bot/internal/repository"
)

type browseStateRepository struct {
	client *goredis.Client
}

func NewBrowseStateRepository(client *goredis.Client) repository.BrowseStateRepository {
	return &browseStateRepository{client: client}
}

func browseKey(viewerID int64) string {
	return fmt.Sprintf("browse:current:%d", viewerID)
}

func (r *browseStateRepository) SetCurrentCandidate(ctx context.Context, viewerID, candidateID int64, ttl time.Duration) error {
	return r.client.Set(ctx, browseKey(viewerID), candidateID, ttl).Err()
}

func (r *browseStateRepository) GetCurrentCandidate(ctx context.Context, viewerID int64) (int64, error) {
	val, err := r.client.Get(ctx, browseKey(viewerID)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

func (r *browseStateRepository) ClearCurrentCandidate(ctx context.Context, viewerID int64) error {
	return r.client.Del(ctx, browseKey(viewerID)).Err()
}
