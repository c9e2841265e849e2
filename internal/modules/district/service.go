// README: District resolver maps locations to districts with a Redis read-through cache.
package district

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "district:loc:"

type Repository interface {
	FindByLocation(ctx context.Context, key string) (District, error)
	Get(ctx context.Context, code string) (District, error)
	List(ctx context.Context) ([]District, error)
}

type Service struct {
	repo  Repository
	redis *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

// NewService builds a resolver. rdb may be nil, which disables caching.
func NewService(repo Repository, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, redis: rdb, ttl: ttl, log: log}
}

// Resolve returns the district for a free-form location, or ErrNotFound.
// Cache failures are logged and fall through to the repository.
func (s *Service) Resolve(ctx context.Context, location string) (District, error) {
	key := NormalizeLocation(location)
	if key == "" {
		return District{}, ErrNotFound
	}

	if s.redis != nil {
		raw, err := s.redis.Get(ctx, cacheKeyPrefix+key).Bytes()
		switch {
		case err == nil:
			var d District
			if jerr := json.Unmarshal(raw, &d); jerr == nil {
				return d, nil
			}
		case !errors.Is(err, redis.Nil):
			s.log.Warn("district cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	d, err := s.repo.FindByLocation(ctx, key)
	if err != nil {
		return District{}, err
	}

	if s.redis != nil {
		if raw, jerr := json.Marshal(d); jerr == nil {
			if err := s.redis.Set(ctx, cacheKeyPrefix+key, raw, s.ttl).Err(); err != nil {
				s.log.Warn("district cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, code string) (District, error) {
	return s.repo.Get(ctx, code)
}

func (s *Service) List(ctx context.Context) ([]District, error) {
	return s.repo.List(ctx)
}
