package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/mgupta0995/stockfolio/config"
	"github.com/mgupta0995/stockfolio/internal/model"
	"github.com/mgupta0995/stockfolio/utils"
	"github.com/redis/go-redis/v9"
)

const searchKeyPrefix = "search:"

// RedisCache holds ticker search results only. Quotes are deliberately not
// cached: a displayed price must come from a live resolution pass.
type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func (r *RedisCache) SetSearchResults(ctx context.Context, query string, candidates []model.Candidate) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetSearchResults start", slog.String("rqID", rqID), slog.String("query", query))

	candidatesJson, err := json.Marshal(candidates)
	if err != nil {
		slog.Error(
			"can't marshall candidates in SetSearchResults",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
		)
		return errors.New("can't marshall candidates")
	}

	_, err = r.redis.Set(ctx, searchKeyPrefix+query, candidatesJson, r.cfg.Cache.SearchExpiration).Result()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("query", query))
		return err
	}

	slog.Debug("SetSearchResults completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetSearchResults(ctx context.Context, query string) ([]model.Candidate, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetSearchResults start", slog.String("rqID", rqID), slog.String("query", query))

	res, err := r.redis.Get(ctx, searchKeyPrefix+query).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("query", query))
		}
		return nil, err
	}

	candidates := make([]model.Candidate, 0)
	err = json.Unmarshal([]byte(res), &candidates)
	if err != nil {
		slog.Error(
			"can't unmarshall candidates in GetSearchResults",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return nil, errors.New("can't unmarshall candidates")
	}

	slog.Debug("GetSearchResults finished", slog.String("rqID", rqID))

	return candidates, nil
}
