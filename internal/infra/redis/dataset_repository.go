package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"vocab-quiz-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// DatasetLoader fetches a user's word list from its source (sheet, file, database).
type DatasetLoader interface {
	LoadDataset(ctx context.Context, user string) (domain.Dataset, error)
}

// DatasetRepository caches datasets in Redis and falls back to a loader on cache miss.
// Each dataset is stored as JSON under: vocab:dataset:{user}
type DatasetRepository struct {
	client *redis.Client
	loader DatasetLoader
	ttl    time.Duration
	logger *slog.Logger
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewDatasetRepository(client *redis.Client, loader DatasetLoader, ttl time.Duration) *DatasetRepository {
	return &DatasetRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		logger: slog.Default(),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *DatasetRepository) GetDataset(ctx context.Context, user string) (domain.Dataset, error) {
	key := r.key(user)
	if ds, ok := r.fromCache(ctx, key); ok {
		return ds, nil
	}

	result, err, _ := r.sf.Do(user, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if ds, ok := r.fromCache(ctx, key); ok {
			return ds, nil
		}

		ds, err := r.loader.LoadDataset(ctx, user)
		if err != nil {
			return domain.Dataset{}, err
		}

		// a failed write only costs a refetch next time
		if raw, err := json.Marshal(ds); err == nil {
			_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		}
		return ds, nil
	})
	if err != nil {
		return domain.Dataset{}, err
	}
	return result.(domain.Dataset), nil
}

// Invalidate drops the cached dataset of user.
func (r *DatasetRepository) Invalidate(ctx context.Context, user string) error {
	return r.client.Del(ctx, r.key(user)).Err()
}

func (r *DatasetRepository) fromCache(ctx context.Context, key string) (domain.Dataset, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !IsCacheMiss(err) {
			r.logger.WarnContext(ctx, "dataset cache read failed", "key", key, "error", err)
		}
		return domain.Dataset{}, false
	}
	var ds domain.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		r.logger.WarnContext(ctx, "dataset cache entry corrupt", "key", key, "error", err)
		return domain.Dataset{}, false
	}
	return ds, true
}

func (r *DatasetRepository) key(user string) string {
	return "vocab:dataset:" + user
}

func (r *DatasetRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// IsCacheMiss reports whether err is the Redis "no such key" reply.
func IsCacheMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}
