package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"vocab-quiz-service/internal/domain"

	"golang.org/x/sync/singleflight"
)

// DatasetLoader fetches a user's word list from its source (sheet, file, database).
type DatasetLoader interface {
	LoadDataset(ctx context.Context, user string) (domain.Dataset, error)
}

// DatasetRepository caches datasets with TTL so re-selecting a user does not refetch.
type DatasetRepository struct {
	loader DatasetLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedDataset
}

type cachedDataset struct {
	dataset   domain.Dataset
	expiresAt time.Time
}

func NewDatasetRepository(loader DatasetLoader, ttl time.Duration) *DatasetRepository {
	return &DatasetRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedDataset),
	}
}

func (r *DatasetRepository) GetDataset(ctx context.Context, user string) (domain.Dataset, error) {
	if ds, ok := r.cached(user); ok {
		return ds, nil
	}

	result, err, _ := r.sf.Do(user, func() (interface{}, error) {
		// Re-check in case a concurrent call just filled the cache.
		if ds, ok := r.cached(user); ok {
			return ds, nil
		}

		ds, err := r.loader.LoadDataset(ctx, user)
		if err != nil {
			return domain.Dataset{}, err
		}

		r.mu.Lock()
		r.cache[user] = cachedDataset{
			dataset:   ds,
			expiresAt: r.clock().Add(r.ttlWithJitterLocked()),
		}
		r.mu.Unlock()
		return ds, nil
	})
	if err != nil {
		return domain.Dataset{}, err
	}
	return result.(domain.Dataset), nil
}

func (r *DatasetRepository) cached(user string) (domain.Dataset, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[user]; ok && entry.expiresAt.After(now) {
		return entry.dataset, true
	}
	return domain.Dataset{}, false
}

func (r *DatasetRepository) ttlWithJitterLocked() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticDatasetLoader is a loader backed by an in-memory map (useful for tests/demos).
type StaticDatasetLoader struct {
	datasets map[string]domain.Dataset
}

func NewStaticDatasetLoader(datasets map[string]domain.Dataset) *StaticDatasetLoader {
	return &StaticDatasetLoader{datasets: datasets}
}

func (l *StaticDatasetLoader) LoadDataset(_ context.Context, user string) (domain.Dataset, error) {
	if ds, ok := l.datasets[user]; ok {
		return ds, nil
	}
	return domain.Dataset{}, domain.ErrDataSourceUnavailable
}
