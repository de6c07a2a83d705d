package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"vocab-quiz-service/internal/domain"
)

func TestDatasetRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		DatasetLoader: NewStaticDatasetLoader(map[string]domain.Dataset{
			"Alex": sampleDataset(),
		}),
	}
	repo := NewDatasetRepository(loader, time.Minute)

	ds, err := repo.GetDataset(context.Background(), "Alex")
	if err != nil {
		t.Fatalf("get dataset: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", ds.Len())
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetDataset(context.Background(), "Alex"); err != nil {
		t.Fatalf("get dataset 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestDatasetRepositoryExpires(t *testing.T) {
	loader := &countingLoader{
		DatasetLoader: NewStaticDatasetLoader(map[string]domain.Dataset{
			"Alex": sampleDataset(),
		}),
	}
	repo := NewDatasetRepository(loader, time.Minute)
	now := time.Now()
	repo.clock = func() time.Time { return now }

	if _, err := repo.GetDataset(context.Background(), "Alex"); err != nil {
		t.Fatalf("get dataset: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := repo.GetDataset(context.Background(), "Alex"); err != nil {
		t.Fatalf("get dataset after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls)
	}
}

func TestDatasetRepositoryDoesNotCacheErrors(t *testing.T) {
	loader := &countingLoader{DatasetLoader: NewStaticDatasetLoader(nil)}
	repo := NewDatasetRepository(loader, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := repo.GetDataset(context.Background(), "Nobody")
		if !errors.Is(err, domain.ErrDataSourceUnavailable) {
			t.Fatalf("expected data source error, got %v", err)
		}
	}
	if loader.calls != 2 {
		t.Fatalf("expected failures to be retried by the next call, loader calls %d", loader.calls)
	}
}

type countingLoader struct {
	DatasetLoader
	calls int
}

func (l *countingLoader) LoadDataset(ctx context.Context, user string) (domain.Dataset, error) {
	l.calls++
	return l.DatasetLoader.LoadDataset(ctx, user)
}

func sampleDataset() domain.Dataset {
	return domain.Dataset{
		User: "Alex",
		Entries: []domain.VocabularyEntry{
			{Term: "dog", Translation: "狗"},
			{Term: "cat", Translation: "貓"},
		},
	}
}
