package postgres

import (
	"context"
	"fmt"

	"vocab-quiz-service/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// DatasetLoader loads a user's vocabulary rows from Postgres.
type DatasetLoader struct {
	pool *pgxpool.Pool
}

func NewDatasetLoader(pool *pgxpool.Pool) *DatasetLoader {
	return &DatasetLoader{pool: pool}
}

func (l *DatasetLoader) LoadDataset(ctx context.Context, user string) (domain.Dataset, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT term, translation, phonetic, example FROM vocabulary_entries WHERE owner=$1 ORDER BY position`,
		user)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("%w: query vocabulary: %w", domain.ErrDataSourceUnavailable, err)
	}
	defer rows.Close()

	ds := domain.Dataset{User: user}
	for rows.Next() {
		var e domain.VocabularyEntry
		if err := rows.Scan(&e.Term, &e.Translation, &e.Phonetic, &e.Example); err != nil {
			return domain.Dataset{}, fmt.Errorf("%w: scan vocabulary: %w", domain.ErrDataSourceUnavailable, err)
		}
		ds.Entries = append(ds.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return domain.Dataset{}, fmt.Errorf("%w: read vocabulary: %w", domain.ErrDataSourceUnavailable, err)
	}
	if ds.Len() == 0 {
		return domain.Dataset{}, fmt.Errorf("%w: no vocabulary for user %q", domain.ErrDataSourceUnavailable, user)
	}
	return ds, nil
}
