package postgres

import (
	"context"
	"fmt"

	"vocab-quiz-service/internal/domain"

	"github.com/uptrace/bun"
)

type vocabularyEntryRow struct {
	bun.BaseModel `bun:"table:vocabulary_entries"`

	Owner       string `bun:"owner,pk"`
	Position    int    `bun:"position,pk"`
	Term        string `bun:"term,notnull"`
	Translation string `bun:"translation,notnull"`
	Phonetic    string `bun:"phonetic,notnull"`
	Example     string `bun:"example,notnull"`
}

// DatasetWriter stores imported word lists.
type DatasetWriter struct {
	db *bun.DB
}

func NewDatasetWriter(db *bun.DB) *DatasetWriter {
	return &DatasetWriter{db: db}
}

// Replace swaps the stored rows of ds.User for the entries of ds in one transaction.
func (w *DatasetWriter) Replace(ctx context.Context, ds domain.Dataset) error {
	if ds.User == "" {
		return fmt.Errorf("replace vocabulary: empty user")
	}

	rows := make([]vocabularyEntryRow, 0, ds.Len())
	for i, e := range ds.Entries {
		rows = append(rows, vocabularyEntryRow{
			Owner:       ds.User,
			Position:    i,
			Term:        e.Term,
			Translation: e.Translation,
			Phonetic:    e.Phonetic,
			Example:     e.Example,
		})
	}

	return w.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*vocabularyEntryRow)(nil)).
			Where("owner = ?", ds.User).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete vocabulary: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert vocabulary: %w", err)
		}
		return nil
	})
}
