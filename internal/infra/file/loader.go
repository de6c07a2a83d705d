// Package file loads vocabulary tables from CSV files on disk, one file per user.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vocab-quiz-service/internal/dataset"
	"vocab-quiz-service/internal/domain"
)

// Loader reads <dir>/<user>.csv.
type Loader struct {
	dir string
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

func (l *Loader) LoadDataset(_ context.Context, user string) (domain.Dataset, error) {
	if user == "" || strings.ContainsAny(user, `/\`) || user == "." || user == ".." {
		return domain.Dataset{}, fmt.Errorf("%w: invalid user name %q", domain.ErrDataSourceUnavailable, user)
	}
	path := filepath.Join(l.dir, user+".csv")

	f, err := os.Open(path)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("%w: %w", domain.ErrDataSourceUnavailable, err)
	}
	defer f.Close()

	ds, err := dataset.Parse(user, f)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("%w: parse %s: %w", domain.ErrDataSourceUnavailable, path, err)
	}
	return ds, nil
}
