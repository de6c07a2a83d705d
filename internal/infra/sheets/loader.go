// Package sheets loads vocabulary tables published from a Google Sheets
// spreadsheet, one tab per user.
package sheets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"vocab-quiz-service/internal/dataset"
	"vocab-quiz-service/internal/domain"
)

// DefaultURLTemplate exports a single sheet tab as CSV.
const DefaultURLTemplate = "https://docs.google.com/spreadsheets/d/{sheet_id}/gviz/tq?tqx=out:csv&sheet={sheet}"

// Loader fetches a user's tab as CSV over HTTP.
type Loader struct {
	client      *http.Client
	sheetID     string
	urlTemplate string
}

func NewLoader(client *http.Client, sheetID, urlTemplate string) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	if urlTemplate == "" {
		urlTemplate = DefaultURLTemplate
	}
	return &Loader{client: client, sheetID: sheetID, urlTemplate: urlTemplate}
}

// URL returns the CSV export address of user's tab.
func (l *Loader) URL(user string) string {
	return strings.NewReplacer(
		"{sheet_id}", url.PathEscape(l.sheetID),
		"{sheet}", url.QueryEscape(user),
	).Replace(l.urlTemplate)
}

func (l *Loader) LoadDataset(ctx context.Context, user string) (domain.Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL(user), nil)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("%w: build request: %w", domain.ErrDataSourceUnavailable, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("%w: fetch sheet %q: %w", domain.ErrDataSourceUnavailable, user, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return domain.Dataset{}, fmt.Errorf("%w: fetch sheet %q: status %d", domain.ErrDataSourceUnavailable, user, resp.StatusCode)
	}

	ds, err := dataset.Parse(user, resp.Body)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("%w: parse sheet %q: %w", domain.ErrDataSourceUnavailable, user, err)
	}
	return ds, nil
}
