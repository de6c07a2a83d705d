package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"vocab-quiz-service/internal/dataset"
	"vocab-quiz-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderFetchesSheet(t *testing.T) {
	var gotSheet string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSheet = r.URL.Query().Get("sheet")
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		_, _ = w.Write([]byte("\ufeffenglish,chinese,phonetic,example\ndog,狗,/dɒɡ/,The dog barks.\ncat,貓,,\n"))
	}))
	defer server.Close()

	loader := NewLoader(server.Client(), "sheet-1", server.URL+"/{sheet_id}/export?sheet={sheet}")
	ds, err := loader.LoadDataset(context.Background(), "Eveline Chen")
	require.NoError(t, err)

	assert.Equal(t, "Eveline Chen", gotSheet)
	assert.Equal(t, "Eveline Chen", ds.User)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, domain.VocabularyEntry{Term: "dog", Translation: "狗", Phonetic: "/dɒɡ/", Example: "The dog barks."}, ds.Entries[0])
	assert.Equal(t, domain.VocabularyEntry{Term: "cat", Translation: "貓"}, ds.Entries[1])
}

func TestLoaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom"},
		{name: "missing column", status: http.StatusOK, body: "english,phonetic\ndog,/dɒɡ/\n", wantErr: dataset.ErrMissingColumn},
		{name: "empty body", status: http.StatusOK, body: "", wantErr: dataset.ErrEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			loader := NewLoader(server.Client(), "sheet-1", server.URL+"/?sheet={sheet}")
			_, err := loader.LoadDataset(context.Background(), "Alex")
			require.ErrorIs(t, err, domain.ErrDataSourceUnavailable)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoaderUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	loader := NewLoader(nil, "sheet-1", addr+"/?sheet={sheet}")
	_, err := loader.LoadDataset(context.Background(), "Alex")
	require.ErrorIs(t, err, domain.ErrDataSourceUnavailable)
}

func TestDefaultURL(t *testing.T) {
	loader := NewLoader(nil, "abc123", "")
	assert.Equal(t,
		"https://docs.google.com/spreadsheets/d/abc123/gviz/tq?tqx=out:csv&sheet=Alex",
		loader.URL("Alex"))
}
