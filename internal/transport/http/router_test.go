package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vocab-quiz-service/internal/app"
	"vocab-quiz-service/internal/domain"
	"vocab-quiz-service/internal/infra/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIQuizFlow(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(), discardLogger(), []string{"*"}))
	defer server.Close()

	var users map[string][]string
	status := doJSON(t, http.MethodGet, server.URL+"/api/users", nil, &users)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"Alex", "Eveline", "Broken"}, users["users"])

	var created sessionResponse
	status = doJSON(t, http.MethodPost, server.URL+"/api/sessions", nil, &created)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, created.SessionID)
	assert.Equal(t, domain.ModeSelectUser, created.View.Mode)

	base := server.URL + "/api/sessions/" + created.SessionID

	status = doJSON(t, http.MethodPost, base+"/answers", answerRequest{Option: "狗"}, nil)
	assert.Equal(t, http.StatusConflict, status, "answer before selecting a user")

	status = doJSON(t, http.MethodPost, base+"/user", selectUserRequest{User: "Nobody"}, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status = doJSON(t, http.MethodPost, base+"/user", selectUserRequest{User: "Broken"}, nil)
	assert.Equal(t, http.StatusBadGateway, status)

	var view domain.View
	status = doJSON(t, http.MethodPost, base+"/user", selectUserRequest{User: "Alex"}, &view)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, domain.ModeQuestion, view.Mode)
	require.NotNil(t, view.Question)
	assert.Len(t, view.Question.Options, 4)

	score := 0
	for i := 0; i < 4; i++ {
		require.Equal(t, domain.ModeQuestion, view.Mode)
		var resp answerResponse
		status = doJSON(t, http.MethodPost, base+"/answers", answerRequest{Option: view.Question.Options[0]}, &resp)
		require.Equal(t, http.StatusOK, status)
		if resp.Outcome.Correct {
			score++
		}
		view = resp.View
	}
	assert.Equal(t, domain.ModeExhausted, view.Mode)
	assert.Equal(t, 4, view.TotalAnswered)
	assert.Equal(t, score, view.Score)

	status = doJSON(t, http.MethodPost, base+"/continue", nil, nil)
	assert.Equal(t, http.StatusConflict, status)

	status = doJSON(t, http.MethodDelete, base, nil, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status = doJSON(t, http.MethodGet, base, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPIRejectsMalformedBody(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(), discardLogger(), nil))
	defer server.Close()

	var created sessionResponse
	require.Equal(t, http.StatusCreated, doJSON(t, http.MethodPost, server.URL+"/api/sessions", nil, &created))

	resp, err := http.Post(server.URL+"/api/sessions/"+created.SessionID+"/user", "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(), discardLogger(), nil))
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func doJSON(t *testing.T, method, url string, body, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func newTestService() *app.QuizService {
	datasets := memory.NewDatasetRepository(memory.NewStaticDatasetLoader(map[string]domain.Dataset{
		"Alex": sampleDataset(),
	}), time.Minute)
	return app.NewQuizService(memory.NewSessionStore(time.Hour), datasets, []string{"Alex", "Eveline", "Broken"}, discardLogger())
}

func sampleDataset() domain.Dataset {
	return domain.Dataset{
		User: "Alex",
		Entries: []domain.VocabularyEntry{
			{Term: "dog", Translation: "狗"},
			{Term: "cat", Translation: "貓"},
			{Term: "sun", Translation: "太陽"},
			{Term: "moon", Translation: "月亮"},
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
