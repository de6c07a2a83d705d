package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"vocab-quiz-service/internal/domain"

	"github.com/google/uuid"
)

// SessionRepository abstracts where learner sessions live (in-memory, Redis-marked, etc).
// Implementations evict sessions that stay idle longer than their TTL.
type SessionRepository interface {
	// GetOrCreate returns the stored session or stores the one built by create.
	GetOrCreate(sessionID string, create func() *Session) *Session
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// DatasetRepository returns a user's vocabulary list (from cache or its source).
type DatasetRepository interface {
	GetDataset(ctx context.Context, user string) (domain.Dataset, error)
}

// QuizService exposes the learner commands: select a user, answer, continue after review.
type QuizService struct {
	sessions SessionRepository
	datasets DatasetRepository
	users    []string
	logger   *slog.Logger
}

// NewQuizService wires the service. An empty users roster accepts any non-empty name.
func NewQuizService(store SessionRepository, datasets DatasetRepository, users []string, logger *slog.Logger) *QuizService {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuizService{sessions: store, datasets: datasets, users: users, logger: logger}
}

// Users returns the configured roster.
func (s *QuizService) Users() []string {
	out := make([]string, len(s.users))
	copy(out, s.users)
	return out
}

// Open returns the view of an existing session, creating it when needed.
// An empty sessionID allocates a new one.
func (s *QuizService) Open(_ context.Context, sessionID string) domain.View {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return s.sessions.GetOrCreate(sessionID, func() *Session {
		return NewSession(sessionID, s.logger)
	}).view()
}

// SelectUser loads the user's dataset and restarts the session on it. When the
// dataset cannot be loaded the session keeps its previous state.
func (s *QuizService) SelectUser(ctx context.Context, sessionID, user string) (domain.View, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.View{}, domain.ErrSessionNotFound
	}
	if !s.knownUser(user) {
		return session.view(), fmt.Errorf("%w: %q", domain.ErrUnknownUser, user)
	}

	dataset, err := s.datasets.GetDataset(ctx, user)
	if err != nil {
		if !errors.Is(err, domain.ErrDataSourceUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrDataSourceUnavailable, err)
		}
		s.logger.Error("load dataset failed", "session", sessionID, "user", user, "error", err)
		return session.view(), err
	}

	view := session.start(user, dataset)
	s.logger.Info("user selected", "session", sessionID, "user", user, "entries", dataset.Len())
	return view, nil
}

// SubmitAnswer scores option against the current question and advances the session.
func (s *QuizService) SubmitAnswer(_ context.Context, sessionID, option string) (domain.AnswerOutcome, domain.View, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.AnswerOutcome{}, domain.View{}, domain.ErrSessionNotFound
	}
	outcome, view, err := session.submitAnswer(option)
	if err != nil {
		return outcome, view, err
	}
	if outcome.ReviewStarted {
		s.logger.Info("block finished", "session", sessionID, "user", view.User, "missed", len(view.Review))
	}
	return outcome, view, nil
}

// ContinueAfterReview leaves the review screen and starts the next block.
func (s *QuizService) ContinueAfterReview(_ context.Context, sessionID string) (domain.View, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.View{}, domain.ErrSessionNotFound
	}
	return session.continueAfterReview()
}

// View returns the current read-only view of a session.
func (s *QuizService) View(_ context.Context, sessionID string) (domain.View, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.View{}, domain.ErrSessionNotFound
	}
	return session.view(), nil
}

// Subscribe returns a channel that receives the session's view after every change.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan domain.View, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Close drops a session.
func (s *QuizService) Close(_ context.Context, sessionID string) {
	s.sessions.Delete(sessionID)
}

func (s *QuizService) knownUser(user string) bool {
	if user == "" {
		return false
	}
	if len(s.users) == 0 {
		return true
	}
	for _, u := range s.users {
		if u == user {
			return true
		}
	}
	return false
}
