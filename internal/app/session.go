package app

import (
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"vocab-quiz-service/internal/domain"
)

// Session is the quiz state of one learner: the selected user's dataset, the
// asked entries, the running score and the current block.
type Session struct {
	id     string
	gen    *Generator
	logger *slog.Logger

	mu            sync.Mutex
	user          string
	dataset       domain.Dataset
	used          map[int]struct{}
	score         int
	totalAnswered int
	blockAnswered int
	wrongList     []domain.ReviewItem
	inReview      bool
	current       *domain.Question
	subscribers   map[chan domain.View]struct{}
}

// NewSession returns an empty session in select_user mode. A nil logger falls
// back to slog.Default.
func NewSession(id string, logger *slog.Logger) *Session {
	s := newSessionWithRand(id, rand.New(rand.NewSource(time.Now().UnixNano())))
	if logger != nil {
		s.logger = logger
	}
	return s
}

// newSessionWithRand allows deterministic question order in tests.
func newSessionWithRand(id string, rnd *rand.Rand) *Session {
	return &Session{
		id:          id,
		gen:         NewGenerator(rnd),
		logger:      slog.Default(),
		used:        make(map[int]struct{}),
		subscribers: make(map[chan domain.View]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// start discards any previous state and begins a fresh run over dataset.
func (s *Session) start(user string, dataset domain.Dataset) domain.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = user
	s.dataset = dataset
	s.used = make(map[int]struct{}, dataset.Len())
	s.score = 0
	s.totalAnswered = 0
	s.blockAnswered = 0
	s.wrongList = nil
	s.inReview = false
	s.current = nil

	s.nextQuestionLocked()
	return s.broadcastLocked()
}

func (s *Session) submitAnswer(option string) (domain.AnswerOutcome, domain.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == "" || s.inReview || s.current == nil {
		return domain.AnswerOutcome{}, s.snapshotLocked(), domain.ErrPreconditionViolated
	}

	q := s.current
	outcome := domain.AnswerOutcome{
		Word:          q.Word,
		CorrectAnswer: q.CorrectAnswer,
	}

	s.totalAnswered++
	if option == q.CorrectAnswer {
		s.score++
		outcome.Correct = true
	} else {
		s.wrongList = append(s.wrongList, domain.ReviewItem{Word: q.Word, Example: q.Example})
	}
	s.blockAnswered++

	if s.blockAnswered >= domain.BlockSize {
		// current stays as-is; views hide it while in review
		s.inReview = true
		outcome.ReviewStarted = true
	} else {
		s.nextQuestionLocked()
	}
	return outcome, s.broadcastLocked(), nil
}

func (s *Session) continueAfterReview() (domain.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inReview {
		return s.snapshotLocked(), domain.ErrPreconditionViolated
	}

	s.blockAnswered = 0
	s.wrongList = nil
	s.inReview = false
	s.nextQuestionLocked()
	return s.broadcastLocked(), nil
}

func (s *Session) view() domain.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) nextQuestionLocked() {
	q, err := s.gen.Generate(s.dataset, s.used)
	if errors.Is(err, domain.ErrExhausted) {
		s.current = nil
		s.logger.Info("question set exhausted", "session", s.id, "user", s.user, "asked", len(s.used))
		return
	}
	if q.Padded {
		s.logger.Warn("insufficient distractors, repeating correct answer",
			"session", s.id, "user", s.user, "word", q.Word)
	}
	s.current = &q
}

func (s *Session) subscribe() (<-chan domain.View, func()) {
	ch := make(chan domain.View, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() domain.View {
	v := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- v:
		default:
			// slow subscriber: drop its oldest view so the latest one always fits
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
	return v
}

func (s *Session) snapshotLocked() domain.View {
	v := domain.View{
		SessionID:     s.id,
		User:          s.user,
		Score:         s.score,
		TotalAnswered: s.totalAnswered,
		BlockAnswered: s.blockAnswered,
		BlockSize:     domain.BlockSize,
		Asked:         len(s.used),
		DatasetSize:   s.dataset.Len(),
	}

	switch {
	case s.user == "":
		v.Mode = domain.ModeSelectUser
	case s.inReview:
		v.Mode = domain.ModeReview
		v.Review = make([]domain.ReviewItem, len(s.wrongList))
		copy(v.Review, s.wrongList)
	case s.current == nil:
		v.Mode = domain.ModeExhausted
	default:
		v.Mode = domain.ModeQuestion
		options := make([]string, len(s.current.Options))
		copy(options, s.current.Options)
		v.Question = &domain.QuestionView{
			Word:     s.current.Word,
			Phonetic: s.current.Phonetic,
			Example:  s.current.Example,
			Options:  options,
		}
	}
	return v
}
