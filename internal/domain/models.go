package domain

// BlockSize is the number of answered questions after which a review is shown.
const BlockSize = 30

// VocabularyEntry is one row of a user's word list.
type VocabularyEntry struct {
	Term        string `json:"term" validate:"required"`
	Translation string `json:"translation" validate:"required"`
	Phonetic    string `json:"phonetic,omitempty"`
	Example     string `json:"example,omitempty"`
}

// Dataset is the ordered word list of a user. Entries are addressed by position
// and are never mutated once loaded.
type Dataset struct {
	User    string            `json:"user"`
	Entries []VocabularyEntry `json:"entries"`
}

// Len returns the number of entries.
func (d Dataset) Len() int {
	return len(d.Entries)
}

// Question is the state of the question currently on screen.
type Question struct {
	EntryIndex    int
	Word          string
	Phonetic      string
	Example       string
	CorrectAnswer string
	Options       []string
	// Padded is set when fewer than three distinct wrong translations existed
	// and the correct answer was repeated to fill the option list.
	Padded bool
}

// ReviewItem is a missed word listed on the review screen.
type ReviewItem struct {
	Word    string `json:"word"`
	Example string `json:"example"`
}

// AnswerOutcome summarizes the result of a single submission.
type AnswerOutcome struct {
	Correct       bool   `json:"correct"`
	Word          string `json:"word"`
	CorrectAnswer string `json:"correctAnswer"`
	ReviewStarted bool   `json:"reviewStarted"`
}

// Mode names the screen a session is currently on.
type Mode string

const (
	ModeSelectUser Mode = "select_user"
	ModeQuestion   Mode = "question"
	ModeReview     Mode = "review"
	ModeExhausted  Mode = "exhausted"
)

// QuestionView is the part of a question that is safe to show to the learner.
type QuestionView struct {
	Word     string   `json:"word"`
	Phonetic string   `json:"phonetic"`
	Example  string   `json:"example"`
	Options  []string `json:"options"`
}

// View is the read-only snapshot the presentation layer renders.
type View struct {
	SessionID     string        `json:"sessionId"`
	User          string        `json:"user,omitempty"`
	Mode          Mode          `json:"mode"`
	Question      *QuestionView `json:"question,omitempty"`
	Review        []ReviewItem  `json:"review"`
	Score         int           `json:"score"`
	TotalAnswered int           `json:"totalAnswered"`
	BlockAnswered int           `json:"blockAnswered"`
	BlockSize     int           `json:"blockSize"`
	Asked         int           `json:"asked"`
	DatasetSize   int           `json:"datasetSize"`
}
