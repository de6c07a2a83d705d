package app

import (
	"math/rand"

	"vocab-quiz-service/internal/domain"
)

// distractorCount is the number of wrong options shown next to the correct one.
const distractorCount = 3

// Generator draws questions from a dataset without repetition.
// It is not safe for concurrent use; each session owns one.
type Generator struct {
	rnd *rand.Rand
}

func NewGenerator(rnd *rand.Rand) *Generator {
	return &Generator{rnd: rnd}
}

// Generate picks an entry that is not in used, marks it as used and builds the
// option list for it. It returns domain.ErrExhausted, leaving used untouched,
// when every entry has already been asked.
func (g *Generator) Generate(dataset domain.Dataset, used map[int]struct{}) (domain.Question, error) {
	available := make([]int, 0, dataset.Len())
	for i := range dataset.Entries {
		if _, ok := used[i]; !ok {
			available = append(available, i)
		}
	}
	if len(available) == 0 {
		return domain.Question{}, domain.ErrExhausted
	}

	idx := available[g.rnd.Intn(len(available))]
	used[idx] = struct{}{}
	entry := dataset.Entries[idx]

	wrong, padded := g.distractors(dataset, entry.Translation)
	options := make([]string, 0, distractorCount+1)
	options = append(options, wrong...)
	options = append(options, entry.Translation)
	g.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return domain.Question{
		EntryIndex:    idx,
		Word:          entry.Term,
		Phonetic:      entry.Phonetic,
		Example:       entry.Example,
		CorrectAnswer: entry.Translation,
		Options:       options,
		Padded:        padded,
	}, nil
}

// distractors samples distinct translations different from correct. When the
// dataset cannot supply enough of them the correct answer fills the remaining
// slots and padded is true.
func (g *Generator) distractors(dataset domain.Dataset, correct string) ([]string, bool) {
	seen := make(map[string]struct{}, dataset.Len())
	pool := make([]string, 0, dataset.Len())
	for _, e := range dataset.Entries {
		if e.Translation == correct {
			continue
		}
		if _, dup := seen[e.Translation]; dup {
			continue
		}
		seen[e.Translation] = struct{}{}
		pool = append(pool, e.Translation)
	}

	if len(pool) >= distractorCount {
		// partial Fisher-Yates: the first distractorCount slots end up a uniform sample
		for i := 0; i < distractorCount; i++ {
			j := i + g.rnd.Intn(len(pool)-i)
			pool[i], pool[j] = pool[j], pool[i]
		}
		return pool[:distractorCount], false
	}

	wrong := pool
	for len(wrong) < distractorCount {
		wrong = append(wrong, correct)
	}
	return wrong, true
}
