package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"trainvoc-room-service/internal/domain"
)

// QuestionGenerator builds multiple-choice questions from a word bank. Each
// question uses one word as the prompt and other words' meanings as distractors;
// the correct option lands at a random position.
type QuestionGenerator struct {
	rng         *rand.Rand
	words       []domain.Word
	order       []int
	meanings    []string
	optionCount int
}

func NewQuestionGenerator(words []domain.Word, optionCount int, rng *rand.Rand) (*QuestionGenerator, error) {
	seen := make(map[string]struct{}, len(words))
	meanings := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w.Meaning]; ok {
			continue
		}
		seen[w.Meaning] = struct{}{}
		meanings = append(meanings, w.Meaning)
	}
	if len(words) == 0 || len(meanings) < optionCount {
		return nil, domain.ErrNotEnoughWords
	}
	return &QuestionGenerator{
		rng:         rng,
		words:       words,
		order:       rng.Perm(len(words)),
		meanings:    meanings,
		optionCount: optionCount,
	}, nil
}

// Question returns the question for index. Words are walked in a shuffled order
// and reused only when the quiz is longer than the bank.
func (g *QuestionGenerator) Question(index int, startedAt time.Time) domain.Question {
	word := g.words[g.order[index%len(g.order)]]

	distractors := make([]string, 0, g.optionCount-1)
	for _, i := range g.rng.Perm(len(g.meanings)) {
		if len(distractors) == g.optionCount-1 {
			break
		}
		if g.meanings[i] == word.Meaning {
			continue
		}
		distractors = append(distractors, g.meanings[i])
	}

	correct := g.rng.Intn(g.optionCount)
	options := make([]string, 0, g.optionCount)
	options = append(options, distractors[:correct]...)
	options = append(options, word.Meaning)
	options = append(options, distractors[correct:]...)

	return domain.Question{
		ID:           g.questionID(),
		Index:        index,
		Prompt:       word.Term,
		Meaning:      word.Meaning,
		Options:      options,
		CorrectIndex: correct,
		StartedAt:    startedAt,
	}
}

func (g *QuestionGenerator) questionID() string {
	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
