package game

import (
	"time"

	"trainvoc-room-service/internal/domain"
)

const (
	DefaultBasePoints    = 100
	DefaultMaxSpeedBonus = 50
)

// ScoringRule awards BasePoints for a correct answer plus a speed bonus that
// falls linearly from MaxSpeedBonus at question start to 0 at the time limit.
type ScoringRule struct {
	BasePoints    int
	MaxSpeedBonus int
}

func DefaultScoringRule() ScoringRule {
	return ScoringRule{BasePoints: DefaultBasePoints, MaxSpeedBonus: DefaultMaxSpeedBonus}
}

// SpeedBonus works in whole milliseconds and rounds down.
func (r ScoringRule) SpeedBonus(elapsed, limit time.Duration) int {
	limitMs := limit.Milliseconds()
	if limitMs <= 0 || r.MaxSpeedBonus <= 0 {
		return 0
	}
	elapsedMs := elapsed.Milliseconds()
	if elapsedMs < 0 {
		elapsedMs = 0
	}
	if elapsedMs >= limitMs {
		return 0
	}
	return int(int64(r.MaxSpeedBonus) * (limitMs - elapsedMs) / limitMs)
}

// Evaluate scores every roster player against the frozen state. Players with no
// answer are recorded as skipped. Results follow roster order.
func (r ScoringRule) Evaluate(q domain.Question, state *AnswerState, roster []string, limit time.Duration) []domain.AnswerResult {
	results := make([]domain.AnswerResult, 0, len(roster))
	for _, id := range roster {
		a, ok := state.Latest(id)
		if !ok {
			results = append(results, domain.AnswerResult{
				PlayerID:            id,
				SelectedOptionIndex: -1,
				Skipped:             true,
			})
			continue
		}
		elapsed := a.Timestamp.Sub(q.StartedAt)
		if elapsed < 0 {
			elapsed = 0
		}
		res := domain.AnswerResult{
			PlayerID:            id,
			SelectedOptionIndex: a.SelectedOptionIndex,
			ElapsedMs:           elapsed.Milliseconds(),
		}
		if a.SelectedOptionIndex == q.CorrectIndex {
			res.Correct = true
			res.Awarded = r.BasePoints + r.SpeedBonus(elapsed, limit)
		}
		results = append(results, res)
	}
	return results
}
