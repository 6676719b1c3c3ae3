package game

import "trainvoc-room-service/internal/domain"

// AnswerState holds the latest answer per player for one question.
// Keys keep first-submission order; values are last-write-wins.
type AnswerState struct {
	questionID string
	order      []string
	latest     map[string]domain.Answer
	frozen     bool
}

func NewAnswerState(questionID string) *AnswerState {
	return &AnswerState{
		questionID: questionID,
		latest:     make(map[string]domain.Answer),
	}
}

func (s *AnswerState) QuestionID() string {
	return s.questionID
}

// Record stores a as the player's latest answer.
func (s *AnswerState) Record(a domain.Answer) error {
	if s.frozen {
		return domain.ErrAnswerWindowClosed
	}
	if a.QuestionID != s.questionID {
		return domain.ErrStaleQuestion
	}
	if _, ok := s.latest[a.PlayerID]; !ok {
		s.order = append(s.order, a.PlayerID)
	}
	s.latest[a.PlayerID] = a
	return nil
}

func (s *AnswerState) HasAnswered(playerID string) bool {
	_, ok := s.latest[playerID]
	return ok
}

func (s *AnswerState) Latest(playerID string) (domain.Answer, bool) {
	a, ok := s.latest[playerID]
	return a, ok
}

func (s *AnswerState) Len() int {
	return len(s.order)
}

// Answered returns player ids in first-submission order.
func (s *AnswerState) Answered() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// AllAnswered reports whether every id in roster has answered. An empty roster never counts.
func (s *AnswerState) AllAnswered(roster []string) bool {
	if len(roster) == 0 {
		return false
	}
	for _, id := range roster {
		if !s.HasAnswered(id) {
			return false
		}
	}
	return true
}

func (s *AnswerState) Freeze() {
	s.frozen = true
}

func (s *AnswerState) Frozen() bool {
	return s.frozen
}
