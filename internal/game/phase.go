package game

import (
	"fmt"

	"trainvoc-room-service/internal/domain"
)

// Event is an input to the phase machine.
type Event int

const (
	EventStart Event = iota
	EventCountdownElapsed
	EventQuestionTimeout
	EventAllAnswered
	EventRevealElapsed
	EventRankingElapsed
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventCountdownElapsed:
		return "countdown_elapsed"
	case EventQuestionTimeout:
		return "question_timeout"
	case EventAllAnswered:
		return "all_answered"
	case EventRevealElapsed:
		return "reveal_elapsed"
	case EventRankingElapsed:
		return "ranking_elapsed"
	}
	return "unknown"
}

// Next returns the phase reached from p on ev. hasMore reports whether another
// question follows the current one and only matters when leaving RANKING.
func Next(p domain.Phase, ev Event, hasMore bool) (domain.Phase, error) {
	switch p {
	case domain.PhaseLobby:
		if ev == EventStart {
			return domain.PhaseCountdown, nil
		}
	case domain.PhaseCountdown:
		if ev == EventCountdownElapsed {
			return domain.PhaseQuestion, nil
		}
	case domain.PhaseQuestion:
		if ev == EventQuestionTimeout || ev == EventAllAnswered {
			return domain.PhaseAnswerReveal, nil
		}
	case domain.PhaseAnswerReveal:
		if ev == EventRevealElapsed {
			return domain.PhaseRanking, nil
		}
	case domain.PhaseRanking:
		if ev == EventRankingElapsed {
			if hasMore {
				return domain.PhaseQuestion, nil
			}
			return domain.PhaseFinal, nil
		}
	case domain.PhaseFinal:
	}
	return p, fmt.Errorf("%w: %s on %s", domain.ErrInvalidTransition, p, ev)
}

// TimeoutEvent is the event a phase deadline produces, if the phase has one.
func TimeoutEvent(p domain.Phase) (Event, bool) {
	switch p {
	case domain.PhaseCountdown:
		return EventCountdownElapsed, true
	case domain.PhaseQuestion:
		return EventQuestionTimeout, true
	case domain.PhaseAnswerReveal:
		return EventRevealElapsed, true
	case domain.PhaseRanking:
		return EventRankingElapsed, true
	}
	return 0, false
}

// ValidStep reports whether from -> to is a single legal step of the machine.
func ValidStep(from, to domain.Phase) bool {
	for ev := EventStart; ev <= EventRankingElapsed; ev++ {
		for _, more := range []bool{true, false} {
			if next, err := Next(from, ev, more); err == nil && next == to {
				return true
			}
		}
	}
	return false
}
