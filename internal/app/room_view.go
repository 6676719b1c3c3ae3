package app

import (
	"time"

	"trainvoc-room-service/internal/domain"
)

func (r *Room) lobbyLocked(viewerID string) domain.LobbyData {
	return domain.LobbyData{
		RoomCode:   r.code,
		HostID:     r.hostID,
		Players:    r.playerViewsLocked(viewerID),
		Config:     r.config,
		Status:     r.phase.Status(),
		MaxPlayers: r.deps.policy.MaxPlayers,
	}
}

func (r *Room) gameStateLocked(viewerID string, now time.Time) domain.GameState {
	gs := domain.GameState{
		State:                r.phase,
		CurrentQuestionIndex: r.questionIndex,
		RemainingTime:        r.remainingLocked(now),
		Players:              r.playerViewsLocked(viewerID),
	}

	switch r.phase {
	case domain.PhaseLobby:
		lobby := r.lobbyLocked(viewerID)
		gs.Lobby = &lobby
	case domain.PhaseQuestion:
		gs.Questions = []domain.QuestionView{questionView(*r.question, false)}
		gs.Answered = r.answers.Answered()
	case domain.PhaseAnswerReveal:
		gs.Questions = []domain.QuestionView{questionView(*r.question, true)}
		gs.Results = r.results
	case domain.PhaseRanking, domain.PhaseFinal:
		gs.Results = r.results
		gs.Scores = r.ranking
	}
	return gs
}

// remainingLocked returns whole seconds left, rounded up, for phases with a
// visible countdown. RANKING is display-only and reports null like LOBBY and FINAL.
func (r *Room) remainingLocked(now time.Time) *int {
	switch r.phase {
	case domain.PhaseCountdown, domain.PhaseQuestion, domain.PhaseAnswerReveal:
	default:
		return nil
	}
	if r.timer == nil {
		return nil
	}
	left := r.timer.at.Sub(now)
	secs := 0
	if left > 0 {
		secs = int((left + time.Second - 1) / time.Second)
	}
	return &secs
}

func (r *Room) playerViewsLocked(viewerID string) []domain.PlayerView {
	top := make(map[string]bool, 3)
	for _, e := range r.ranking {
		if e.IsTop3 {
			top[e.PlayerID] = true
		}
	}
	views := make([]domain.PlayerView, len(r.roster))
	for i, p := range r.roster {
		views[i] = domain.PlayerView{
			ID:                p.ID,
			Name:              p.Name,
			Score:             p.Score,
			CorrectCount:      p.CorrectCount,
			WrongCount:        p.WrongCount,
			SkippedCount:      p.SkippedCount,
			TotalAnswerTimeMs: p.TotalAnswerTime.Milliseconds(),
			IsHost:            p.ID == r.hostID,
			IsTop3:            top[p.ID],
			IsYou:             viewerID != "" && p.ID == viewerID,
		}
	}
	return views
}

func questionView(q domain.Question, reveal bool) domain.QuestionView {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	v := domain.QuestionView{
		ID:      q.ID,
		Index:   q.Index,
		Prompt:  q.Prompt,
		Options: options,
	}
	if reveal {
		correct := q.CorrectIndex
		v.CorrectIndex = &correct
		v.Meaning = q.Meaning
	}
	return v
}
