package domain

// Phase is a stage of a room's game. The ordinals are part of the wire contract.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseCountdown
	PhaseQuestion
	PhaseAnswerReveal
	PhaseRanking
	PhaseFinal
)

var phaseNames = [...]string{
	PhaseLobby:        "LOBBY",
	PhaseCountdown:    "COUNTDOWN",
	PhaseQuestion:     "QUESTION",
	PhaseAnswerReveal: "ANSWER_REVEAL",
	PhaseRanking:      "RANKING",
	PhaseFinal:        "FINAL",
}

func (p Phase) String() string {
	if p < PhaseLobby || p > PhaseFinal {
		return "UNKNOWN"
	}
	return phaseNames[p]
}

func (p Phase) Valid() bool {
	return p >= PhaseLobby && p <= PhaseFinal
}

// Status maps a phase to the directory status vocabulary.
func (p Phase) Status() RoomStatus {
	switch p {
	case PhaseLobby:
		return StatusWaiting
	case PhaseFinal:
		return StatusFinished
	default:
		return StatusStarted
	}
}
