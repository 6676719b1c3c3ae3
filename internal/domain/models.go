package domain

import (
	"strings"
	"time"
)

// RoomStatus is the coarse lifecycle label shown in room listings.
type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusStarted  RoomStatus = "started"
	StatusFinished RoomStatus = "finished"
)

// QuizConfig is fixed by the host before the game leaves the lobby.
type QuizConfig struct {
	QuestionDuration   int    `json:"questionDuration"` // seconds
	OptionCount        int    `json:"optionCount"`
	Level              string `json:"level"`
	TotalQuestionCount int    `json:"totalQuestionCount"`
}

const (
	DefaultQuestionDuration   = 60
	DefaultOptionCount        = 4
	DefaultLevel              = "all"
	DefaultTotalQuestionCount = 10

	MinOptionCount = 2
	MaxOptionCount = 8
)

func DefaultQuizConfig() QuizConfig {
	return QuizConfig{
		QuestionDuration:   DefaultQuestionDuration,
		OptionCount:        DefaultOptionCount,
		Level:              DefaultLevel,
		TotalQuestionCount: DefaultTotalQuestionCount,
	}
}

// WithDefaults fills zero fields from DefaultQuizConfig.
func (c QuizConfig) WithDefaults() QuizConfig {
	d := DefaultQuizConfig()
	if c.QuestionDuration == 0 {
		c.QuestionDuration = d.QuestionDuration
	}
	if c.OptionCount == 0 {
		c.OptionCount = d.OptionCount
	}
	if strings.TrimSpace(c.Level) == "" {
		c.Level = d.Level
	}
	if c.TotalQuestionCount == 0 {
		c.TotalQuestionCount = d.TotalQuestionCount
	}
	return c
}

func (c QuizConfig) Validate() error {
	switch {
	case c.QuestionDuration < 1:
		return ErrInvalidConfig
	case c.OptionCount < MinOptionCount || c.OptionCount > MaxOptionCount:
		return ErrInvalidConfig
	case c.TotalQuestionCount < 1:
		return ErrInvalidConfig
	case strings.TrimSpace(c.Level) == "":
		return ErrInvalidConfig
	}
	return nil
}

func (c QuizConfig) QuestionTimeout() time.Duration {
	return time.Duration(c.QuestionDuration) * time.Second
}

// PlayerInput identifies a player joining or creating a room.
type PlayerInput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Player is a roster entry and its accumulated stats.
type Player struct {
	ID              string
	Name            string
	Score           int
	CorrectCount    int
	WrongCount      int
	SkippedCount    int
	TotalAnswerTime time.Duration
	JoinSeq         int
	JoinedAt        time.Time
}

// PlayerView is the per-snapshot projection of a Player.
type PlayerView struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Score             int    `json:"score"`
	CorrectCount      int    `json:"correctCount"`
	WrongCount        int    `json:"wrongCount"`
	SkippedCount      int    `json:"skippedCount"`
	TotalAnswerTimeMs int64  `json:"totalAnswerTime"`
	IsHost            bool   `json:"isHost"`
	IsTop3            bool   `json:"isTop3"`
	IsYou             bool   `json:"isYou"`
}

// Word is one vocabulary entry from the word bank.
type Word struct {
	ID      string `json:"id"`
	Term    string `json:"term"`
	Meaning string `json:"meaning"`
	Level   string `json:"level"`
}

// Question is generated per room and index; CorrectIndex never leaves the server before reveal.
type Question struct {
	ID           string
	Index        int
	Prompt       string
	Meaning      string
	Options      []string
	CorrectIndex int
	StartedAt    time.Time
}

// QuestionView is the wire form of a Question.
type QuestionView struct {
	ID           string   `json:"id"`
	Index        int      `json:"index"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex *int     `json:"correctIndex,omitempty"`
	Meaning      string   `json:"meaning,omitempty"`
}

// AnswerSubmission is what a client sends for the current question.
type AnswerSubmission struct {
	PlayerID            string `json:"playerId"`
	RoomCode            string `json:"roomCode"`
	QuestionID          string `json:"questionId"`
	SelectedOptionIndex int    `json:"selectedOptionIndex"`
}

// Answer is a submission stamped with the server receipt time.
type Answer struct {
	PlayerID            string
	RoomCode            string
	QuestionID          string
	SelectedOptionIndex int
	Timestamp           time.Time
}

// AnswerAck confirms that a submission was recorded.
type AnswerAck struct {
	QuestionID          string    `json:"questionId"`
	SelectedOptionIndex int       `json:"selectedOptionIndex"`
	Answered            bool      `json:"answered"`
	ReceivedAt          time.Time `json:"receivedAt"`
}

// AnswerResult is one player's outcome for a frozen question.
type AnswerResult struct {
	PlayerID            string `json:"playerId"`
	SelectedOptionIndex int    `json:"selectedOptionIndex"`
	Correct             bool   `json:"correct"`
	Skipped             bool   `json:"skipped"`
	Awarded             int    `json:"awarded"`
	ElapsedMs           int64  `json:"elapsedMs"`
}

// RankingEntry is one row of the scoreboard.
type RankingEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
	IsTop3   bool   `json:"isTop3"`
}

// LobbyData is the pre-start projection of a room.
type LobbyData struct {
	RoomCode   string       `json:"roomCode"`
	HostID     string       `json:"hostId"`
	Players    []PlayerView `json:"players"`
	Config     QuizConfig   `json:"config"`
	Status     RoomStatus   `json:"status"`
	MaxPlayers int          `json:"maxPlayers"`
}

// GameState is the snapshot served to polling clients.
type GameState struct {
	State                Phase          `json:"state"`
	CurrentQuestionIndex int            `json:"currentQuestionIndex"`
	RemainingTime        *int           `json:"remainingTime"`
	Questions            []QuestionView `json:"questions,omitempty"`
	Players              []PlayerView   `json:"players,omitempty"`
	Answered             []string       `json:"answered,omitempty"`
	Results              []AnswerResult `json:"results,omitempty"`
	Scores               []RankingEntry `json:"scores,omitempty"`
	Lobby                *LobbyData     `json:"lobby,omitempty"`
}

// RoomSummary is a directory listing row.
type RoomSummary struct {
	RoomCode    string     `json:"roomCode"`
	HostID      string     `json:"hostId"`
	HostName    string     `json:"hostName"`
	PlayerCount int        `json:"playerCount"`
	MaxPlayers  int        `json:"maxPlayers"`
	Status      RoomStatus `json:"status"`
	Started     bool       `json:"started"`
	Config      QuizConfig `json:"config"`
}

// FilterByStatus returns the summaries whose started flag matches; finished rooms count as started.
func FilterByStatus(rooms []RoomSummary, started bool) []RoomSummary {
	out := make([]RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		if r.Started == started {
			out = append(out, r)
		}
	}
	return out
}

// FilterAvailable is FilterByStatus(rooms, false).
func FilterAvailable(rooms []RoomSummary) []RoomSummary {
	return FilterByStatus(rooms, false)
}

// PhaseEvent is emitted on every phase transition of a room.
type PhaseEvent struct {
	RoomCode      string    `json:"roomCode"`
	Phase         Phase     `json:"phase"`
	QuestionIndex int       `json:"questionIndex"`
	At            time.Time `json:"at"`
}
