package domain

import "errors"

var (
	// ErrRoomNotFound is returned when no active room has the requested code.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomAlreadyStarted is returned when joining or starting a room that left the lobby.
	ErrRoomAlreadyStarted = errors.New("room already started")
	// ErrRoomFull is returned when the roster is at capacity.
	ErrRoomFull = errors.New("room full")
	// ErrCodeExhaustion indicates no free room code could be found.
	ErrCodeExhaustion = errors.New("room code space exhausted")
	// ErrPhaseMismatch is returned when an answer arrives outside the question phase.
	ErrPhaseMismatch = errors.New("phase does not accept answers")
	// ErrStaleQuestion is returned when an answer names a question that is not current.
	ErrStaleQuestion = errors.New("stale question")
	// ErrAnswerWindowClosed is returned for answers that arrive after the question froze.
	ErrAnswerWindowClosed = errors.New("answer window closed")
	// ErrNetworkFailure wraps client-side fetch and submit failures.
	ErrNetworkFailure = errors.New("network failure")

	ErrPlayerNotFound    = errors.New("player not found in room")
	ErrNotHost           = errors.New("only the host can do that")
	ErrNotEnoughPlayers  = errors.New("not enough players to start")
	ErrConfigLocked      = errors.New("config is locked once the game started")
	ErrInvalidConfig     = errors.New("invalid quiz config")
	ErrInvalidOption     = errors.New("selected option out of range")
	ErrNotEnoughWords    = errors.New("not enough words to build questions")
	ErrWordsNotFound     = errors.New("no words for level")
	ErrInvalidTransition = errors.New("invalid phase transition")
	ErrRateLimited       = errors.New("too many requests")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrRoomNotFound, "room_not_found"},
	{ErrRoomAlreadyStarted, "room_already_started"},
	{ErrRoomFull, "room_full"},
	{ErrCodeExhaustion, "code_exhaustion"},
	{ErrPhaseMismatch, "phase_mismatch"},
	{ErrStaleQuestion, "stale_question"},
	{ErrAnswerWindowClosed, "answer_window_closed"},
	{ErrNetworkFailure, "network_failure"},
	{ErrPlayerNotFound, "player_not_found"},
	{ErrNotHost, "not_host"},
	{ErrNotEnoughPlayers, "not_enough_players"},
	{ErrConfigLocked, "config_locked"},
	{ErrInvalidConfig, "invalid_config"},
	{ErrInvalidOption, "invalid_option"},
	{ErrNotEnoughWords, "not_enough_words"},
	{ErrWordsNotFound, "words_not_found"},
	{ErrInvalidTransition, "invalid_transition"},
	{ErrRateLimited, "rate_limited"},
}

// ErrorCode returns the wire code for err, or "" when err is not part of the taxonomy.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return ""
}

// ErrorFromCode is the inverse of ErrorCode.
func ErrorFromCode(code string) (error, bool) {
	for _, ec := range errorCodes {
		if ec.code == code {
			return ec.err, true
		}
	}
	return nil, false
}
