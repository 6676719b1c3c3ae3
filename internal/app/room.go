package app

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"trainvoc-room-service/internal/domain"
	"trainvoc-room-service/internal/game"
)

// Timings are the server-owned durations of the timed phases other than QUESTION,
// whose length comes from the room's QuizConfig.
type Timings struct {
	Countdown time.Duration
	Reveal    time.Duration
	Ranking   time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		Countdown: 3 * time.Second,
		Reveal:    5 * time.Second,
		Ranking:   5 * time.Second,
	}
}

// RoomPolicy holds the join and rejoin rules of a room.
type RoomPolicy struct {
	MaxPlayers            int
	MinPlayers            int
	AllowLateJoin         bool
	PreserveScoreOnRejoin bool
}

func DefaultRoomPolicy() RoomPolicy {
	return RoomPolicy{
		MaxPlayers:            8,
		MinPlayers:            1,
		PreserveScoreOnRejoin: true,
	}
}

type roomDeps struct {
	clock   clockwork.Clock
	timings Timings
	policy  RoomPolicy
	scoring game.ScoringRule
	rng     *rand.Rand
	events  chan<- domain.PhaseEvent
}

// phaseTimer is the pending deadline of the phase it was scheduled for.
type phaseTimer struct {
	phase domain.Phase
	at    time.Time
}

// Room is one game session. Every mutation takes mu for writing; snapshot reads
// take it for reading and only upgrade when a phase deadline is due.
type Room struct {
	code      string
	deps      roomDeps
	createdAt time.Time

	mu          sync.RWMutex
	hostID      string
	roster      []*domain.Player
	departed    map[string]*domain.Player
	nextJoinSeq int
	config      domain.QuizConfig

	phase         domain.Phase
	questionIndex int
	timer         *phaseTimer
	generator     *game.QuestionGenerator
	question      *domain.Question
	answers       *game.AnswerState
	results       []domain.AnswerResult
	ranking       []domain.RankingEntry

	emptySince time.Time
	finishedAt time.Time
	// retired is set once the directory has decided to drop the room.
	retired bool
}

func newRoom(code string, host domain.PlayerInput, cfg domain.QuizConfig, deps roomDeps) *Room {
	now := deps.clock.Now()
	r := &Room{
		code:          code,
		deps:          deps,
		createdAt:     now,
		departed:      make(map[string]*domain.Player),
		config:        cfg,
		phase:         domain.PhaseLobby,
		questionIndex: -1,
	}
	r.addLocked(&domain.Player{
		ID:       host.ID,
		Name:     displayName(host.Name),
		JoinSeq:  r.takeJoinSeq(),
		JoinedAt: now,
	})
	return r
}

func (r *Room) Code() string {
	return r.code
}

func (r *Room) Config() domain.QuizConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.config
}

func (r *Room) Phase() domain.Phase {
	var p domain.Phase
	r.read(func(time.Time) { p = r.phase })
	return p
}

// Join adds a player, or re-adds one that is present or recently departed.
func (r *Room) Join(in domain.PlayerInput) (domain.LobbyData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.retired {
		return domain.LobbyData{}, domain.ErrRoomNotFound
	}
	now := r.deps.clock.Now()
	r.advanceLocked(now)

	if i := r.indexLocked(in.ID); i >= 0 {
		if in.Name != "" {
			r.roster[i].Name = in.Name
		}
		return r.lobbyLocked(in.ID), nil
	}

	if prev, ok := r.departed[in.ID]; ok && r.phase != domain.PhaseFinal {
		if len(r.roster) >= r.deps.policy.MaxPlayers {
			return domain.LobbyData{}, domain.ErrRoomFull
		}
		delete(r.departed, in.ID)
		if !r.deps.policy.PreserveScoreOnRejoin {
			*prev = domain.Player{ID: prev.ID, Name: prev.Name, JoinSeq: prev.JoinSeq}
		}
		if in.Name != "" {
			prev.Name = in.Name
		}
		prev.JoinedAt = now
		r.addLocked(prev)
		log.Info().Str("room", r.code).Str("player", in.ID).Msg("player rejoined")
		return r.lobbyLocked(in.ID), nil
	}

	if r.phase == domain.PhaseFinal || (r.phase != domain.PhaseLobby && !r.deps.policy.AllowLateJoin) {
		return domain.LobbyData{}, domain.ErrRoomAlreadyStarted
	}
	if len(r.roster) >= r.deps.policy.MaxPlayers {
		return domain.LobbyData{}, domain.ErrRoomFull
	}
	r.addLocked(&domain.Player{
		ID:       in.ID,
		Name:     displayName(in.Name),
		JoinSeq:  r.takeJoinSeq(),
		JoinedAt: now,
	})
	log.Info().Str("room", r.code).Str("player", in.ID).Int("players", len(r.roster)).Msg("player joined")
	return r.lobbyLocked(in.ID), nil
}

// Leave removes a player. A departing host hands over to the earliest joiner left.
func (r *Room) Leave(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.retired {
		return domain.ErrRoomNotFound
	}
	now := r.deps.clock.Now()
	r.advanceLocked(now)

	i := r.indexLocked(playerID)
	if i < 0 {
		return domain.ErrPlayerNotFound
	}
	p := r.roster[i]
	r.roster = append(r.roster[:i], r.roster[i+1:]...)
	r.departed[playerID] = p

	if len(r.roster) == 0 {
		r.hostID = ""
		r.emptySince = now
		log.Info().Str("room", r.code).Msg("room is empty")
		return nil
	}
	if r.hostID == playerID {
		r.hostID = r.roster[0].ID
		log.Info().Str("room", r.code).Str("host", r.hostID).Msg("host promoted")
	}
	if r.phase == domain.PhaseQuestion && r.answers.AllAnswered(r.rosterIDsLocked()) {
		r.fireLocked(game.EventAllAnswered, now)
	}
	return nil
}

// UpdateConfig replaces the quiz config while the room is still in the lobby.
func (r *Room) UpdateConfig(playerID string, cfg domain.QuizConfig) (domain.LobbyData, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return domain.LobbyData{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.advanceLocked(r.deps.clock.Now())

	if r.retired {
		return domain.LobbyData{}, domain.ErrRoomNotFound
	}
	if r.hostID != playerID {
		return domain.LobbyData{}, domain.ErrNotHost
	}
	if r.phase != domain.PhaseLobby {
		return domain.LobbyData{}, domain.ErrConfigLocked
	}
	r.config = cfg
	return r.lobbyLocked(playerID), nil
}

// CheckStart reports whether playerID could start the game right now.
func (r *Room) CheckStart(playerID string) error {
	var err error
	r.read(func(time.Time) { err = r.checkStartLocked(playerID) })
	return err
}

func (r *Room) checkStartLocked(playerID string) error {
	if r.phase != domain.PhaseLobby {
		return domain.ErrRoomAlreadyStarted
	}
	if r.hostID != playerID {
		return domain.ErrNotHost
	}
	if len(r.roster) < r.deps.policy.MinPlayers {
		return domain.ErrNotEnoughPlayers
	}
	return nil
}

// Start moves the room from LOBBY to COUNTDOWN using words as the question bank.
func (r *Room) Start(playerID string, words []domain.Word) (domain.GameState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.retired {
		return domain.GameState{}, domain.ErrRoomNotFound
	}
	now := r.deps.clock.Now()
	r.advanceLocked(now)

	if err := r.checkStartLocked(playerID); err != nil {
		return domain.GameState{}, err
	}
	gen, err := game.NewQuestionGenerator(words, r.config.OptionCount, r.deps.rng)
	if err != nil {
		return domain.GameState{}, err
	}
	r.generator = gen
	if err := r.fireLocked(game.EventStart, now); err != nil {
		return domain.GameState{}, err
	}
	log.Info().Str("room", r.code).Int("players", len(r.roster)).Int("questions", r.config.TotalQuestionCount).Msg("game started")
	return r.gameStateLocked(playerID, now), nil
}

// Submit records an answer for the current question.
func (r *Room) Submit(sub domain.AnswerSubmission) (domain.AnswerAck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.retired {
		return domain.AnswerAck{}, domain.ErrRoomNotFound
	}
	now := r.deps.clock.Now()
	r.advanceLocked(now)

	if r.indexLocked(sub.PlayerID) < 0 {
		return domain.AnswerAck{}, domain.ErrPlayerNotFound
	}
	if r.phase != domain.PhaseQuestion {
		if r.question != nil && r.question.ID == sub.QuestionID && r.phase > domain.PhaseQuestion {
			return domain.AnswerAck{}, domain.ErrAnswerWindowClosed
		}
		return domain.AnswerAck{}, domain.ErrPhaseMismatch
	}
	if r.question.ID != sub.QuestionID {
		return domain.AnswerAck{}, domain.ErrStaleQuestion
	}
	if sub.SelectedOptionIndex < 0 || sub.SelectedOptionIndex >= len(r.question.Options) {
		return domain.AnswerAck{}, domain.ErrInvalidOption
	}

	err := r.answers.Record(domain.Answer{
		PlayerID:            sub.PlayerID,
		RoomCode:            r.code,
		QuestionID:          sub.QuestionID,
		SelectedOptionIndex: sub.SelectedOptionIndex,
		Timestamp:           now,
	})
	if err != nil {
		return domain.AnswerAck{}, err
	}
	if r.answers.AllAnswered(r.rosterIDsLocked()) {
		r.fireLocked(game.EventAllAnswered, now)
	}
	return domain.AnswerAck{
		QuestionID:          sub.QuestionID,
		SelectedOptionIndex: sub.SelectedOptionIndex,
		Answered:            true,
		ReceivedAt:          now,
	}, nil
}

// Advance applies every phase deadline that is due at now.
func (r *Room) Advance(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advanceLocked(now)
}

func (r *Room) Lobby(viewerID string) domain.LobbyData {
	var out domain.LobbyData
	r.read(func(time.Time) { out = r.lobbyLocked(viewerID) })
	return out
}

func (r *Room) GameState(viewerID string) domain.GameState {
	var out domain.GameState
	r.read(func(now time.Time) { out = r.gameStateLocked(viewerID, now) })
	return out
}

func (r *Room) Summary() domain.RoomSummary {
	var out domain.RoomSummary
	r.read(func(time.Time) {
		out = domain.RoomSummary{
			RoomCode:    r.code,
			HostID:      r.hostID,
			PlayerCount: len(r.roster),
			MaxPlayers:  r.deps.policy.MaxPlayers,
			Status:      r.phase.Status(),
			Started:     r.phase != domain.PhaseLobby,
			Config:      r.config,
		}
		if i := r.indexLocked(r.hostID); i >= 0 {
			out.HostName = r.roster[i].Name
		}
	})
	return out
}

// retire marks the room retired when it has been empty, or finished, for longer
// than its grace. Once retired every mutation fails with ErrRoomNotFound.
func (r *Room) retire(now time.Time, emptyGrace, finishedGrace time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.retired {
		return true
	}
	empty := len(r.roster) == 0 && !r.emptySince.IsZero() && now.Sub(r.emptySince) >= emptyGrace
	finished := r.phase == domain.PhaseFinal && now.Sub(r.finishedAt) >= finishedGrace
	r.retired = empty || finished
	return r.retired
}

func (r *Room) isRetired() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.retired
}

// read runs fn under the read lock, first applying due deadlines under the write lock if needed.
func (r *Room) read(fn func(now time.Time)) {
	now := r.deps.clock.Now()
	r.mu.RLock()
	if !r.dueLocked(now) {
		fn(now)
		r.mu.RUnlock()
		return
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.advanceLocked(now)
	fn(now)
}

func (r *Room) dueLocked(now time.Time) bool {
	return r.timer != nil && !now.Before(r.timer.at)
}

func (r *Room) advanceLocked(now time.Time) {
	for r.dueLocked(now) {
		t := *r.timer
		if t.phase != r.phase {
			r.timer = nil
			return
		}
		ev, ok := game.TimeoutEvent(r.phase)
		if !ok {
			r.timer = nil
			return
		}
		if err := r.fireLocked(ev, t.at); err != nil {
			log.Error().Err(err).Str("room", r.code).Msg("phase deadline rejected")
			r.timer = nil
			return
		}
	}
}

// fireLocked applies ev at instant at. Any pending deadline is dropped and the
// entered phase schedules its own.
func (r *Room) fireLocked(ev game.Event, at time.Time) error {
	hasMore := r.questionIndex+1 < r.config.TotalQuestionCount
	next, err := game.Next(r.phase, ev, hasMore)
	if err != nil {
		return err
	}
	r.phase = next
	r.timer = nil

	switch next {
	case domain.PhaseCountdown:
		r.scheduleLocked(at.Add(r.deps.timings.Countdown))
	case domain.PhaseQuestion:
		r.questionIndex++
		q := r.generator.Question(r.questionIndex, at)
		r.question = &q
		r.answers = game.NewAnswerState(q.ID)
		r.results = nil
		r.scheduleLocked(at.Add(r.config.QuestionTimeout()))
	case domain.PhaseAnswerReveal:
		r.freezeLocked(at)
		r.scheduleLocked(at.Add(r.deps.timings.Reveal))
	case domain.PhaseRanking:
		r.ranking = game.Rank(r.roster)
		r.scheduleLocked(at.Add(r.deps.timings.Ranking))
	case domain.PhaseFinal:
		r.ranking = game.Rank(r.roster)
		r.finishedAt = at
	}

	log.Debug().
		Str("room", r.code).
		Str("event", ev.String()).
		Str("phase", next.String()).
		Int("question", r.questionIndex).
		Msg("phase changed")
	r.emitLocked(at)
	return nil
}

func (r *Room) scheduleLocked(at time.Time) {
	r.timer = &phaseTimer{phase: r.phase, at: at}
}

// freezeLocked closes the answer window and applies the question's scores.
func (r *Room) freezeLocked(at time.Time) {
	r.answers.Freeze()
	r.results = r.deps.scoring.Evaluate(*r.question, r.answers, r.rosterIDsLocked(), r.config.QuestionTimeout())
	for _, res := range r.results {
		i := r.indexLocked(res.PlayerID)
		if i < 0 {
			continue
		}
		p := r.roster[i]
		switch {
		case res.Skipped:
			p.SkippedCount++
		case res.Correct:
			p.CorrectCount++
		default:
			p.WrongCount++
		}
		if !res.Skipped {
			p.TotalAnswerTime += time.Duration(res.ElapsedMs) * time.Millisecond
		}
		p.Score += res.Awarded
	}
	log.Debug().Str("room", r.code).Int("answered", r.answers.Len()).Time("at", at).Msg("answers frozen")
}

func (r *Room) emitLocked(at time.Time) {
	if r.deps.events == nil {
		return
	}
	ev := domain.PhaseEvent{
		RoomCode:      r.code,
		Phase:         r.phase,
		QuestionIndex: r.questionIndex,
		At:            at,
	}
	select {
	case r.deps.events <- ev:
	default:
		log.Warn().Str("room", r.code).Str("phase", r.phase.String()).Msg("event buffer full, dropping phase event")
	}
}

func (r *Room) addLocked(p *domain.Player) {
	i := sort.Search(len(r.roster), func(i int) bool { return r.roster[i].JoinSeq > p.JoinSeq })
	r.roster = append(r.roster, nil)
	copy(r.roster[i+1:], r.roster[i:])
	r.roster[i] = p
	if r.hostID == "" {
		r.hostID = p.ID
	}
	r.emptySince = time.Time{}
}

func displayName(name string) string {
	if name == "" {
		return "Player"
	}
	return name
}

func (r *Room) takeJoinSeq() int {
	seq := r.nextJoinSeq
	r.nextJoinSeq++
	return seq
}

func (r *Room) indexLocked(playerID string) int {
	for i, p := range r.roster {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func (r *Room) rosterIDsLocked() []string {
	ids := make([]string, len(r.roster))
	for i, p := range r.roster {
		ids[i] = p.ID
	}
	return ids
}
