package app

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"trainvoc-room-service/internal/domain"
	"trainvoc-room-service/internal/game"
)

// RoomRepository abstracts where live rooms are kept (in-memory, Redis-backed, etc).
type RoomRepository interface {
	// Insert stores room under its code; false means the code is already taken.
	Insert(ctx context.Context, room *Room) (bool, error)
	Get(code string) (*Room, bool)
	List() []*Room
	Delete(ctx context.Context, code string)
}

// WordRepository loads the word bank for a level (from cache/backing store).
type WordRepository interface {
	GetWords(ctx context.Context, level string) ([]domain.Word, error)
}

// EventPublisher forwards phase events outside the process.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.PhaseEvent) error
}

// refresher is implemented by stores whose code reservations expire.
type refresher interface {
	Refresh(ctx context.Context)
}

const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

// Settings tune timing, policy and scoring for every room a RoomService creates.
type Settings struct {
	Clock             clockwork.Clock
	Timings           Timings
	Policy            RoomPolicy
	Scoring           game.ScoringRule
	EmptyRoomGrace    time.Duration
	FinishedRoomGrace time.Duration
	TickInterval      time.Duration
	CodeAttempts      int
	EventBuffer       int
	// Seed makes room codes and questions reproducible when non-zero.
	Seed int64
	// NewCode overrides room code generation.
	NewCode func() string
}

func DefaultSettings() Settings {
	return Settings{
		Clock:             clockwork.NewRealClock(),
		Timings:           DefaultTimings(),
		Policy:            DefaultRoomPolicy(),
		Scoring:           game.DefaultScoringRule(),
		EmptyRoomGrace:    30 * time.Second,
		FinishedRoomGrace: 5 * time.Minute,
		TickInterval:      time.Second,
		CodeAttempts:      32,
		EventBuffer:       256,
	}
}

// RoomService is the room directory: it creates, finds and retires rooms and
// drives their timers.
type RoomService struct {
	rooms     RoomRepository
	words     WordRepository
	publisher EventPublisher
	settings  Settings
	events    chan domain.PhaseEvent

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewRoomService wires a directory. publisher may be nil.
func NewRoomService(rooms RoomRepository, words WordRepository, publisher EventPublisher, settings Settings) *RoomService {
	if settings.Clock == nil {
		settings.Clock = clockwork.NewRealClock()
	}
	if settings.CodeAttempts <= 0 {
		settings.CodeAttempts = 1
	}
	if settings.EventBuffer <= 0 {
		settings.EventBuffer = 1
	}
	if settings.Policy.MaxPlayers <= 0 {
		settings.Policy.MaxPlayers = DefaultRoomPolicy().MaxPlayers
	}
	if settings.TickInterval <= 0 {
		settings.TickInterval = time.Second
	}
	seed := settings.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RoomService{
		rooms:     rooms,
		words:     words,
		publisher: publisher,
		settings:  settings,
		events:    make(chan domain.PhaseEvent, settings.EventBuffer),
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Events exposes phase events for in-process consumers. Run drains it too, so
// use one or the other.
func (s *RoomService) Events() <-chan domain.PhaseEvent {
	return s.events
}

// CreateRoom opens a room with host as its first player and host.
func (s *RoomService) CreateRoom(ctx context.Context, host domain.PlayerInput, cfg domain.QuizConfig) (domain.LobbyData, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return domain.LobbyData{}, err
	}
	host = normalizePlayer(host)

	for attempt := 0; attempt < s.settings.CodeAttempts; attempt++ {
		room := newRoom(s.newCode(), host, cfg, s.roomDeps())
		ok, err := s.rooms.Insert(ctx, room)
		if err != nil {
			return domain.LobbyData{}, err
		}
		if ok {
			log.Info().Str("room", room.Code()).Str("host", host.ID).Msg("room created")
			return room.Lobby(host.ID), nil
		}
	}
	log.Error().Int("attempts", s.settings.CodeAttempts).Msg("no free room code")
	return domain.LobbyData{}, domain.ErrCodeExhaustion
}

// JoinRoom registers or refreshes a player in a room.
func (s *RoomService) JoinRoom(_ context.Context, code string, player domain.PlayerInput) (domain.LobbyData, error) {
	room, err := s.room(code)
	if err != nil {
		return domain.LobbyData{}, err
	}
	return room.Join(normalizePlayer(player))
}

// LeaveRoom removes a player. Empty rooms are retired by Tick after the grace window.
func (s *RoomService) LeaveRoom(_ context.Context, code, playerID string) error {
	room, err := s.room(code)
	if err != nil {
		return err
	}
	return room.Leave(playerID)
}

func (s *RoomService) UpdateConfig(_ context.Context, code, playerID string, cfg domain.QuizConfig) (domain.LobbyData, error) {
	room, err := s.room(code)
	if err != nil {
		return domain.LobbyData{}, err
	}
	return room.UpdateConfig(playerID, cfg)
}

// StartGame loads the word bank for the room's level and starts the countdown.
func (s *RoomService) StartGame(ctx context.Context, code, playerID string) (domain.GameState, error) {
	room, err := s.room(code)
	if err != nil {
		return domain.GameState{}, err
	}
	if err := room.CheckStart(playerID); err != nil {
		return domain.GameState{}, err
	}
	words, err := s.words.GetWords(ctx, room.Config().Level)
	if err != nil {
		return domain.GameState{}, err
	}
	return room.Start(playerID, words)
}

// SubmitAnswer records an answer for the room's current question.
func (s *RoomService) SubmitAnswer(_ context.Context, sub domain.AnswerSubmission) (domain.AnswerAck, error) {
	room, err := s.room(sub.RoomCode)
	if err != nil {
		return domain.AnswerAck{}, err
	}
	return room.Submit(sub)
}

func (s *RoomService) Lobby(_ context.Context, code, viewerID string) (domain.LobbyData, error) {
	room, err := s.room(code)
	if err != nil {
		return domain.LobbyData{}, err
	}
	return room.Lobby(viewerID), nil
}

func (s *RoomService) GameState(_ context.Context, code, viewerID string) (domain.GameState, error) {
	room, err := s.room(code)
	if err != nil {
		return domain.GameState{}, err
	}
	return room.GameState(viewerID), nil
}

// ListRooms returns a summary of every live room ordered by code.
func (s *RoomService) ListRooms(_ context.Context) []domain.RoomSummary {
	rooms := s.rooms.List()
	out := make([]domain.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomCode < out[j].RoomCode })
	return out
}

// Tick applies due phase deadlines in every room and retires rooms that stayed
// empty or finished past their grace window.
func (s *RoomService) Tick(ctx context.Context, now time.Time) {
	for _, room := range s.rooms.List() {
		room.Advance(now)
		if room.retire(now, s.settings.EmptyRoomGrace, s.settings.FinishedRoomGrace) {
			s.rooms.Delete(ctx, room.Code())
			log.Info().Str("room", room.Code()).Msg("room removed")
		}
	}
	if r, ok := s.rooms.(refresher); ok {
		r.Refresh(ctx)
	}
}

// Run ticks rooms on the configured interval and forwards phase events to the
// publisher until ctx is done.
func (s *RoomService) Run(ctx context.Context) {
	ticker := s.settings.Clock.NewTicker(s.settings.TickInterval)
	defer ticker.Stop()
	log.Info().Dur("interval", s.settings.TickInterval).Msg("room ticker started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("room ticker stopped")
			return
		case now := <-ticker.Chan():
			s.Tick(ctx, now)
		case ev := <-s.events:
			if s.publisher == nil {
				continue
			}
			if err := s.publisher.Publish(ctx, ev); err != nil {
				log.Error().Err(err).Str("room", ev.RoomCode).Msg("publish phase event")
			}
		}
	}
}

func (s *RoomService) room(code string) (*Room, error) {
	room, ok := s.rooms.Get(normalizeCode(code))
	if !ok || room.isRetired() {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

func (s *RoomService) roomDeps() roomDeps {
	s.rngMu.Lock()
	seed := s.rng.Int63()
	s.rngMu.Unlock()
	return roomDeps{
		clock:   s.settings.Clock,
		timings: s.settings.Timings,
		policy:  s.settings.Policy,
		scoring: s.settings.Scoring,
		rng:     rand.New(rand.NewSource(seed)),
		events:  s.events,
	}
}

func (s *RoomService) newCode() string {
	if s.settings.NewCode != nil {
		return normalizeCode(s.settings.NewCode())
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[s.rng.Intn(len(codeAlphabet))]
	}
	return string(b)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func normalizePlayer(p domain.PlayerInput) domain.PlayerInput {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Name = strings.TrimSpace(p.Name)
	return p
}
