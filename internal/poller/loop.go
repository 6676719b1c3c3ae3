package poller

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"trainvoc-room-service/internal/domain"
)

// Mode is the screen a loop is polling for.
type Mode int

const (
	ModeDirectory Mode = iota
	ModeLobby
	ModeGame
)

func (m Mode) String() string {
	switch m {
	case ModeDirectory:
		return "directory"
	case ModeLobby:
		return "lobby"
	case ModeGame:
		return "game"
	}
	return "unknown"
}

const (
	ErrFetchRooms = "Failed to fetch rooms"
	ErrFetchLobby = "Failed to fetch lobby"
	ErrFetchGame  = "Failed to fetch game"
)

// Source is the server as seen by a loop. *client.Client satisfies it.
type Source interface {
	ListRooms(ctx context.Context, status string) ([]domain.RoomSummary, error)
	GetLobby(ctx context.Context, code, playerID string) (domain.LobbyData, error)
	GetGame(ctx context.Context, code, playerID string) (domain.GameState, error)
}

type Intervals struct {
	Directory time.Duration
	Lobby     time.Duration
	Game      time.Duration
}

func DefaultIntervals() Intervals {
	return Intervals{
		Directory: 5000 * time.Millisecond,
		Lobby:     2000 * time.Millisecond,
		Game:      1000 * time.Millisecond,
	}
}

func (i Intervals) of(m Mode) time.Duration {
	switch m {
	case ModeLobby:
		return i.Lobby
	case ModeGame:
		return i.Game
	default:
		return i.Directory
	}
}

type Options struct {
	Clock     clockwork.Clock
	Intervals Intervals
	PlayerID  string
	// RoomStatus filters the directory listing (see client.ListRooms).
	RoomStatus string
	// OnUpdate receives every view change on the loop goroutine.
	OnUpdate func(View)
}

// View is the client-side state derived from the latest successful fetches.
type View struct {
	Mode      Mode
	RoomCode  string
	Rooms     []domain.RoomSummary
	Lobby     *domain.LobbyData
	Game      *domain.GameState
	Error     string
	FetchedAt time.Time
}

type Stats struct {
	Fetches   int64
	Skipped   int64
	Discarded int64
}

type commandKind int

const (
	cmdRefresh commandKind = iota
	cmdEnter
	cmdLeave
)

type command struct {
	kind commandKind
	code string
}

type result struct {
	gen   uint64
	mode  Mode
	rooms []domain.RoomSummary
	lobby domain.LobbyData
	game  domain.GameState
	err   error
	at    time.Time
}

// Loop polls one client's current screen. Run owns all state; the other methods
// only post commands to it.
type Loop struct {
	src  Source
	opts Options

	cmds    chan command
	results chan result
	done    chan struct{}

	mu   sync.RWMutex
	view View

	fetches   atomic.Int64
	skipped   atomic.Int64
	discarded atomic.Int64
}

func New(src Source, opts Options) *Loop {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	d := DefaultIntervals()
	if opts.Intervals.Directory <= 0 {
		opts.Intervals.Directory = d.Directory
	}
	if opts.Intervals.Lobby <= 0 {
		opts.Intervals.Lobby = d.Lobby
	}
	if opts.Intervals.Game <= 0 {
		opts.Intervals.Game = d.Game
	}
	return &Loop{
		src:     src,
		opts:    opts,
		cmds:    make(chan command, 16),
		results: make(chan result, 1),
		done:    make(chan struct{}),
	}
}

// Refresh asks for an immediate fetch. It is ignored while a fetch is in flight.
func (l *Loop) Refresh() {
	select {
	case l.cmds <- command{kind: cmdRefresh}:
	default:
	}
}

// EnterRoom switches to lobby polling for code, abandoning any pending fetch.
func (l *Loop) EnterRoom(code string) {
	l.send(command{kind: cmdEnter, code: strings.ToUpper(strings.TrimSpace(code))})
}

// LeaveRoom returns to directory polling, abandoning any pending fetch.
func (l *Loop) LeaveRoom() {
	l.send(command{kind: cmdLeave})
}

func (l *Loop) send(c command) {
	select {
	case l.cmds <- c:
	case <-l.done:
	}
}

func (l *Loop) View() View {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.view
}

func (l *Loop) Stats() Stats {
	return Stats{
		Fetches:   l.fetches.Load(),
		Skipped:   l.skipped.Load(),
		Discarded: l.discarded.Load(),
	}
}

// loopState is owned by the Run goroutine.
type loopState struct {
	mode     Mode
	code     string
	gen      uint64
	inflight bool
	cancel   context.CancelFunc
	timer    clockwork.Timer
}

// Run polls until ctx is done. A loop runs once.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	st := &loopState{mode: ModeDirectory}
	st.timer = l.opts.Clock.NewTimer(l.opts.Intervals.of(st.mode))
	defer stopAndDrainTimer(st.timer)
	defer st.abandon()

	l.start(ctx, st)
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("mode", st.mode.String()).Msg("poll loop stopped")
			return ctx.Err()

		case <-st.timer.Chan():
			if st.inflight {
				l.skipped.Add(1)
				log.Debug().Str("mode", st.mode.String()).Msg("poll tick skipped, fetch in flight")
			} else {
				l.start(ctx, st)
			}
			st.timer.Reset(l.opts.Intervals.of(st.mode))

		case c := <-l.cmds:
			switch c.kind {
			case cmdRefresh:
				if st.inflight {
					continue
				}
			case cmdEnter:
				st.abandon()
				st.mode, st.code = ModeLobby, c.code
				l.setView(View{Mode: ModeLobby, RoomCode: c.code})
			case cmdLeave:
				st.abandon()
				st.mode, st.code = ModeDirectory, ""
				l.setView(View{Mode: ModeDirectory})
			}
			l.start(ctx, st)
			l.restartTimer(st)

		case res := <-l.results:
			if res.gen != st.gen {
				l.discarded.Add(1)
				continue
			}
			st.inflight = false
			st.cancel = nil
			if l.apply(st, res) {
				// lobby reported the game started
				st.mode = ModeGame
				l.start(ctx, st)
				l.restartTimer(st)
			}
		}
	}
}

// start launches a fetch for the current mode on a worker goroutine.
func (l *Loop) start(ctx context.Context, st *loopState) {
	st.gen++
	fetchCtx, cancel := context.WithCancel(ctx)
	st.cancel = cancel
	st.inflight = true
	l.fetches.Add(1)

	gen, mode, code := st.gen, st.mode, st.code
	go func() {
		defer cancel()
		res := result{gen: gen, mode: mode}
		switch mode {
		case ModeDirectory:
			res.rooms, res.err = l.src.ListRooms(fetchCtx, l.opts.RoomStatus)
		case ModeLobby:
			res.lobby, res.err = l.src.GetLobby(fetchCtx, code, l.opts.PlayerID)
		case ModeGame:
			res.game, res.err = l.src.GetGame(fetchCtx, code, l.opts.PlayerID)
		}
		res.at = l.opts.Clock.Now()
		select {
		case l.results <- res:
		case <-ctx.Done():
		}
	}()
}

// abandon cancels the in-flight fetch; its result will no longer match gen.
func (st *loopState) abandon() {
	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
	st.inflight = false
	st.gen++
}

func (l *Loop) restartTimer(st *loopState) {
	stopAndDrainTimer(st.timer)
	st.timer.Reset(l.opts.Intervals.of(st.mode))
}

// apply folds a fetch result into the view and reports whether a lobby fetch saw
// the room leave the waiting status.
func (l *Loop) apply(st *loopState, res result) bool {
	v := l.View()
	v.Mode = st.mode
	v.RoomCode = st.code

	started := false
	if res.err != nil {
		v.Error = errorText(res.mode)
		log.Warn().Err(res.err).Str("mode", res.mode.String()).Str("room", st.code).Msg("poll fetch failed")
	} else {
		v.Error = ""
		v.FetchedAt = res.at
		switch res.mode {
		case ModeDirectory:
			v.Rooms = res.rooms
		case ModeLobby:
			lobby := res.lobby
			v.Lobby = &lobby
			if lobby.Status != domain.StatusWaiting {
				started = true
				v.Mode = ModeGame
			}
		case ModeGame:
			game := res.game
			v.Game = &game
		}
	}
	l.setView(v)
	return started
}

func (l *Loop) setView(v View) {
	l.mu.Lock()
	l.view = v
	l.mu.Unlock()
	if l.opts.OnUpdate != nil {
		l.opts.OnUpdate(v)
	}
}

func errorText(m Mode) string {
	switch m {
	case ModeLobby:
		return ErrFetchLobby
	case ModeGame:
		return ErrFetchGame
	default:
		return ErrFetchRooms
	}
}

// stopAndDrainTimer stops a timer and drains its channel so a later Reset starts clean.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
