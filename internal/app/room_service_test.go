package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"trainvoc-room-service/internal/app"
	"trainvoc-room-service/internal/domain"
	"trainvoc-room-service/internal/game"
	"trainvoc-room-service/internal/infra/memory"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func TestFullGameTwoQuestions(t *testing.T) {
	ctx := context.Background()
	service, clock := newTestService(nil)

	lobby, err := service.CreateRoom(ctx, domain.PlayerInput{ID: "p1", Name: "Ada"}, domain.QuizConfig{
		QuestionDuration:   60,
		OptionCount:        4,
		Level:              "all",
		TotalQuestionCount: 2,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	code := lobby.RoomCode
	if lobby.HostID != "p1" || len(lobby.Players) != 1 || lobby.Status != domain.StatusWaiting {
		t.Fatalf("unexpected lobby %+v", lobby)
	}
	if _, err := service.JoinRoom(ctx, code, domain.PlayerInput{ID: "p2", Name: "Ben"}); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	gs, err := service.StartGame(ctx, code, "p1")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if gs.State != domain.PhaseCountdown || gs.CurrentQuestionIndex != -1 {
		t.Fatalf("expected countdown before first question, got %v idx %d", gs.State, gs.CurrentQuestionIndex)
	}
	if gs.RemainingTime == nil || *gs.RemainingTime != 3 {
		t.Fatalf("expected 3s countdown, got %v", gs.RemainingTime)
	}

	clock.Advance(3 * time.Second)
	gs = mustState(t, service, code, "p1")
	if gs.State != domain.PhaseQuestion || gs.CurrentQuestionIndex != 0 {
		t.Fatalf("expected first question, got %v idx %d", gs.State, gs.CurrentQuestionIndex)
	}
	if gs.RemainingTime == nil || *gs.RemainingTime != 60 {
		t.Fatalf("expected 60s remaining, got %v", gs.RemainingTime)
	}
	q1 := gs.Questions[0]
	if q1.CorrectIndex != nil || q1.Meaning != "" {
		t.Fatalf("answer leaked during question: %+v", q1)
	}

	clock.Advance(2 * time.Second)
	ack, err := service.SubmitAnswer(ctx, domain.AnswerSubmission{
		PlayerID:            "p1",
		RoomCode:            code,
		QuestionID:          q1.ID,
		SelectedOptionIndex: correctIndex(t, q1),
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !ack.Answered || ack.QuestionID != q1.ID {
		t.Fatalf("unexpected ack %+v", ack)
	}

	clock.Advance(58 * time.Second)
	gs = mustState(t, service, code, "p2")
	if gs.State != domain.PhaseAnswerReveal {
		t.Fatalf("expected reveal after timeout, got %v", gs.State)
	}
	if gs.Questions[0].CorrectIndex == nil {
		t.Fatalf("expected correct index revealed")
	}
	byPlayer := map[string]domain.AnswerResult{}
	for _, r := range gs.Results {
		byPlayer[r.PlayerID] = r
	}
	if r := byPlayer["p1"]; !r.Correct || r.Awarded != 148 {
		t.Fatalf("expected p1 correct for 148, got %+v", r)
	}
	if r := byPlayer["p2"]; !r.Skipped || r.Awarded != 0 {
		t.Fatalf("expected p2 skipped, got %+v", r)
	}

	_, err = service.SubmitAnswer(ctx, domain.AnswerSubmission{PlayerID: "p2", RoomCode: code, QuestionID: q1.ID})
	if !errors.Is(err, domain.ErrAnswerWindowClosed) {
		t.Fatalf("expected closed window, got %v", err)
	}

	clock.Advance(5 * time.Second)
	gs = mustState(t, service, code, "p1")
	if gs.State != domain.PhaseRanking {
		t.Fatalf("expected ranking, got %v", gs.State)
	}
	if gs.RemainingTime != nil {
		t.Fatalf("expected null remaining time in ranking")
	}
	if len(gs.Scores) != 2 || gs.Scores[0].PlayerID != "p1" || gs.Scores[0].Score != 148 {
		t.Fatalf("unexpected scores %+v", gs.Scores)
	}

	clock.Advance(5 * time.Second)
	gs = mustState(t, service, code, "p1")
	if gs.State != domain.PhaseQuestion || gs.CurrentQuestionIndex != 1 {
		t.Fatalf("expected second question, got %v idx %d", gs.State, gs.CurrentQuestionIndex)
	}
	q2 := gs.Questions[0]
	if q2.ID == q1.ID {
		t.Fatalf("expected a new question id")
	}

	_, err = service.SubmitAnswer(ctx, domain.AnswerSubmission{PlayerID: "p1", RoomCode: code, QuestionID: q1.ID})
	if !errors.Is(err, domain.ErrStaleQuestion) {
		t.Fatalf("expected stale question, got %v", err)
	}
	_, err = service.SubmitAnswer(ctx, domain.AnswerSubmission{PlayerID: "p1", RoomCode: code, QuestionID: q2.ID, SelectedOptionIndex: 4})
	if !errors.Is(err, domain.ErrInvalidOption) {
		t.Fatalf("expected invalid option, got %v", err)
	}

	clock.Advance(12 * time.Second)
	for _, id := range []string{"p1", "p2"} {
		sub := domain.AnswerSubmission{PlayerID: id, RoomCode: code, QuestionID: q2.ID, SelectedOptionIndex: correctIndex(t, q2)}
		if _, err := service.SubmitAnswer(ctx, sub); err != nil {
			t.Fatalf("submit %s failed: %v", id, err)
		}
	}
	if gs = mustState(t, service, code, "p1"); gs.State != domain.PhaseAnswerReveal {
		t.Fatalf("expected early reveal once everyone answered, got %v", gs.State)
	}

	clock.Advance(10 * time.Second)
	gs = mustState(t, service, code, "p1")
	if gs.State != domain.PhaseFinal || gs.CurrentQuestionIndex != 1 {
		t.Fatalf("expected final after last ranking, got %v idx %d", gs.State, gs.CurrentQuestionIndex)
	}
	if gs.RemainingTime != nil {
		t.Fatalf("expected null remaining time in final")
	}
	// 148 + 140 for p1, 140 for p2 (both correct 12s into a 60s question)
	if len(gs.Scores) != 2 {
		t.Fatalf("expected both players in final scores, got %+v", gs.Scores)
	}
	if first := gs.Scores[0]; first.PlayerID != "p1" || first.Score != 288 || first.Rank != 1 || !first.IsTop3 {
		t.Fatalf("unexpected winner %+v", first)
	}
	if second := gs.Scores[1]; second.PlayerID != "p2" || second.Score != 140 || second.Rank != 2 {
		t.Fatalf("unexpected runner-up %+v", second)
	}
	if _, err := service.JoinRoom(ctx, code, domain.PlayerInput{ID: "p3"}); !errors.Is(err, domain.ErrRoomAlreadyStarted) {
		t.Fatalf("expected join refused after final, got %v", err)
	}

	assertEventPath(t, service.Events(), []domain.Phase{
		domain.PhaseCountdown,
		domain.PhaseQuestion,
		domain.PhaseAnswerReveal,
		domain.PhaseRanking,
		domain.PhaseQuestion,
		domain.PhaseAnswerReveal,
		domain.PhaseRanking,
		domain.PhaseFinal,
	})
}

func TestSubmitOutsideQuestion(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(nil)
	code := mustCreate(t, service, "p1")

	_, err := service.SubmitAnswer(ctx, domain.AnswerSubmission{PlayerID: "p1", RoomCode: code, QuestionID: "q"})
	if !errors.Is(err, domain.ErrPhaseMismatch) {
		t.Fatalf("expected phase mismatch in lobby, got %v", err)
	}
	_, err = service.SubmitAnswer(ctx, domain.AnswerSubmission{PlayerID: "ghost", RoomCode: code, QuestionID: "q"})
	if !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Fatalf("expected player not found, got %v", err)
	}
	_, err = service.SubmitAnswer(ctx, domain.AnswerSubmission{PlayerID: "p1", RoomCode: "NOPE00", QuestionID: "q"})
	if !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected room not found, got %v", err)
	}
}

func TestHostPromotionAndFilters(t *testing.T) {
	ctx := context.Background()
	codes := []string{"AAAAAA", "BBBBBB"}
	service, _ := newTestService(func(s *app.Settings) {
		s.NewCode = func() string {
			c := codes[0]
			codes = codes[1:]
			return c
		}
	})

	a := mustCreate(t, service, "p1")
	for _, id := range []string{"p2", "p3"} {
		if _, err := service.JoinRoom(ctx, a, domain.PlayerInput{ID: id}); err != nil {
			t.Fatalf("join %s failed: %v", id, err)
		}
	}
	if err := service.LeaveRoom(ctx, a, "p1"); err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	lobby, err := service.Lobby(ctx, a, "p2")
	if err != nil {
		t.Fatalf("lobby failed: %v", err)
	}
	if lobby.HostID != "p2" {
		t.Fatalf("expected p2 promoted, got %q", lobby.HostID)
	}
	if !lobby.Players[0].IsHost || !lobby.Players[0].IsYou {
		t.Fatalf("expected viewer flags on p2, got %+v", lobby.Players[0])
	}

	b := mustCreate(t, service, "q1")
	if _, err := service.StartGame(ctx, b, "q1"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	rooms := service.ListRooms(ctx)
	if len(rooms) != 2 || rooms[0].RoomCode != a || rooms[1].RoomCode != b {
		t.Fatalf("unexpected listing %+v", rooms)
	}
	if rooms[0].HostName != "Player" || rooms[0].PlayerCount != 2 {
		t.Fatalf("unexpected summary %+v", rooms[0])
	}
	waiting := domain.FilterAvailable(rooms)
	if len(waiting) != 1 || waiting[0].RoomCode != a {
		t.Fatalf("expected only %s available, got %+v", a, waiting)
	}
	started := domain.FilterByStatus(rooms, true)
	if len(started) != 1 || started[0].RoomCode != b {
		t.Fatalf("expected only %s started, got %+v", b, started)
	}
}

func TestJoinRules(t *testing.T) {
	ctx := context.Background()
	service, clock := newTestService(func(s *app.Settings) {
		s.Policy.MaxPlayers = 2
	})
	code := mustCreate(t, service, "p1")

	if _, err := service.JoinRoom(ctx, code, domain.PlayerInput{ID: "p2"}); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := service.JoinRoom(ctx, code, domain.PlayerInput{ID: "p3"}); !errors.Is(err, domain.ErrRoomFull) {
		t.Fatalf("expected room full, got %v", err)
	}
	lobby, err := service.JoinRoom(ctx, code, domain.PlayerInput{ID: "p2", Name: "Renamed"})
	if err != nil {
		t.Fatalf("rejoin of present player failed: %v", err)
	}
	if len(lobby.Players) != 2 || lobby.Players[1].Name != "Renamed" {
		t.Fatalf("expected name refreshed in place, got %+v", lobby.Players)
	}

	if _, err := service.StartGame(ctx, code, "p2"); !errors.Is(err, domain.ErrNotHost) {
		t.Fatalf("expected not host, got %v", err)
	}
	if _, err := service.StartGame(ctx, code, "p1"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := service.UpdateConfig(ctx, code, "p1", domain.DefaultQuizConfig()); !errors.Is(err, domain.ErrConfigLocked) {
		t.Fatalf("expected config locked, got %v", err)
	}
	if err := service.LeaveRoom(ctx, code, "p2"); err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if _, err := service.JoinRoom(ctx, code, domain.PlayerInput{ID: "p4"}); !errors.Is(err, domain.ErrRoomAlreadyStarted) {
		t.Fatalf("expected already started, got %v", err)
	}

	clock.Advance(3 * time.Second)
	gs := mustState(t, service, code, "p1")
	q := gs.Questions[0]
	if _, err := service.SubmitAnswer(ctx, domain.AnswerSubmission{PlayerID: "p1", RoomCode: code, QuestionID: q.ID, SelectedOptionIndex: correctIndex(t, q)}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	// p1 was the only player left, so the question closes at once.
	if gs = mustState(t, service, code, "p1"); gs.State != domain.PhaseAnswerReveal {
		t.Fatalf("expected reveal, got %v", gs.State)
	}
	score := gs.Players[0].Score
	if score != 150 {
		t.Fatalf("expected instant answer worth 150, got %d", score)
	}

	if err := service.LeaveRoom(ctx, code, "p1"); err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	lobby, err = service.JoinRoom(ctx, code, domain.PlayerInput{ID: "p1"})
	if err != nil {
		t.Fatalf("departed player rejoin failed: %v", err)
	}
	if lobby.Players[0].ID != "p1" || lobby.Players[0].Score != score || lobby.Players[0].Name != "Player" {
		t.Fatalf("expected p1 back with score kept, got %+v", lobby.Players[0])
	}
}

func TestStartValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(func(s *app.Settings) {
		s.Policy.MinPlayers = 2
	})
	code := mustCreate(t, service, "p1")
	if _, err := service.StartGame(ctx, code, "p1"); !errors.Is(err, domain.ErrNotEnoughPlayers) {
		t.Fatalf("expected not enough players, got %v", err)
	}

	_, err := service.CreateRoom(ctx, domain.PlayerInput{ID: "p9"}, domain.QuizConfig{OptionCount: 12})
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected invalid config, got %v", err)
	}

	if _, err := service.UpdateConfig(ctx, code, "p1", domain.QuizConfig{Level: "C2"}); err != nil {
		t.Fatalf("update config failed: %v", err)
	}
	if _, err := service.JoinRoom(ctx, code, domain.PlayerInput{ID: "p2"}); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := service.StartGame(ctx, code, "p1"); !errors.Is(err, domain.ErrWordsNotFound) {
		t.Fatalf("expected no words for C2, got %v", err)
	}
	lobby, _ := service.Lobby(ctx, code, "")
	if lobby.Status != domain.StatusWaiting {
		t.Fatalf("failed start must leave the room waiting, got %s", lobby.Status)
	}
}

func TestCodeExhaustion(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(func(s *app.Settings) {
		s.CodeAttempts = 3
		s.NewCode = func() string { return "SAME00" }
	})
	mustCreate(t, service, "p1")
	_, err := service.CreateRoom(ctx, domain.PlayerInput{ID: "p2"}, domain.QuizConfig{})
	if !errors.Is(err, domain.ErrCodeExhaustion) {
		t.Fatalf("expected code exhaustion, got %v", err)
	}
}

func TestTickRetiresEmptyAndFinishedRooms(t *testing.T) {
	ctx := context.Background()
	codes := []string{"EMPTY1", "DONE01"}
	service, clock := newTestService(func(s *app.Settings) {
		s.NewCode = func() string {
			c := codes[0]
			codes = codes[1:]
			return c
		}
	})

	empty := mustCreate(t, service, "p1")
	if err := service.LeaveRoom(ctx, empty, "p1"); err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	done := mustCreate(t, service, "q1")
	if _, err := service.UpdateConfig(ctx, done, "q1", domain.QuizConfig{QuestionDuration: 1, TotalQuestionCount: 1}); err != nil {
		t.Fatalf("update config failed: %v", err)
	}
	if _, err := service.StartGame(ctx, done, "q1"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	clock.Advance(29 * time.Second)
	service.Tick(ctx, clock.Now())
	if _, err := service.Lobby(ctx, empty, ""); err != nil {
		t.Fatalf("empty room removed before grace: %v", err)
	}
	gs := mustState(t, service, done, "q1")
	if gs.State != domain.PhaseFinal {
		t.Fatalf("expected finished game, got %v", gs.State)
	}

	clock.Advance(time.Second)
	service.Tick(ctx, clock.Now())
	if _, err := service.Lobby(ctx, empty, ""); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected empty room retired, got %v", err)
	}
	if _, err := service.Lobby(ctx, done, ""); err != nil {
		t.Fatalf("finished room removed before grace: %v", err)
	}

	clock.Advance(5 * time.Minute)
	service.Tick(ctx, clock.Now())
	if _, err := service.Lobby(ctx, done, ""); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected finished room retired, got %v", err)
	}
}

func TestJoinDuringSweepIsRefused(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(t0)
	store := &sweepHookStore{RoomStore: memory.NewRoomStore()}
	service := app.NewRoomService(store, testWords(), nil, testSettings(clock))

	code := mustCreate(t, service, "p1")
	if err := service.LeaveRoom(ctx, code, "p1"); err != nil {
		t.Fatalf("leave failed: %v", err)
	}

	var rejoinErr error
	store.beforeDelete = func(deleted string) {
		_, rejoinErr = service.JoinRoom(ctx, deleted, domain.PlayerInput{ID: "p1"})
	}
	clock.Advance(30 * time.Second)
	service.Tick(ctx, clock.Now())

	if !errors.Is(rejoinErr, domain.ErrRoomNotFound) {
		t.Fatalf("expected rejoin into a retiring room refused, got %v", rejoinErr)
	}
	if _, err := service.Lobby(ctx, code, "p1"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected room gone, got %v", err)
	}
}

func TestRejoinWithinGraceKeepsRoom(t *testing.T) {
	ctx := context.Background()
	service, clock := newTestService(nil)

	code := mustCreate(t, service, "p1")
	if err := service.LeaveRoom(ctx, code, "p1"); err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	clock.Advance(29 * time.Second)
	if _, err := service.JoinRoom(ctx, code, domain.PlayerInput{ID: "p1"}); err != nil {
		t.Fatalf("rejoin failed: %v", err)
	}
	clock.Advance(time.Minute)
	service.Tick(ctx, clock.Now())

	lobby, err := service.Lobby(ctx, code, "p1")
	if err != nil {
		t.Fatalf("room removed despite rejoin: %v", err)
	}
	if lobby.HostID != "p1" || len(lobby.Players) != 1 {
		t.Fatalf("unexpected lobby %+v", lobby)
	}
}

func TestConcurrentAccessToOneRoom(t *testing.T) {
	ctx := context.Background()
	const answering = 30
	service, clock := newTestService(func(s *app.Settings) {
		s.Policy.MaxPlayers = answering + 1
	})

	code := mustCreate(t, service, "host")
	ids := make([]string, answering)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%02d", i)
		if _, err := service.JoinRoom(ctx, code, domain.PlayerInput{ID: ids[i]}); err != nil {
			t.Fatalf("join %s failed: %v", ids[i], err)
		}
	}
	if _, err := service.StartGame(ctx, code, "host"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	clock.Advance(3 * time.Second)
	q := mustState(t, service, code, "host").Questions[0]

	var wg sync.WaitGroup
	errs := make(chan error, answering*3)
	for _, id := range ids {
		for n := 0; n < 3; n++ {
			wg.Add(1)
			go func(id string, option int) {
				defer wg.Done()
				_, err := service.SubmitAnswer(ctx, domain.AnswerSubmission{
					PlayerID:            id,
					RoomCode:            code,
					QuestionID:          q.ID,
					SelectedOptionIndex: option,
				})
				if err != nil {
					errs <- fmt.Errorf("%s: %w", id, err)
				}
			}(id, n)
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			service.GameState(ctx, code, id)
			service.ListRooms(ctx)
			service.Tick(ctx, clock.Now())
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("submit failed: %v", err)
	}

	gs := mustState(t, service, code, "host")
	if gs.State != domain.PhaseQuestion {
		t.Fatalf("expected question still open while host has not answered, got %v", gs.State)
	}
	seen := map[string]bool{}
	for _, id := range gs.Answered {
		if seen[id] {
			t.Fatalf("player %s answered twice", id)
		}
		seen[id] = true
	}
	if len(gs.Answered) != answering {
		t.Fatalf("expected %d answered players, got %d", answering, len(gs.Answered))
	}
}

type sweepHookStore struct {
	*memory.RoomStore
	beforeDelete func(code string)
}

func (s *sweepHookStore) Delete(ctx context.Context, code string) {
	if s.beforeDelete != nil {
		s.beforeDelete(code)
	}
	s.RoomStore.Delete(ctx, code)
}

func TestRunPublishesPhaseEvents(t *testing.T) {
	pub := &recordingPublisher{got: make(chan domain.PhaseEvent, 16)}
	service := app.NewRoomService(memory.NewRoomStore(), testWords(), pub, testSettings(clockwork.NewFakeClockAt(t0)))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go service.Run(ctx)

	code := mustCreate(t, service, "p1")
	if _, err := service.StartGame(ctx, code, "p1"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	select {
	case ev := <-pub.got:
		if ev.RoomCode != code || ev.Phase != domain.PhaseCountdown {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected countdown event published")
	}
}

type recordingPublisher struct {
	got chan domain.PhaseEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.PhaseEvent) error {
	p.got <- ev
	return nil
}

func assertEventPath(t *testing.T, events <-chan domain.PhaseEvent, want []domain.Phase) {
	t.Helper()
	prev := domain.PhaseLobby
	lastIndex := -1
	for i, phase := range want {
		var ev domain.PhaseEvent
		select {
		case ev = <-events:
		default:
			t.Fatalf("event %d missing, want %v", i, phase)
		}
		if ev.Phase != phase {
			t.Fatalf("event %d: expected %v, got %v", i, phase, ev.Phase)
		}
		if !game.ValidStep(prev, ev.Phase) {
			t.Fatalf("illegal step %v -> %v", prev, ev.Phase)
		}
		if ev.QuestionIndex < lastIndex {
			t.Fatalf("question index went backwards: %d after %d", ev.QuestionIndex, lastIndex)
		}
		prev, lastIndex = ev.Phase, ev.QuestionIndex
	}
}

func newTestService(tune func(*app.Settings)) (*app.RoomService, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(t0)
	settings := testSettings(clock)
	if tune != nil {
		tune(&settings)
	}
	return app.NewRoomService(memory.NewRoomStore(), testWords(), nil, settings), clock
}

func testSettings(clock clockwork.Clock) app.Settings {
	settings := app.DefaultSettings()
	settings.Clock = clock
	settings.Seed = 11
	return settings
}

func testWords() *memory.WordRepository {
	return memory.NewWordRepository(memory.NewStaticWordLoader(bank), time.Hour)
}

var bank = []domain.Word{
	{ID: "1", Term: "abundant", Meaning: "plentiful", Level: "B2"},
	{ID: "2", Term: "brief", Meaning: "short", Level: "A2"},
	{ID: "3", Term: "candid", Meaning: "honest", Level: "C1"},
	{ID: "4", Term: "diligent", Meaning: "hard-working", Level: "B2"},
	{ID: "5", Term: "eager", Meaning: "keen", Level: "B1"},
}

func correctIndex(t *testing.T, q domain.QuestionView) int {
	t.Helper()
	for _, w := range bank {
		if w.Term != q.Prompt {
			continue
		}
		for i, o := range q.Options {
			if o == w.Meaning {
				return i
			}
		}
	}
	t.Fatalf("no correct option for %q in %v", q.Prompt, q.Options)
	return -1
}

func mustCreate(t *testing.T, service *app.RoomService, host string) string {
	t.Helper()
	lobby, err := service.CreateRoom(context.Background(), domain.PlayerInput{ID: host}, domain.QuizConfig{})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return lobby.RoomCode
}

func mustState(t *testing.T, service *app.RoomService, code, viewer string) domain.GameState {
	t.Helper()
	gs, err := service.GameState(context.Background(), code, viewer)
	if err != nil {
		t.Fatalf("game state failed: %v", err)
	}
	return gs
}
