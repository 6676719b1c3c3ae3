package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"

	"trainvoc-room-service/internal/app"
	"trainvoc-room-service/internal/domain"
	"trainvoc-room-service/internal/infra/memory"
)

func TestRoomStoreReservesCodes(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	ctx := context.Background()

	// another instance already holds TAKEN
	other := NewRoomStore(client, "instance-b", time.Minute)
	otherSvc := newService(other, "TAKEN1")
	if _, err := otherSvc.CreateRoom(ctx, domain.PlayerInput{ID: "b1"}, domain.QuizConfig{}); err != nil {
		t.Fatalf("create on other instance: %v", err)
	}

	store := NewRoomStore(client, "instance-a", time.Minute)
	svc := newService(store, "TAKEN1", "FREE01")
	lobby, err := svc.CreateRoom(ctx, domain.PlayerInput{ID: "a1"}, domain.QuizConfig{})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if lobby.RoomCode != "FREE01" {
		t.Fatalf("expected code held elsewhere to be skipped, got %s", lobby.RoomCode)
	}
	if got, _ := mr.Get("room:code:FREE01"); got != "instance-a" {
		t.Fatalf("expected reservation owned by instance-a, got %q", got)
	}

	mr.FastForward(50 * time.Second)
	store.Refresh(ctx)
	if ttl := mr.TTL("room:code:FREE01"); ttl != time.Minute {
		t.Fatalf("expected refreshed ttl, got %v", ttl)
	}

	store.Delete(ctx, "FREE01")
	if mr.Exists("room:code:FREE01") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("FREE01"); ok {
		t.Fatalf("expected room removed locally")
	}
}

func TestRoomStoreRefreshRestoresLostReservation(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	ctx := context.Background()
	store := NewRoomStore(client, "instance-a", time.Minute)
	svc := newService(store, "LIVE01")
	if _, err := svc.CreateRoom(ctx, domain.PlayerInput{ID: "a1"}, domain.QuizConfig{}); err != nil {
		t.Fatalf("create room: %v", err)
	}

	// reservation wiped, as after a redis restart
	mr.Del("room:code:LIVE01")
	store.Refresh(ctx)
	if got, _ := mr.Get("room:code:LIVE01"); got != "instance-a" {
		t.Fatalf("expected reservation restored, got %q", got)
	}
	if ttl := mr.TTL("room:code:LIVE01"); ttl != time.Minute {
		t.Fatalf("expected ttl on restored reservation, got %v", ttl)
	}

	// lapsed and taken by another instance in between
	if err := mr.Set("room:code:LIVE01", "instance-b"); err != nil {
		t.Fatalf("set: %v", err)
	}
	store.Refresh(ctx)
	if got, _ := mr.Get("room:code:LIVE01"); got != "instance-a" {
		t.Fatalf("expected live room to reclaim its code, got %q", got)
	}

	other := NewRoomStore(client, "instance-b", time.Minute)
	otherSvc := newService(other, "LIVE01")
	if _, err := otherSvc.CreateRoom(ctx, domain.PlayerInput{ID: "b1"}, domain.QuizConfig{}); !errors.Is(err, domain.ErrCodeExhaustion) {
		t.Fatalf("expected other instance unable to reuse a live code, got %v", err)
	}
}

func newService(store app.RoomRepository, codes ...string) *app.RoomService {
	settings := app.DefaultSettings()
	settings.Clock = clockwork.NewFakeClock()
	settings.NewCode = func() string {
		c := codes[0]
		if len(codes) > 1 {
			codes = codes[1:]
		}
		return c
	}
	words := memory.NewWordRepository(memory.NewStaticWordLoader(sampleWords()), time.Minute)
	return app.NewRoomService(store, words, nil, settings)
}
