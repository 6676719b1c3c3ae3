package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"trainvoc-room-service/internal/app"
)

// RoomStore keeps live rooms in a local map and reserves their codes in Redis,
// so instances sharing a Redis never hand out the same code.
//   - The reservation is SET NX room:code:{code} {instance} with a TTL.
//   - Refresh re-sets the key and TTL of every local room; a crashed instance
//     frees its codes once the TTL lapses.
type RoomStore struct {
	client   *redis.Client
	ttl      time.Duration
	instance string

	mu    sync.RWMutex
	rooms map[string]*app.Room
}

func NewRoomStore(client *redis.Client, instance string, ttl time.Duration) *RoomStore {
	return &RoomStore{
		client:   client,
		ttl:      ttl,
		instance: instance,
		rooms:    make(map[string]*app.Room),
	}
}

func (s *RoomStore) Insert(ctx context.Context, room *app.Room) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := room.Code()
	if _, taken := s.rooms[code]; taken {
		return false, nil
	}
	ok, err := s.client.SetNX(ctx, s.key(code), s.instance, s.ttl).Result()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	s.rooms[code] = room
	return true, nil
}

func (s *RoomStore) Get(code string) (*app.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	return room, ok
}

func (s *RoomStore) List() []*app.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*app.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, room)
	}
	return out
}

func (s *RoomStore) Delete(ctx context.Context, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[code]; !ok {
		return
	}
	delete(s.rooms, code)
	if err := s.client.Del(ctx, s.key(code)).Err(); err != nil {
		log.Warn().Err(err).Str("room", code).Msg("release room code")
	}
}

// Refresh re-reserves every room this instance holds. SET rather than EXPIRE so
// a reservation that lapsed (for example after a Redis restart) is restored.
func (s *RoomStore) Refresh(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}
	s.mu.RLock()
	pipe := s.client.Pipeline()
	owners := make(map[string]*redis.StatusCmd, len(s.rooms))
	for code := range s.rooms {
		owners[code] = pipe.SetArgs(ctx, s.key(code), s.instance, redis.SetArgs{TTL: s.ttl, Get: true})
	}
	s.mu.RUnlock()
	if len(owners) == 0 {
		return
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Msg("refresh room codes")
		return
	}
	for code, cmd := range owners {
		owner, err := cmd.Result()
		switch {
		case errors.Is(err, redis.Nil):
			log.Warn().Str("room", code).Msg("room code reservation had lapsed, restored")
		case err != nil:
			log.Warn().Err(err).Str("room", code).Msg("refresh room code")
		case owner != s.instance:
			log.Warn().Str("room", code).Str("owner", owner).Msg("room code was held by another instance, reclaimed")
		}
	}
}

func (s *RoomStore) key(code string) string {
	return "room:code:" + code
}
