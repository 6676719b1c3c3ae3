package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"trainvoc-room-service/internal/domain"
	"trainvoc-room-service/internal/infra/memory"
)

// WordRepository caches word banks in Redis (hash per level) and falls back to a
// loader on cache miss. Words are stored as: HSET words:{level} {wordID} {json}
type WordRepository struct {
	client *redis.Client
	loader memory.WordLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewWordRepository(client *redis.Client, loader memory.WordLoader, ttl time.Duration) *WordRepository {
	return &WordRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *WordRepository) GetWords(ctx context.Context, level string) ([]domain.Word, error) {
	key := r.key(level)
	if words, ok := r.cached(ctx, key); ok {
		return words, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if words, ok := r.cached(ctx, key); ok {
			return words, nil
		}

		words, err := r.loader.LoadWords(ctx, level)
		if err != nil {
			return nil, err
		}

		fields := make(map[string]interface{}, len(words))
		for _, w := range words {
			raw, err := json.Marshal(w)
			if err != nil {
				return nil, err
			}
			fields[w.ID] = raw
		}
		pipe := r.client.Pipeline()
		pipe.HSet(ctx, key, fields)
		if ttl := r.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache word bank")
		}
		return words, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Word), nil
}

// cached returns the hash contents ordered by word id so question generation
// stays reproducible whichever instance filled the cache.
func (r *WordRepository) cached(ctx context.Context, key string) ([]domain.Word, bool) {
	raw, err := r.client.HGetAll(ctx, key).Result()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	words := make([]domain.Word, 0, len(raw))
	for _, v := range raw {
		var w domain.Word
		if err := json.Unmarshal([]byte(v), &w); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("corrupt cached word")
			return nil, false
		}
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool { return words[i].ID < words[j].ID })
	return words, true
}

func (r *WordRepository) key(level string) string {
	level = strings.TrimSpace(level)
	if level == "" || strings.EqualFold(level, memory.LevelAll) {
		return "words:" + memory.LevelAll
	}
	return "words:" + strings.ToUpper(level)
}

func (r *WordRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
