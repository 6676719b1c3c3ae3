package memory

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"trainvoc-room-service/internal/domain"
)

// LevelAll selects the whole word bank regardless of level.
const LevelAll = "all"

// WordLoader fetches words for a level from a backing store (e.g., Postgres).
type WordLoader interface {
	LoadWords(ctx context.Context, level string) ([]domain.Word, error)
}

// WordRepository caches word banks per level with TTL to avoid repeated DB hits.
type WordRepository struct {
	loader WordLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedWords
}

type cachedWords struct {
	words     []domain.Word
	expiresAt time.Time
}

func NewWordRepository(loader WordLoader, ttl time.Duration) *WordRepository {
	return &WordRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedWords),
	}
}

func (r *WordRepository) GetWords(ctx context.Context, level string) ([]domain.Word, error) {
	level = normalizeLevel(level)
	if words, ok := r.cached(level, r.clock()); ok {
		return words, nil
	}

	result, err, _ := r.sf.Do(level, func() (interface{}, error) {
		now := r.clock()
		if words, ok := r.cached(level, now); ok {
			return words, nil
		}

		words, err := r.loader.LoadWords(ctx, level)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[level] = cachedWords{
			words:     words,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return words, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Word), nil
}

func (r *WordRepository) cached(level string, now time.Time) ([]domain.Word, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[level]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false
	}
	return entry.words, true
}

func (r *WordRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% jitter spreads expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticWordLoader serves a fixed word bank (demos, tests, the built-in sample bank).
type StaticWordLoader struct {
	words []domain.Word
}

func NewStaticWordLoader(words []domain.Word) *StaticWordLoader {
	return &StaticWordLoader{words: words}
}

func (l *StaticWordLoader) LoadWords(_ context.Context, level string) ([]domain.Word, error) {
	level = normalizeLevel(level)
	var out []domain.Word
	for _, w := range l.words {
		if level == LevelAll || strings.EqualFold(w.Level, level) {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		return nil, domain.ErrWordsNotFound
	}
	return out, nil
}

func normalizeLevel(level string) string {
	level = strings.TrimSpace(level)
	if level == "" || strings.EqualFold(level, LevelAll) {
		return LevelAll
	}
	return strings.ToUpper(level)
}
