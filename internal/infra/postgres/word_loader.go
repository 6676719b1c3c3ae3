package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"

	"trainvoc-room-service/internal/domain"
	"trainvoc-room-service/internal/infra/memory"
)

// WordLoader loads the word bank from the words table.
type WordLoader struct {
	pool *pgxpool.Pool
}

func NewWordLoader(pool *pgxpool.Pool) *WordLoader {
	return &WordLoader{pool: pool}
}

func (l *WordLoader) LoadWords(ctx context.Context, level string) ([]domain.Word, error) {
	level = strings.ToUpper(strings.TrimSpace(level))
	if level == "" {
		level = strings.ToUpper(memory.LevelAll)
	}
	rows, err := l.pool.Query(ctx, `
		SELECT id, term, meaning, level
		FROM words
		WHERE $1 = 'ALL' OR upper(level) = $1
		ORDER BY id`, level)
	if err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}
	defer rows.Close()

	var words []domain.Word
	for rows.Next() {
		var w domain.Word
		if err := rows.Scan(&w.ID, &w.Term, &w.Meaning, &w.Level); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("level %q: %w", level, domain.ErrWordsNotFound)
	}
	return words, nil
}
