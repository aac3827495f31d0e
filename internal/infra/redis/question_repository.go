package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"millionaire-service/internal/domain"
)

// QuestionLoader fetches the questions of one level from a backing store (e.g. Postgres).
type QuestionLoader interface {
	LoadLevel(ctx context.Context, level int) ([]domain.Question, error)
}

// QuestionRepository caches each level as a JSON list in Redis and falls back to a loader on cache miss.
// Levels are stored as: SET {prefix}:questions:level:{level} [...]
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	prefix string
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, prefix string, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		prefix: prefix,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) QuestionsByLevel(ctx context.Context, level int) ([]domain.Question, error) {
	if qs, ok := r.cached(ctx, level); ok {
		return qs, nil
	}

	result, err, _ := r.sf.Do(strconv.Itoa(level), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if qs, ok := r.cached(ctx, level); ok {
			return qs, nil
		}

		qs, err := r.loader.LoadLevel(ctx, level)
		if err != nil {
			return nil, err
		}
		if len(qs) == 0 {
			return qs, nil
		}

		raw, err := json.Marshal(qs)
		if err != nil {
			return nil, fmt.Errorf("encode level %d: %w", level, err)
		}
		// best-effort: a failed write only costs another load
		_ = r.client.Set(ctx, r.levelKey(level), raw, r.ttlWithJitter()).Err()
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) cached(ctx context.Context, level int) ([]domain.Question, bool) {
	raw, err := r.client.Get(ctx, r.levelKey(level)).Bytes()
	if err != nil {
		return nil, false
	}
	var qs []domain.Question
	if err := json.Unmarshal(raw, &qs); err != nil {
		return nil, false
	}
	return qs, true
}

// Invalidate drops every cached level, e.g. after the catalog was re-seeded.
func (r *QuestionRepository) Invalidate(ctx context.Context) error {
	keys := make([]string, 0, domain.QuestionsPerGame)
	for level := domain.MinLevel; level <= domain.MaxLevel; level++ {
		keys = append(keys, r.levelKey(level))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("invalidate question cache: %w", err)
	}
	return nil
}

func (r *QuestionRepository) levelKey(level int) string {
	return r.prefix + ":questions:level:" + strconv.Itoa(level)
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
