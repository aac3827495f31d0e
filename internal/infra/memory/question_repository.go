package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"millionaire-service/internal/domain"
)

// QuestionLoader fetches the questions of one level from a backing store.
type QuestionLoader interface {
	LoadLevel(ctx context.Context, level int) ([]domain.Question, error)
}

// QuestionRepository caches levels with TTL to avoid repeated DB hits.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.Mutex
	rnd   *rand.Rand
	cache map[int]cachedLevel
}

type cachedLevel struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[int]cachedLevel),
	}
}

func (r *QuestionRepository) QuestionsByLevel(ctx context.Context, level int) ([]domain.Question, error) {
	if qs, ok := r.cached(level); ok {
		return qs, nil
	}

	result, err, _ := r.sf.Do(strconv.Itoa(level), func() (interface{}, error) {
		if qs, ok := r.cached(level); ok {
			return qs, nil
		}

		qs, err := r.loader.LoadLevel(ctx, level)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[level] = cachedLevel{
			questions: qs,
			expiresAt: r.clock().Add(r.ttlWithJitterLocked()),
		}
		r.mu.Unlock()
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) cached(level int) ([]domain.Question, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.cache[level]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return nil, false
	}
	return entry.questions, true
}

func (r *QuestionRepository) ttlWithJitterLocked() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuestionLoader serves a fixed catalog held in memory (useful for tests/demos).
type StaticQuestionLoader struct {
	byLevel map[int][]domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	byLevel := make(map[int][]domain.Question)
	for _, q := range questions {
		byLevel[q.Level] = append(byLevel[q.Level], q)
	}
	return &StaticQuestionLoader{byLevel: byLevel}
}

func (l *StaticQuestionLoader) LoadLevel(_ context.Context, level int) ([]domain.Question, error) {
	return l.byLevel[level], nil
}
